// Package bootstrap wires process-level dependencies from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lena210296/ProjectBlog/internal/cache"
	"github.com/lena210296/ProjectBlog/internal/config"
	"github.com/lena210296/ProjectBlog/internal/database"
	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/storage"
	"github.com/lena210296/ProjectBlog/internal/tasks"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and, outside production,
// makes sure the bootstrap staff account exists.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// nil when Redis is unreachable
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureDevAdmin(context.Background(), cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return db, r, nil
}

// EnsureDevAdmin creates or promotes ADMIN_USERNAME when ADMIN_PASSWORD is
// set and the app is not running in production.
func EnsureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || cfg.IsProduction() {
		return nil
	}
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" || cfg.AdminPassword == "" {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.User
		err := tx.Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, herr := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
			if herr != nil {
				return fmt.Errorf("hash admin password: %w", herr)
			}
			admin = models.User{
				Username: username,
				Email:    username + "@localhost",
				Password: string(hash),
				IsStaff:  true,
				IsActive: true,
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			middleware.Logger.Info("created development admin", slog.String("username", username))
		case err != nil:
			return err
		case !admin.IsStaff:
			if err := tx.Model(&admin).Update("is_staff", true).Error; err != nil {
				return err
			}
			middleware.Logger.Info("promoted development admin", slog.String("username", username))
		}
		return nil
	})
}

// NewMedia builds the configured media store.
func NewMedia(cfg *config.Config) (*storage.Media, error) {
	var store storage.Store
	switch cfg.MediaBackend {
	case config.MediaS3:
		s3Store, err := storage.NewS3Store(storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		store = s3Store
	default:
		disk, err := storage.NewDiskStore(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			return nil, err
		}
		store = disk
	}
	return storage.NewMedia(store, cfg.MaxUploadBytes()), nil
}

// Broker is a task queue together with its consuming side.
type Broker struct {
	Queue tasks.Queue
	// Consumer is nil for the inline broker.
	Consumer tasks.Consumer
	Close    func() error
}

// NewBroker connects the configured task broker. w runs tasks for the
// inline broker and may be nil otherwise.
func NewBroker(cfg *config.Config, rdb *redis.Client, w *tasks.Worker) (*Broker, error) {
	noop := func() error { return nil }

	switch cfg.TaskBroker {
	case config.BrokerRabbitMQ:
		q, err := tasks.NewRabbitMQQueue(cfg.AMQPURL, cfg.TaskQueue)
		if err != nil {
			return nil, err
		}
		return &Broker{Queue: q, Consumer: q, Close: q.Close}, nil
	case config.BrokerRedis:
		if rdb == nil {
			return nil, errors.New("TASK_BROKER is redis but Redis is unavailable")
		}
		q := tasks.NewRedisQueue(rdb, cfg.TaskQueue)
		return &Broker{Queue: q, Consumer: q, Close: noop}, nil
	default:
		if w == nil {
			w = tasks.NewWorker(middleware.Logger)
		}
		return &Broker{Queue: tasks.NewInlineQueue(w), Close: noop}, nil
	}
}
