// Package seed fills the database with demo users, posts and comments for
// development.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is given to every seeded user.
const DefaultPassword = "blog-demo-2024"

// Options configure a random seed run.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// ApprovedRatio is the share of comments created already approved.
	ApprovedRatio float64
	DraftRatio    float64
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Profiles int
	Posts    int
	Comments int
}

// Seeder writes generated data through a Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rnd     *rand.Rand
}

// NewSeeder hashes password once and shares it across all seeded users.
func NewSeeder(db *gorm.DB, media *storage.Media, password string, cost int) (*Seeder, error) {
	if password == "" {
		password = DefaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	//nolint:gosec // Weak random number generator is fine for seeding
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Seeder{db: db, factory: NewFactory(db, media, string(hash)), rnd: rnd}, nil
}

// ClearAll removes all blog data, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{&models.Comment{}, &models.Post{}, &models.UserProfile{}, &models.User{}} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.Info("seed data cleared")
	return nil
}

// Run creates opts.Users random users, each with a profile and posts, and
// comments from the other users.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	preset := Preset{
		CommentsPerPost: opts.CommentsPerPost,
		ApprovedRatio:   opts.ApprovedRatio,
		DraftRatio:      opts.DraftRatio,
	}
	for i := 0; i < opts.Users; i++ {
		preset.Users = append(preset.Users, PresetUser{Posts: opts.PostsPerUser})
	}
	return s.Apply(ctx, &preset)
}

// Apply creates everything the preset describes.
func (s *Seeder) Apply(ctx context.Context, p *Preset) (Summary, error) {
	var sum Summary

	users := make([]*models.User, 0, len(p.Users))
	for _, pu := range p.Users {
		user, err := s.factory.CreateUser(pu.Username, pu.Staff)
		if err != nil {
			return sum, err
		}
		users = append(users, user)
		sum.Users++

		if _, err := s.factory.CreateProfile(user, pu.Bio); err != nil {
			return sum, err
		}
		sum.Profiles++
	}

	for i, pu := range p.Users {
		for n := 0; n < pu.Posts; n++ {
			status := models.PostStatusPublished
			if s.rnd.Float64() < p.DraftRatio {
				status = models.PostStatusDraft
			}
			post, err := s.factory.CreatePost(ctx, users[i], status)
			if err != nil {
				return sum, err
			}
			sum.Posts++

			for k := 0; k < p.CommentsPerPost; k++ {
				var author *models.User
				if len(users) > 1 {
					author = users[(i+1+k)%len(users)]
				}
				approved := s.rnd.Float64() < p.ApprovedRatio
				if _, err := s.factory.CreateComment(post, author, approved); err != nil {
					return sum, err
				}
				sum.Comments++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed applied",
		slog.String("preset", p.Name),
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}
