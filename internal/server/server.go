// Package server contains the HTTP handlers and HTML views of the blog.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lena210296/ProjectBlog/internal/bootstrap"
	"github.com/lena210296/ProjectBlog/internal/cache"
	"github.com/lena210296/ProjectBlog/internal/config"
	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/repository"
	"github.com/lena210296/ProjectBlog/internal/service"
	"github.com/lena210296/ProjectBlog/internal/storage"
	"github.com/lena210296/ProjectBlog/internal/tasks"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server wires the blog's repositories and services to its HTTP handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	queue          tasks.Queue
	media          *storage.Media
	closeBroker    func() error

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	profileRepo repository.ProfileRepository

	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	profileService *service.ProfileService
	contactService *service.ContactService
}

// NewServer connects to the database, Redis, media storage and the task
// broker described by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}

	media, err := bootstrap.NewMedia(cfg)
	if err != nil {
		return nil, fmt.Errorf("media storage setup failed: %w", err)
	}

	broker, err := bootstrap.NewBroker(cfg, redisClient, nil)
	if err != nil {
		return nil, fmt.Errorf("task broker setup failed: %w", err)
	}

	server, err := NewServerWithDeps(cfg, db, redisClient, broker.Queue, media)
	if err != nil {
		return nil, err
	}
	server.closeBroker = broker.Close
	return server, nil
}

// NewServerWithDeps builds a Server around connections the caller owns.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, queue tasks.Queue, media *storage.Media) (*Server, error) {
	if media == nil {
		return nil, fmt.Errorf("media storage is required")
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("projectblog"),
		queue:          queue,
		media:          media,
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		profileRepo:    repository.NewProfileRepository(db),
	}

	server.userService = service.NewUserService(server.userRepo)
	server.postService = service.NewPostService(server.postRepo, queue, media)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo, queue)
	server.profileService = service.NewProfileService(server.profileRepo, server.userRepo, media)
	server.contactService = service.NewContactService(queue)

	return server, nil
}

// App builds the fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "ProjectBlog",
		Views:        s.newViews(),
		ViewsLayout:  "layouts/base",
		BodyLimit:    int(s.config.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware installs the middleware chain shared by every route.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))

	app.Use(middleware.StructuredLogger())

	// Global rate limiting per IP, on top of the per-form limits.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Storage:    s.fiberStorage("limiter:"),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/health/")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	}))
}

// SetupRoutes registers the blog pages, the admin and the probes.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.media.Store().(*storage.LocalStore); ok {
		app.Use(s.config.MediaURL, filesystem.New(filesystem.Config{
			Root:   local.HTTPFileSystem(),
			MaxAge: 3600,
		}))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/all_posts/", fiber.StatusFound)
	})

	// Auth routes
	app.Get("/register/", s.RegisterPage)
	app.Post("/register/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	app.Get("/login/", s.LoginPage)
	app.Post("/login/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	app.Get("/logout/", s.Logout)
	app.Post("/logout/", s.Logout)

	auth := s.AuthRequired()

	// Posts
	app.Get("/create_post/", auth, s.CreatePostPage)
	app.Post("/create_post/", auth, s.CreatePost)
	app.Get("/edit_post/:id/", auth, s.EditPostPage)
	app.Post("/edit_post/:id/", auth, s.EditPost)
	app.Get("/user_posts/", auth, s.UserPosts)
	app.Get("/all_posts/", auth, middleware.PageCache(s.fiberStorage("cache:"), s.config.AllPostsCacheTTL(), "all_posts"), s.AllPosts)
	app.Get("/post/:id/", auth, s.PostDetail)
	app.Post("/post/:id/", auth, middleware.RateLimit(s.redis, 10, time.Minute, "comment"), s.SubmitComment)

	// Profiles
	app.Get("/accounts/profile/", auth, s.AccountProfile)
	app.Get("/profile/edit/", auth, s.EditProfilePage)
	app.Post("/profile/edit/", auth, s.EditProfile)
	app.Get("/profile/:user_id/", auth, s.ViewProfile)

	// Contact
	for _, path := range []string{"/contact/", "/contact/success"} {
		app.Get(path, auth, s.ContactPage)
		app.Post(path, auth, middleware.RateLimit(s.redis, 5, time.Minute, "contact"), s.ContactAdmin)
	}

	// Moderation console
	staff := s.AdminRequired()
	app.Get("/admin/", auth, staff, s.AdminIndex)
	app.Post("/admin/", auth, staff, s.AdminAction)
}

// fiberStorage returns Redis-backed fiber storage under prefix, or nil so that
// fiber middleware falls back to memory.
func (s *Server) fiberStorage(prefix string) fiber.Storage {
	if s.redis == nil {
		return nil
	}
	return cache.NewStorage(s.redis, prefix)
}

// AdminRequired sends non-staff users to the login page.
// Must be placed after AuthRequired so that the user is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := currentUser(c)
		if user == nil || !user.IsStaff {
			return c.Redirect(loginURL("/admin/"), fiber.StatusFound)
		}
		return c.Next()
	}
}

// AuthRequired loads the session user or redirects to the login page.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.sessionUser(c)
		if err != nil {
			if !models.HasCode(err, models.CodeUnauthorized) {
				middleware.Logger.WarnContext(c.UserContext(), "session lookup failed", slog.String("error", err.Error()))
			}
			return c.Redirect(loginURL(c.OriginalURL()), fiber.StatusFound)
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start serves HTTP on the configured port until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("blog listening", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown drains HTTP traffic, then closes the broker, database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("http shutdown", slog.String("error", err.Error()))
		}
	}

	if s.closeBroker != nil {
		if err := s.closeBroker(); err != nil {
			middleware.Logger.Error("close task broker", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("close database", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("close redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("blog stopped")
	return nil
}
