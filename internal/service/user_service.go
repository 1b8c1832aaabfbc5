// Package service holds the blog's business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DuplicateUsernameMessage is the field error for a taken username.
const DuplicateUsernameMessage = "A user with that username already exists."

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Register creates an account from an already validated form.
func (s *UserService) Register(ctx context.Context, in forms.Register) (*models.User, error) {
	return s.createUser(ctx, in.Username, in.Email, in.Password1, false)
}

// CreateStaff creates a staff account, validating the password the same way
// registration does.
func (s *UserService) CreateStaff(ctx context.Context, in forms.Register) (*models.User, error) {
	in.Password2 = in.Password1
	if errs := in.Validate(); !errs.Valid() {
		return nil, &models.AppError{Code: models.CodeValidation, Message: "invalid staff account", Fields: errs}
	}
	return s.createUser(ctx, in.Username, in.Email, in.Password1, true)
}

func (s *UserService) createUser(ctx context.Context, username, email, password string, staff bool) (*models.User, error) {
	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewFieldError("username", DuplicateUsernameMessage)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		IsStaff:  staff,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent sign-up can take the name between the check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewFieldError("username", DuplicateUsernameMessage)
		}
		return nil, models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "user registered", slog.Uint64("user_id", uint64(user.ID)), slog.Bool("staff", staff))
	return user, nil
}

// Authenticate checks credentials and records the login time.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError(forms.InvalidLoginMessage)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewUnauthorizedError(forms.InvalidLoginMessage)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError(forms.InvalidLoginMessage)
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record last login", slog.String("error", err.Error()))
	} else {
		user.LastLogin = &now
	}
	return user, nil
}

func (s *UserService) SetStaff(ctx context.Context, username string, staff bool) error {
	return s.userRepo.SetStaff(ctx, username, staff)
}

func (s *UserService) ListStaff(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListStaff(ctx)
}
