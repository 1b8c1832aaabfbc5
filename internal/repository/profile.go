package repository

import (
	"context"
	"errors"

	"github.com/lena210296/ProjectBlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	// GetByUserID returns nil, nil when the user has no profile.
	GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error)
	GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) error
	List(ctx context.Context, limit int) ([]*models.UserProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error) {
	uid := userID
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Attrs(models.UserProfile{UserID: &uid}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
}

func (r *profileRepository) List(ctx context.Context, limit int) ([]*models.UserProfile, error) {
	var profiles []*models.UserProfile
	q := r.db.WithContext(ctx).Preload("User").Order("id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&profiles).Error
	return profiles, err
}
