package service

import (
	"context"
	"log/slog"

	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/repository"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	media       MediaRemover
}

type EditProfileInput struct {
	UserID uint
	Bio    string
	// PictureKey replaces the picture when non-empty.
	PictureKey   string
	ClearPicture bool
}

func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository, media MediaRemover) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, userRepo: userRepo, media: media}
}

// GetProfile returns nil, nil when the user has not created a profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

// GetOrCreateProfile is used by the edit form.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	return s.profileRepo.GetOrCreate(ctx, userID)
}

func (s *ProfileService) EditProfile(ctx context.Context, in EditProfileInput) (*models.UserProfile, error) {
	profile, err := s.profileRepo.GetOrCreate(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	profile.Bio = in.Bio
	oldPicture := ""
	switch {
	case in.PictureKey != "":
		oldPicture = profile.ProfilePicture
		profile.ProfilePicture = in.PictureKey
	case in.ClearPicture:
		oldPicture = profile.ProfilePicture
		profile.ProfilePicture = ""
	}

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, models.NewInternalError(err)
	}

	if oldPicture != "" && oldPicture != profile.ProfilePicture && s.media != nil {
		if err := s.media.Delete(ctx, oldPicture); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete old profile picture",
				slog.String("key", oldPicture),
				slog.String("error", err.Error()),
			)
		}
	}
	return profile, nil
}

// ViewProfile loads another user's profile. isSelf is true when the viewer
// asked for their own, in which case the caller redirects.
func (s *ProfileService) ViewProfile(ctx context.Context, viewerID, targetID uint) (profile *models.UserProfile, isSelf bool, err error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, false, err
	}
	profile, err = s.profileRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	if profile == nil {
		return nil, false, models.NewNotFoundError("UserProfile", targetID)
	}
	if viewerID == user.ID {
		return profile, true, nil
	}
	if profile.User == nil {
		profile.User = user
	}
	return profile, false, nil
}
