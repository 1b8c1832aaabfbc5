package server

import (
	"github.com/lena210296/ProjectBlog/internal/forms"
	"github.com/lena210296/ProjectBlog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AccountProfile shows the current user's own profile, which may not exist yet.
func (s *Server) AccountProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return s.render(c, "profile/account", fiber.Map{"Title": "My profile", "Profile": profile})
}

// EditProfilePage shows the profile form, creating the profile on first visit.
func (s *Server) EditProfilePage(c *fiber.Ctx) error {
	profile, err := s.profileService.GetOrCreateProfile(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	return s.render(c, "profile/edit", fiber.Map{
		"Title":   "Edit profile",
		"Profile": profile,
		"Form":    forms.Profile{Bio: profile.Bio},
	})
}

// EditProfile saves the bio and picture.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	user := currentUser(c)
	profile, err := s.profileService.GetOrCreateProfile(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	form := forms.Profile{
		Bio:          c.FormValue("bio"),
		ClearPicture: forms.Checkbox(c.FormValue("profile_picture-clear")),
	}
	form.Picture, err = readUpload(c, "profile_picture", s.config.MaxUploadBytes())
	if err != nil {
		return err
	}
	form.ImageChecker = s.media.CheckImage

	renderForm := func(errs forms.Errors) error {
		return s.render(c, "profile/edit", fiber.Map{
			"Title":   "Edit profile",
			"Profile": profile,
			"Form":    form,
			"Errors":  errs,
		})
	}

	errs := form.Validate()
	if !errs.Valid() {
		return renderForm(errs)
	}

	pictureKey := ""
	if form.Picture != nil {
		pictureKey, err = s.media.SaveProfilePicture(c.UserContext(), *form.Picture)
		if err != nil {
			errs.Add("profile_picture", forms.ImageErrorMessage(err))
			return renderForm(errs)
		}
	}

	_, err = s.profileService.EditProfile(c.UserContext(), service.EditProfileInput{
		UserID:       user.ID,
		Bio:          form.Bio,
		PictureKey:   pictureKey,
		ClearPicture: form.ClearPicture,
	})
	if err != nil {
		if pictureKey != "" {
			_ = s.media.Delete(c.UserContext(), pictureKey)
		}
		return err
	}
	return c.Redirect("/accounts/profile/", fiber.StatusFound)
}

// ViewProfile shows another user's profile. Viewing your own redirects to the account page.
func (s *Server) ViewProfile(c *fiber.Ctx) error {
	targetID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}

	profile, isSelf, err := s.profileService.ViewProfile(c.UserContext(), currentUser(c).ID, targetID)
	if err != nil {
		return err
	}
	if isSelf {
		return c.Redirect("/accounts/profile/", fiber.StatusFound)
	}
	return s.render(c, "profile/view", fiber.Map{"Title": profile.String(), "Profile": profile})
}
