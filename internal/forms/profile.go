package forms

import (
	"errors"
	"strings"

	"github.com/lena210296/ProjectBlog/internal/storage"
)

// Profile edits the bio and picture. ClearPicture removes the current picture.
type Profile struct {
	Bio          string                     `form:"bio" validate:"-"`
	Picture      *storage.Upload            `form:"-" validate:"-"`
	ClearPicture bool                       `form:"profile_picture-clear" validate:"-"`
	ImageChecker func(storage.Upload) error `form:"-" validate:"-"`
}

func (f *Profile) Validate() Errors {
	f.Bio = strings.TrimSpace(f.Bio)
	errs := check(f)
	if f.Picture != nil && f.ClearPicture {
		errs.Add("profile_picture", "Please either submit a file or check the clear checkbox, not both.")
		return errs
	}
	if f.Picture != nil && f.ImageChecker != nil {
		if err := f.ImageChecker(*f.Picture); err != nil {
			errs.Add("profile_picture", ImageErrorMessage(err))
		}
	}
	return errs
}

// ImageErrorMessage turns a media validation error into a field message.
func ImageErrorMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrEmptyUpload):
		return "The submitted file is empty."
	case errors.Is(err, storage.ErrTooLarge):
		return "The submitted file is too large."
	default:
		return "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	}
}
