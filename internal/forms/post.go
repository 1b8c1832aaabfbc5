package forms

import (
	"strings"

	"github.com/lena210296/ProjectBlog/internal/storage"
)

// Post is the create/edit post form. Image is required when creating.
type Post struct {
	Title            string `form:"title" validate:"required,max=200"`
	ShortDescription string `form:"short_description" validate:"required,max=500"`
	FullDescription  string `form:"full_description" validate:"required"`
	Status           string `form:"status" validate:"omitempty,oneof=draft published"`

	Image        *storage.Upload            `form:"-" validate:"-"`
	RequireImage bool                       `form:"-" validate:"-"`
	ImageChecker func(storage.Upload) error `form:"-" validate:"-"`
}

func (f *Post) Validate() Errors {
	f.Title = strings.TrimSpace(f.Title)
	f.ShortDescription = strings.TrimSpace(f.ShortDescription)
	f.FullDescription = strings.TrimSpace(f.FullDescription)
	f.Status = strings.TrimSpace(f.Status)

	errs := check(f)
	switch {
	case f.Image == nil:
		if f.RequireImage {
			errs.Add("image", "This field is required.")
		}
	case f.ImageChecker != nil:
		if err := f.ImageChecker(*f.Image); err != nil {
			errs.Add("image", ImageErrorMessage(err))
		}
	}
	return errs
}
