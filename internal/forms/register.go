package forms

import (
	"strings"

	"github.com/lena210296/ProjectBlog/internal/validation"
)

// Register is the sign-up form.
type Register struct {
	Username  string `form:"username" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

// Validate checks field shape and password rules. Username uniqueness is
// checked by the user service.
func (f *Register) Validate() Errors {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	errs := check(f)
	if !errs.Has("username") {
		if err := validation.ValidateUsername(f.Username); err != nil {
			errs.Add("username", err.Error())
		}
	}
	if errs.Has("password1") || errs.Has("password2") {
		return errs
	}
	if f.Password1 != f.Password2 {
		errs.Add("password2", "The two password fields didn't match.")
		return errs
	}
	for _, err := range validation.ValidatePassword(f.Password2, f.Username) {
		errs.Add("password2", err.Error())
	}
	return errs
}
