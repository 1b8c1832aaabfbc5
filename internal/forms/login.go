package forms

import "strings"

// InvalidLoginMessage is shown when the credentials do not match an active user.
const InvalidLoginMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

// Login is the sign-in form.
type Login struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (f *Login) Validate() Errors {
	f.Username = strings.TrimSpace(f.Username)
	return check(f)
}
