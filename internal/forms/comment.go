package forms

import "strings"

// Comment is the form under a post.
type Comment struct {
	Content     string `form:"content" validate:"required"`
	IsAnonymous bool   `form:"is_anonymous" validate:"-"`
}

func (f *Comment) Validate() Errors {
	f.Content = strings.TrimSpace(f.Content)
	return check(f)
}

// Checkbox interprets an HTML checkbox value.
func Checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
