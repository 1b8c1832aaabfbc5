// Package validation provides account input rules shared by forms and admin tooling.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
	MaxUsernameLength = 150
	MaxEmailLength    = 254
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	commonPasswords = map[string]struct{}{
		"password": {}, "password1": {}, "12345678": {}, "123456789": {},
		"qwerty123": {}, "iloveyou": {}, "sunshine": {}, "princess": {},
		"football": {}, "baseball": {}, "welcome1": {}, "letmein1": {},
		"abc12345": {}, "11111111": {}, "00000000": {}, "passw0rd": {},
	}
)

// ValidatePassword returns every rule the password breaks, in a stable order.
func ValidatePassword(password, username string) []error {
	var errs []error

	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		errs = append(errs, fmt.Errorf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if n > MaxPasswordLength {
		errs = append(errs, fmt.Errorf("This password is too long. It must contain at most %d characters.", MaxPasswordLength))
	} else if len(password) > MaxPasswordBytes {
		errs = append(errs, fmt.Errorf("This password is too long. It must be at most %d bytes.", MaxPasswordBytes))
	}

	lower := strings.ToLower(password)
	if u := strings.ToLower(username); len(u) >= 3 && strings.Contains(lower, u) {
		errs = append(errs, errors.New("The password is too similar to the username."))
	}
	if _, ok := commonPasswords[lower]; ok {
		errs = append(errs, errors.New("This password is too common."))
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		errs = append(errs, errors.New("This password is entirely numeric."))
	}

	return errs
}

// ValidateUsername checks length and the allowed character set.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("This field is required.")
	}
	if n := utf8.RuneCountInString(username); n > MaxUsernameLength {
		return fmt.Errorf("Ensure this value has at most %d characters (it has %d).", MaxUsernameLength, n)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("Ensure this value has at most %d characters (it has %d).", MaxEmailLength, len(email))
	}
	if !emailRegex.MatchString(email) {
		return errors.New("Enter a valid email address.")
	}
	return nil
}
