// Package validate holds the input checks enforced at the API boundary.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the hard cap on analyzable message length, in characters.
const MaxTextLength = 10000

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrTextRequired = errors.New("text is required")
	ErrTextEmpty    = errors.New("text cannot be empty")
	ErrTextTooLong  = errors.New("text cannot exceed 10000 characters")

	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("invalid email format")

	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must contain at least 6 characters")

	ErrNameRequired = errors.New("name is required")
	ErrNameTooShort = errors.New("name must contain at least 2 characters")
	ErrNameTooLong  = errors.New("name cannot exceed 100 characters")
)

// Text checks a message submitted for analysis.
func Text(text string) error {
	if text == "" {
		return ErrTextRequired
	}
	if strings.TrimSpace(text) == "" {
		return ErrTextEmpty
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// Email checks an account email address.
func Email(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// Password checks password strength at registration.
func Password(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if utf8.RuneCountInString(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

// Name checks a display name.
func Name(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return ErrNameTooShort
	}
	if n > 100 {
		return ErrNameTooLong
	}
	return nil
}
