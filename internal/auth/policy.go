package auth

import (
	"errors"
	"unicode"
)

// Password policy violations, one per rule. Checks run in a fixed order so
// the first failing rule is the one reported.
var (
	ErrPasswordEmpty       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password is too long")
	ErrPasswordNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLowercase = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoDigit     = errors.New("password must contain at least one digit")
)

const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// ValidatePassword checks a candidate password against the account password
// policy. It is a pure predicate shared by signup, change-password and
// profile updates.
func ValidatePassword(password string) error {
	switch n := len(password); {
	case n == 0:
		return ErrPasswordEmpty
	case n < minPasswordLen:
		return ErrPasswordTooShort
	case n > maxPasswordLen:
		return ErrPasswordTooLong
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return ErrPasswordNoUppercase
	case !lower:
		return ErrPasswordNoLowercase
	case !digit:
		return ErrPasswordNoDigit
	}
	return nil
}
