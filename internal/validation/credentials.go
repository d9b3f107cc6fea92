// Package validation holds the credential checks applied to user input
// before anything is written to storage.
package validation

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest acceptable password, in characters.
const MinPasswordLength = 8

// Password rule violations, reported one at a time in this order.
const (
	MsgPasswordLength    = "Length of password should be at least 8."
	MsgPasswordUppercase = "Password should contain at least one uppercase letter"
	MsgPasswordLowercase = "Password should contain at least one lowercase letter"
	MsgPasswordSpecial   = "Password should contain at least one special character"
	MsgPasswordDigit     = "Password should contain at least one digit"
)

// ValidateEmail performs a minimal syntactic check: exactly one '@' with
// non-empty local and domain parts, and a domain containing a '.' that is not
// its last character. It is not an RFC 5322 parser.
func ValidateEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}

	local, domain := parts[0], parts[1]
	if local == "" || domain == "" {
		return false
	}

	dot := strings.LastIndexByte(domain, '.')
	if dot == -1 || dot == len(domain)-1 {
		return false
	}

	return true
}

// ValidatePassword returns "" for an acceptable password, otherwise the
// message of the first violated rule: length, uppercase, lowercase, special
// character, digit.
func ValidatePassword(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return MsgPasswordLength
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}

	switch {
	case !upper:
		return MsgPasswordUppercase
	case !lower:
		return MsgPasswordLowercase
	case !special:
		return MsgPasswordSpecial
	case !digit:
		return MsgPasswordDigit
	}

	return ""
}
