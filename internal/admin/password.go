package admin

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// MinPasswordLength is the minimum number of runes in an admin password.
const MinPasswordLength = 12

var weakPasswords = map[string]struct{}{
	"admin":       {},
	"admin123":    {},
	"admin123456": {},
	"password":    {},
	"password123": {},
	"qwerty":      {},
	"123456":      {},
	"12345678":    {},
	"changeme":    {},
	"change-me":   {},
}

var (
	errCommonPassword = errors.New("must not be a common weak password")
	errLowComplexity  = errors.New("must mix at least 3 of: lowercase letters, uppercase letters, digits, symbols")
)

// ValidatePassword enforces the admin password policy. Failures are
// validation errors keyed on "password".
func ValidatePassword(password string) error {
	err := validation.Errors{
		"password": validation.Validate(password,
			validation.Required,
			validation.RuneLength(MinPasswordLength, 0).Error("must be at least 12 characters long"),
			validation.By(notCommon),
			validation.By(complexEnough),
		),
	}.Filter()
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, "admin password does not meet the policy").
		WithTextCode(TextCodeWeakPassword)
}

func notCommon(value any) error {
	password, _ := value.(string)
	if _, weak := weakPasswords[strings.ToLower(strings.TrimSpace(password))]; weak {
		return errCommonPassword
	}
	return nil
}

func complexEnough(value any) error {
	password, _ := value.(string)
	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}
	classes := 0
	for _, present := range []bool{lower, upper, digit, other} {
		if present {
			classes++
		}
	}
	if classes < 3 {
		return errLowComplexity
	}
	return nil
}

// GeneratePassword returns 24 random bytes encoded as unpadded base64url.
func GeneratePassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
