package admin

import (
	"encoding/base64"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{name: "empty", password: ""},
		{name: "short", password: "Ab1!"},
		{name: "eleven runes", password: "Abcdefgh1!x"},
		{name: "weak list ignores padding", password: "  password123  "},
		{name: "two classes", password: "abcdefghijkl1"},
		{name: "three classes", password: "abcdefghijK1", ok: true},
		{name: "symbols count", password: "Correct horse battery!", ok: true},
		{name: "multibyte runes", password: "密码密码密码密码密码Ab", ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected %q to pass, got %v", tc.password, err)
				}
				return
			}
			if !goerrors.IsValidation(err) {
				t.Fatalf("expected validation error for %q, got %v", tc.password, err)
			}
		})
	}
}

func TestValidatePasswordReportsField(t *testing.T) {
	err := ValidatePassword("abcdefghijkl")
	fields, ok := goerrors.GetValidationErrors(err)
	if !ok || len(fields) != 1 || fields[0].Field != "password" {
		t.Fatalf("expected a password field error, got %#v", fields)
	}
	if fields[0].Message != errLowComplexity.Error() {
		t.Fatalf("unexpected message %q", fields[0].Message)
	}
}

func TestGeneratePassword(t *testing.T) {
	first, err := GeneratePassword()
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	raw, err := base64.RawURLEncoding.DecodeString(first)
	if err != nil || len(raw) != 24 {
		t.Fatalf("expected 24 bytes of base64url, got %q (%v)", first, err)
	}
	second, _ := GeneratePassword()
	if first == second {
		t.Fatal("expected distinct passwords")
	}
}
