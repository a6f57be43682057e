package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "twittich")

	token, err := m.Generate("user-123")
	if err != nil {
		t.Fatal(err)
	}

	userID, err := m.Validate(token)
	if err != nil {
		t.Fatal(err)
	}
	if userID != "user-123" {
		t.Fatalf("userID = %q, want user-123", userID)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour, "twittich").Generate("user-123")
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewManager("secret-b", time.Hour, "twittich").Validate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, "twittich")

	token, err := m.Generate("user-123")
	if err != nil {
		t.Fatal(err)
	}

	_, err = m.Validate(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "twittich")

	if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if _, err := m.Validate(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
