package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smsrelay/smsrelay/internal/auth"
)

func TestService_MintAndValidate(t *testing.T) {
	service := auth.NewService(auth.Config{SigningKey: "test-signing-key"})

	token, expiresAt, err := service.Mint("alice")
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if time.Until(expiresAt) > auth.AdminTokenExpiry {
		t.Error("expected expiry within the configured window")
	}

	operator, err := service.Validate(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if operator != "alice" {
		t.Errorf("expected operator alice, got %q", operator)
	}
}

func TestService_Validate_WrongKey(t *testing.T) {
	minter := auth.NewService(auth.Config{SigningKey: "key-one"})
	validator := auth.NewService(auth.Config{SigningKey: "key-two"})

	token, _, err := minter.Mint("alice")
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	if _, err := validator.Validate(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestService_Validate_WrongIssuer(t *testing.T) {
	minter := auth.NewService(auth.Config{SigningKey: "shared-key", Issuer: "someone-else"})
	validator := auth.NewService(auth.Config{SigningKey: "shared-key"})

	token, _, err := minter.Mint("alice")
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	if _, err := validator.Validate(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestService_Validate_Garbage(t *testing.T) {
	service := auth.NewService(auth.Config{SigningKey: "test-signing-key"})

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "definitely-not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Validate(tt.token); !errors.Is(err, auth.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
