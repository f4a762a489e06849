package device

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// apiKeyLength is the byte length of generated API keys.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const apiKeyLength = 32

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	DeviceID    string
	Name        string
	PhoneNumber string
}

// RegisterResult is the outcome of a registration call.
type RegisterResult struct {
	APIKey string
	// Created is false when the device was already registered and the
	// existing key was returned instead of minting a new one.
	Created bool
}

// Service provides device registry and credential operations.
type Service struct {
	repo Repository
}

// NewService creates a new device service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register registers a device, or returns the existing API key if the
// identifier is already taken. A key is minted exactly once per device.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if input.DeviceID == "" {
		return nil, ErrMissingID
	}

	existing, err := s.repo.GetByID(ctx, input.DeviceID)
	if err == nil {
		return &RegisterResult{APIKey: existing.APIKey, Created: false}, nil
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		return nil, fmt.Errorf("lookup device: %w", err)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	now := time.Now()
	d := &Device{
		DeviceID:    input.DeviceID,
		Name:        input.Name,
		PhoneNumber: input.PhoneNumber,
		APIKey:      apiKey,
		Active:      true,
		LastSeen:    now,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		if errors.Is(err, ErrDeviceExists) {
			// Lost a registration race; return the winner's key.
			existing, err := s.repo.GetByID(ctx, input.DeviceID)
			if err != nil {
				return nil, fmt.Errorf("lookup device after conflict: %w", err)
			}
			return &RegisterResult{APIKey: existing.APIKey, Created: false}, nil
		}
		return nil, fmt.Errorf("create device: %w", err)
	}

	return &RegisterResult{APIKey: apiKey, Created: true}, nil
}

// Authenticate resolves an API key to its device.
// Returns ErrMissingAPIKey for an empty key, ErrInvalidAPIKey for an unknown
// key, and ErrDeviceDisabled when the device's active flag is off.
func (s *Service) Authenticate(ctx context.Context, apiKey string) (*Device, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	d, err := s.repo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("lookup api key: %w", err)
	}

	if !d.Active {
		return nil, ErrDeviceDisabled
	}

	return d, nil
}

// Touch updates the device's last-seen timestamp. Best-effort: failures are
// reported but never block dispatch.
func (s *Service) Touch(ctx context.Context, deviceID string) error {
	return s.repo.TouchLastSeen(ctx, deviceID)
}

// SetActive toggles a device's active flag.
func (s *Service) SetActive(ctx context.Context, deviceID string, active bool) error {
	if deviceID == "" {
		return ErrMissingID
	}
	return s.repo.SetActive(ctx, deviceID, active)
}

// List returns registered devices for the admin surface.
func (s *Service) List(ctx context.Context, limit int) ([]*Device, error) {
	result, err := s.repo.List(ctx, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// generateAPIKey returns a hex-encoded random key.
func generateAPIKey() (string, error) {
	buf := make([]byte, apiKeyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
