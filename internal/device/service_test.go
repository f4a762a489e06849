package device_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smsrelay/smsrelay/internal/device"
)

func TestService_Register(t *testing.T) {
	repo := device.NewInMemoryRepository()
	service := device.NewService(repo)

	ctx := context.Background()

	result, err := service.Register(ctx, device.RegisterInput{
		DeviceID:    "phone-001",
		Name:        "Office Phone",
		PhoneNumber: "+31612345678",
	})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}
	if !result.Created {
		t.Error("expected first registration to create the device")
	}
	if len(result.APIKey) != 64 {
		t.Errorf("expected 64 hex character api key, got %d characters", len(result.APIKey))
	}

	// Registered devices start active
	d, err := repo.GetByID(ctx, "phone-001")
	if err != nil {
		t.Fatalf("failed to fetch device: %v", err)
	}
	if !d.Active {
		t.Error("expected new device to be active")
	}
}

func TestService_Register_Idempotent(t *testing.T) {
	repo := device.NewInMemoryRepository()
	service := device.NewService(repo)

	ctx := context.Background()

	first, err := service.Register(ctx, device.RegisterInput{DeviceID: "phone-001"})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	second, err := service.Register(ctx, device.RegisterInput{
		DeviceID: "phone-001",
		Name:     "different name",
	})
	if err != nil {
		t.Fatalf("failed to re-register device: %v", err)
	}

	if second.Created {
		t.Error("expected re-registration to return the existing device")
	}
	if second.APIKey != first.APIKey {
		t.Error("expected re-registration to return the original api key")
	}
}

func TestService_Register_MissingID(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())

	_, err := service.Register(context.Background(), device.RegisterInput{})
	if !errors.Is(err, device.ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	repo := device.NewInMemoryRepository()
	service := device.NewService(repo)

	ctx := context.Background()

	result, err := service.Register(ctx, device.RegisterInput{DeviceID: "phone-001"})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	d, err := service.Authenticate(ctx, result.APIKey)
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if d.DeviceID != "phone-001" {
		t.Errorf("expected device phone-001, got %q", d.DeviceID)
	}
}

func TestService_Authenticate_Errors(t *testing.T) {
	repo := device.NewInMemoryRepository()
	service := device.NewService(repo)

	ctx := context.Background()

	result, err := service.Register(ctx, device.RegisterInput{DeviceID: "phone-001"})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}
	if err := service.SetActive(ctx, "phone-001", false); err != nil {
		t.Fatalf("failed to deactivate device: %v", err)
	}

	tests := []struct {
		name    string
		apiKey  string
		wantErr error
	}{
		{"empty key", "", device.ErrMissingAPIKey},
		{"unknown key", "deadbeef", device.ErrInvalidAPIKey},
		{"disabled device", result.APIKey, device.ErrDeviceDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Authenticate(ctx, tt.apiKey)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestService_SetActive(t *testing.T) {
	repo := device.NewInMemoryRepository()
	service := device.NewService(repo)

	ctx := context.Background()

	result, err := service.Register(ctx, device.RegisterInput{DeviceID: "phone-001"})
	if err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	if err := service.SetActive(ctx, "phone-001", false); err != nil {
		t.Fatalf("failed to deactivate: %v", err)
	}
	if _, err := service.Authenticate(ctx, result.APIKey); !errors.Is(err, device.ErrDeviceDisabled) {
		t.Errorf("expected ErrDeviceDisabled after deactivation, got %v", err)
	}

	if err := service.SetActive(ctx, "phone-001", true); err != nil {
		t.Fatalf("failed to reactivate: %v", err)
	}
	if _, err := service.Authenticate(ctx, result.APIKey); err != nil {
		t.Errorf("expected reactivated device to authenticate, got %v", err)
	}
}

func TestService_SetActive_UnknownDevice(t *testing.T) {
	service := device.NewService(device.NewInMemoryRepository())

	err := service.SetActive(context.Background(), "no-such-device", true)
	if !errors.Is(err, device.ErrDeviceNotFound) {
		t.Errorf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestService_Touch(t *testing.T) {
	repo := device.NewInMemoryRepository()
	service := device.NewService(repo)

	ctx := context.Background()

	if _, err := service.Register(ctx, device.RegisterInput{DeviceID: "phone-001"}); err != nil {
		t.Fatalf("failed to register device: %v", err)
	}

	before, err := repo.GetByID(ctx, "phone-001")
	if err != nil {
		t.Fatalf("failed to fetch device: %v", err)
	}

	if err := service.Touch(ctx, "phone-001"); err != nil {
		t.Fatalf("failed to touch device: %v", err)
	}

	after, err := repo.GetByID(ctx, "phone-001")
	if err != nil {
		t.Fatalf("failed to fetch device: %v", err)
	}
	if after.LastSeen.Before(before.LastSeen) {
		t.Error("expected last seen to advance")
	}
}
