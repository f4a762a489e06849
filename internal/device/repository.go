package device

import "context"

// Repository defines the interface for device persistence.
type Repository interface {
	// GetByID retrieves a device by its external identifier.
	// Returns ErrDeviceNotFound if no such device exists.
	GetByID(ctx context.Context, deviceID string) (*Device, error)

	// GetByAPIKey retrieves a device by its API key.
	// Returns ErrDeviceNotFound if no device holds the key.
	GetByAPIKey(ctx context.Context, apiKey string) (*Device, error)

	// Create persists a new device.
	// Returns ErrDeviceExists if the device identifier is already taken.
	Create(ctx context.Context, device *Device) error

	// TouchLastSeen updates the device's last-seen timestamp to now.
	TouchLastSeen(ctx context.Context, deviceID string) error

	// SetActive toggles the device's active flag.
	// Returns ErrDeviceNotFound if no such device exists.
	SetActive(ctx context.Context, deviceID string, active bool) error

	// List retrieves registered devices, most recently created first.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
}
