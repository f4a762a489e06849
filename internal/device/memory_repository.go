package device

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		devices: make(map[string]*Device),
	}
}

// GetByID retrieves a device by its external identifier.
func (r *InMemoryRepository) GetByID(_ context.Context, deviceID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return nil, ErrDeviceNotFound
	}

	cpy := *d
	return &cpy, nil
}

// GetByAPIKey retrieves a device by its API key.
func (r *InMemoryRepository) GetByAPIKey(_ context.Context, apiKey string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.devices {
		if d.APIKey == apiKey {
			cpy := *d
			return &cpy, nil
		}
	}

	return nil, ErrDeviceNotFound
}

// Create persists a new device.
func (r *InMemoryRepository) Create(_ context.Context, device *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[device.DeviceID]; ok {
		return ErrDeviceExists
	}

	cpy := *device
	r.devices[device.DeviceID] = &cpy
	return nil
}

// TouchLastSeen updates the device's last-seen timestamp to now.
func (r *InMemoryRepository) TouchLastSeen(_ context.Context, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.devices[deviceID]; ok {
		d.LastSeen = time.Now()
	}
	return nil
}

// SetActive toggles the device's active flag.
func (r *InMemoryRepository) SetActive(_ context.Context, deviceID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return ErrDeviceNotFound
	}

	d.Active = active
	return nil
}

// List retrieves registered devices, most recently created first.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var devices []*Device
	for _, d := range r.devices {
		cpy := *d
		devices = append(devices, &cpy)
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].CreatedAt.After(devices[j].CreatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(devices) > limit {
		devices = devices[:limit]
	}

	return &ListResult{Items: devices}, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
