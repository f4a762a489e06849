// Package device provides device registration, credentials and heartbeat tracking.
package device

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceExists   = errors.New("device already registered")
)

// Service errors.
var (
	ErrMissingAPIKey  = errors.New("api key required")
	ErrInvalidAPIKey  = errors.New("invalid api key")
	ErrDeviceDisabled = errors.New("device is not active")
	ErrMissingID      = errors.New("device_id is required")
)

// Device represents a registered SMS worker device.
type Device struct {
	DeviceID    string
	Name        string
	PhoneNumber string
	APIKey      string
	Active      bool
	LastSeen    time.Time
	CreatedAt   time.Time
}

// ListOptions contains options for listing devices.
type ListOptions struct {
	Limit int
}

// ListResult contains the result of listing devices.
type ListResult struct {
	Items []*Device
}
