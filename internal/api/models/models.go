// Package models defines the wire types of the relay API.
package models

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorResponse is the uniform error body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes the uniform error body with the given status.
// Middleware uses this directly to avoid an import cycle with the
// response package.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// PendingMessage is one dispatched job in a fetch-pending response.
type PendingMessage struct {
	ID          int64      `json:"id"`
	PhoneNumber string     `json:"phone_number"`
	Message     string     `json:"message"`
	Priority    int        `json:"priority"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// FetchPendingResponse is the device-facing dispatch payload.
type FetchPendingResponse struct {
	Success  bool             `json:"success"`
	Count    int              `json:"count"`
	Messages []PendingMessage `json:"messages"`
}

// UpdateStatusRequest is a device's status report.
type UpdateStatusRequest struct {
	RequestID    int64   `json:"request_id"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// UpdateStatusResponse acknowledges an applied status report.
type UpdateStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegisterDeviceRequest registers (or re-registers) a device.
type RegisterDeviceRequest struct {
	DeviceID    string `json:"device_id"`
	DeviceName  string `json:"device_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// RegisterDeviceResponse carries the device's API key. The key is the
// same on every call for a given device id.
type RegisterDeviceResponse struct {
	Success bool   `json:"success"`
	APIKey  string `json:"api_key"`
}

// SendSMSRequest enqueues an SMS job for a target device.
type SendSMSRequest struct {
	DeviceID    string     `json:"device_id"`
	PhoneNumber string     `json:"phone_number"`
	Message     string     `json:"message"`
	Priority    *int       `json:"priority,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CallbackURL string     `json:"callback_url,omitempty"`
}

// SendSMSResponse acknowledges an enqueued job.
type SendSMSResponse struct {
	Success   bool  `json:"success"`
	RequestID int64 `json:"request_id"`
}

// AdminDevice is the admin-surface view of a device. The API key is
// never echoed here; re-register to recover it.
type AdminDevice struct {
	DeviceID    string    `json:"device_id"`
	DeviceName  string    `json:"device_name"`
	PhoneNumber string    `json:"phone_number"`
	Active      bool      `json:"active"`
	LastSeen    time.Time `json:"last_seen"`
	CreatedAt   time.Time `json:"created_at"`
}

// AdminDeviceList is the admin device listing payload.
type AdminDeviceList struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Devices []AdminDevice `json:"devices"`
}

// Health is the ops health payload.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
