// Package handler provides HTTP handlers for the relay API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smsrelay/smsrelay/internal/api/models"
	"github.com/smsrelay/smsrelay/internal/api/response"
	"github.com/smsrelay/smsrelay/internal/device"
)

// DeviceHandler handles device registration.
type DeviceHandler struct {
	devices *device.Service
	log     zerolog.Logger
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(devices *device.Service, log zerolog.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, log: log}
}

// Register handles POST /api/register-device.
// Registration is idempotent: a known device_id gets its existing API key
// back with 200, a new one gets a fresh key with 201.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	if input.DeviceID == "" {
		response.BadRequest(w, r, "device_id is required")
		return
	}

	result, err := h.devices.Register(r.Context(), device.RegisterInput{
		DeviceID:    input.DeviceID,
		Name:        input.DeviceName,
		PhoneNumber: input.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, device.ErrMissingID) {
			response.BadRequest(w, r, "device_id is required")
			return
		}
		h.log.Error().Err(err).Str("device_id", input.DeviceID).Msg("device registration failed")
		response.InternalError(w, r)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	response.JSON(w, r, status, models.RegisterDeviceResponse{
		Success: true,
		APIKey:  result.APIKey,
	})
}
