package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/smsrelay/smsrelay/internal/api/middleware"
	"github.com/smsrelay/smsrelay/internal/api/models"
	"github.com/smsrelay/smsrelay/internal/api/response"
	"github.com/smsrelay/smsrelay/internal/device"
)

// AdminHandler handles the administrative device surface.
type AdminHandler struct {
	devices *device.Service
	log     zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(devices *device.Service, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{devices: devices, log: log}
}

// ListDevices handles GET /api/admin/devices.
func (h *AdminHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.devices.List(r.Context(), 0)
	if err != nil {
		h.log.Error().Err(err).Msg("device listing failed")
		response.InternalError(w, r)
		return
	}

	items := make([]models.AdminDevice, 0, len(devices))
	for _, d := range devices {
		items = append(items, models.AdminDevice{
			DeviceID:    d.DeviceID,
			DeviceName:  d.Name,
			PhoneNumber: d.PhoneNumber,
			Active:      d.Active,
			LastSeen:    d.LastSeen,
			CreatedAt:   d.CreatedAt,
		})
	}

	response.JSON(w, r, http.StatusOK, models.AdminDeviceList{
		Success: true,
		Count:   len(items),
		Devices: items,
	})
}

// Activate handles POST /api/admin/devices/{deviceID}/activate.
func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /api/admin/devices/{deviceID}/deactivate.
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	deviceID := chi.URLParam(r, "deviceID")
	if deviceID == "" {
		response.BadRequest(w, r, "deviceID is required")
		return
	}

	if err := h.devices.SetActive(r.Context(), deviceID, active); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			response.NotFound(w, r, "device not found")
			return
		}
		h.log.Error().Err(err).Str("device_id", deviceID).Msg("activation toggle failed")
		response.InternalError(w, r)
		return
	}

	h.log.Info().
		Str("device_id", deviceID).
		Bool("active", active).
		Str("operator", middleware.GetOperator(r.Context())).
		Msg("device activation toggled")

	response.JSON(w, r, http.StatusOK, models.UpdateStatusResponse{
		Success: true,
		Message: "device updated",
	})
}
