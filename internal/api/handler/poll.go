package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smsrelay/smsrelay/internal/api/middleware"
	"github.com/smsrelay/smsrelay/internal/api/models"
	"github.com/smsrelay/smsrelay/internal/api/response"
	"github.com/smsrelay/smsrelay/internal/device"
	"github.com/smsrelay/smsrelay/internal/job"
)

// PollHandler handles device-facing dispatch and status reporting.
type PollHandler struct {
	devices *device.Service
	jobs    *job.Service
	log     zerolog.Logger
}

// NewPollHandler creates a new PollHandler.
func NewPollHandler(devices *device.Service, jobs *job.Service, log zerolog.Logger) *PollHandler {
	return &PollHandler{devices: devices, jobs: jobs, log: log}
}

// FetchPending handles GET /api/fetch-pending.
// Touches the device heartbeat, then claims up to the batch limit of
// eligible jobs. Claiming marks the jobs in-flight so a concurrent poll
// from the same device cannot receive an overlapping batch.
func (h *PollHandler) FetchPending(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.GetDeviceID(r.Context())

	// Heartbeat is best-effort; dispatch proceeds regardless.
	if err := h.devices.Touch(r.Context(), deviceID); err != nil {
		h.log.Warn().Err(err).Str("device_id", deviceID).Msg("heartbeat update failed")
	}

	jobs, err := h.jobs.Claim(r.Context(), deviceID, job.DefaultBatchSize)
	if err != nil {
		h.log.Error().Err(err).Str("device_id", deviceID).Msg("claim failed")
		response.InternalError(w, r)
		return
	}

	messages := make([]models.PendingMessage, 0, len(jobs))
	for _, j := range jobs {
		messages = append(messages, models.PendingMessage{
			ID:          j.ID,
			PhoneNumber: j.PhoneNumber,
			Message:     j.Message,
			Priority:    j.Priority,
			ScheduledAt: j.ScheduledAt,
		})
	}

	response.JSON(w, r, http.StatusOK, models.FetchPendingResponse{
		Success:  true,
		Count:    len(messages),
		Messages: messages,
	})
}

// UpdateStatus handles POST /api/update-status.
// The job id and the authenticated device are matched together, so a
// device can never transition another device's job.
func (h *PollHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := middleware.GetDeviceID(r.Context())

	var input models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	if input.RequestID == 0 || input.Status == "" {
		response.BadRequest(w, r, "request_id and status are required")
		return
	}

	err := h.jobs.ReportStatus(r.Context(), job.StatusUpdate{
		JobID:        input.RequestID,
		DeviceID:     deviceID,
		Status:       input.Status,
		ErrorMessage: input.ErrorMessage,
	})
	if err != nil {
		switch {
		case errors.Is(err, job.ErrMissingJobID), errors.Is(err, job.ErrMissingStatus):
			response.BadRequest(w, r, "request_id and status are required")
		case errors.Is(err, job.ErrJobNotFound):
			response.NotFound(w, r, "job not found")
		default:
			h.log.Error().Err(err).
				Str("device_id", deviceID).
				Int64("request_id", input.RequestID).
				Msg("status update failed")
			response.InternalError(w, r)
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.UpdateStatusResponse{
		Success: true,
		Message: "status updated",
	})
}
