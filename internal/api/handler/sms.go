package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smsrelay/smsrelay/internal/api/models"
	"github.com/smsrelay/smsrelay/internal/api/response"
	"github.com/smsrelay/smsrelay/internal/device"
	"github.com/smsrelay/smsrelay/internal/job"
)

// SMSHandler handles producer-facing job submission.
type SMSHandler struct {
	jobs *job.Service
	log  zerolog.Logger
}

// NewSMSHandler creates a new SMSHandler.
func NewSMSHandler(jobs *job.Service, log zerolog.Logger) *SMSHandler {
	return &SMSHandler{jobs: jobs, log: log}
}

// Send handles POST /api/send-sms.
// Validation and the device check run before any write; a rejected request
// leaves no partial state.
func (h *SMSHandler) Send(w http.ResponseWriter, r *http.Request) {
	var input models.SendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	id, err := h.jobs.Enqueue(r.Context(), job.EnqueueInput{
		DeviceID:    input.DeviceID,
		PhoneNumber: input.PhoneNumber,
		Message:     input.Message,
		Priority:    input.Priority,
		ScheduledAt: input.ScheduledAt,
		CallbackURL: input.CallbackURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, job.ErrMissingDeviceID),
			errors.Is(err, job.ErrMissingPhone),
			errors.Is(err, job.ErrMissingMessage):
			response.BadRequest(w, r, "device_id, phone_number and message are required")
		case errors.Is(err, device.ErrDeviceNotFound):
			response.NotFound(w, r, "device not found")
		case errors.Is(err, device.ErrDeviceDisabled):
			response.Forbidden(w, r, "device is not active")
		default:
			h.log.Error().Err(err).Str("device_id", input.DeviceID).Msg("enqueue failed")
			response.InternalError(w, r)
		}
		return
	}

	response.JSON(w, r, http.StatusCreated, models.SendSMSResponse{
		Success:   true,
		RequestID: id,
	})
}
