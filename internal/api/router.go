// Package api provides the HTTP API for the SMS relay.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/smsrelay/smsrelay/internal/api/handler"
	"github.com/smsrelay/smsrelay/internal/api/middleware"
	"github.com/smsrelay/smsrelay/internal/api/models"
	"github.com/smsrelay/smsrelay/internal/auth"
	"github.com/smsrelay/smsrelay/internal/device"
	"github.com/smsrelay/smsrelay/internal/job"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	Logger      zerolog.Logger
	Metrics     *middleware.Metrics
	Devices     *device.Service
	Jobs        *job.Service
	AdminTokens *auth.Service
	Pinger      handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.Pinger)
	deviceHandler := handler.NewDeviceHandler(cfg.Devices, cfg.Logger)
	smsHandler := handler.NewSMSHandler(cfg.Jobs, cfg.Logger)
	pollHandler := handler.NewPollHandler(cfg.Devices, cfg.Jobs, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.Devices, cfg.Logger)

	deviceAuth := middleware.APIKeyAuth(cfg.Devices)
	adminAuth := middleware.AdminAuth(cfg.AdminTokens)

	registerRateLimit := middleware.RateLimitByIP(middleware.RegisterRateLimit)
	pollRateLimit := middleware.RateLimitByDevice(middleware.PollRateLimit)
	producerRateLimit := middleware.RateLimitByIP(middleware.ProducerRateLimit)

	// Every unknown selector/method combination gets the same 404 body.
	notFound := func(w http.ResponseWriter, _ *http.Request) {
		models.WriteError(w, http.StatusNotFound, "unknown api request")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Route("/api", func(r chi.Router) {
		// Device-facing endpoints (API key auth, per-device rate limit)
		r.Group(func(r chi.Router) {
			r.Use(deviceAuth)
			r.Use(pollRateLimit)
			r.Get("/fetch-pending", pollHandler.FetchPending)
			r.Post("/update-status", pollHandler.UpdateStatus)
		})

		// Bootstrap endpoint (public, strict rate limiting)
		r.With(registerRateLimit).Post("/register-device", deviceHandler.Register)

		// Producer endpoint (trusted at the network layer)
		r.With(producerRateLimit).Post("/send-sms", smsHandler.Send)

		// Admin endpoints (JWT bearer auth)
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth)
			r.Get("/devices", adminHandler.ListDevices)
			r.Post("/devices/{deviceID}/activate", adminHandler.Activate)
			r.Post("/devices/{deviceID}/deactivate", adminHandler.Deactivate)
		})
	})

	// Ops endpoints (public)
	r.Get("/healthz", opsHandler.Health)
	r.Get("/readyz", opsHandler.Ready)

	return r
}
