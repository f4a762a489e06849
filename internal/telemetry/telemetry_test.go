package telemetry_test

import (
	"context"
	"testing"

	"github.com/smsrelay/smsrelay/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	provider, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "smsrelay-test",
		Enabled:     false,
	})
	if err != nil {
		t.Fatalf("failed to init disabled telemetry: %v", err)
	}

	if provider.Tracer == nil {
		t.Error("expected a tracer even when disabled")
	}
	if provider.Meter == nil {
		t.Error("expected a meter even when disabled")
	}
	if provider.TracerProvider != nil {
		t.Error("expected no tracer provider when disabled")
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown of disabled provider should be a no-op, got %v", err)
	}
}
