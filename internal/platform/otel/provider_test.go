package otel_test

import (
	"context"
	"testing"

	"werewolf/internal/config"
	"werewolf/internal/platform/otel"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryConfig
	}{
		{"no endpoint", config.TelemetryConfig{Enabled: true}},
		{"disabled", config.TelemetryConfig{Enabled: false, Endpoint: "http://localhost:4318"}},
		// Non-routable address, so nothing is exported.
		{"provider", config.TelemetryConfig{Enabled: true, Endpoint: "http://192.0.2.1:4318", ServiceName: "werewolf-test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := otel.Setup(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown error = %v", err)
			}
		})
	}
}
