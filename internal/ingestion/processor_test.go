package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"spacelink-gateway/internal/config"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/infrastructure/database/memory"
	"spacelink-gateway/internal/usecase/auth"
	"spacelink-gateway/internal/usecase/telemetry"
)

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope("spacelink/telemetry/sat-7", []byte(`{"api_key":" sk_x ","reading":{"latency_ms":20,"packet_loss_percent":1}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	if env.APIKey != "sk_x" || env.Reading.DeviceID != "sat-7" {
		t.Errorf("unexpected envelope: key=%q device=%q", env.APIKey, env.Reading.DeviceID)
	}

	env, err = ParseEnvelope("spacelink/telemetry/sat-7", []byte(`{"api_key":"k","reading":{"device_id":"sat-9"}}`))
	if err != nil || env.Reading.DeviceID != "sat-9" {
		t.Errorf("explicit device id overridden: %v", err)
	}

	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"no key", `{"reading":{}}`, ErrMissingAPIKey},
		{"no reading", `{"api_key":"k"}`, ErrMissingReading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEnvelope("t", []byte(tt.payload)); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := ParseEnvelope("t", []byte(`not json`)); err == nil {
		t.Error("malformed payload accepted")
	}
}

func float(v float64) *float64 { return &v }

func TestProcessorSubmitsThroughIngestor(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: "s", ExpiryMinutes: 60},
		APIKey: config.APIKeyConfig{Prefix: "sk"},
	}
	devices := memory.NewDeviceRepository()
	readings := memory.NewTelemetryRepository()
	authService := auth.NewService(memory.NewAccountRepository(), memory.NewAPIKeyRepository(), devices, memory.NewPartnerRepository(), cfg)
	telemetryService := telemetry.NewService(readings, devices)

	key, err := authService.GenerateAPIKey(ctx, auth.GenerateKeyRequest{DeviceID: "sat-7", Organization: "acme"})
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}

	ts := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	reading := func(device string) *telemetry.ReadingRequest {
		return &telemetry.ReadingRequest{
			DeviceID:          device,
			Timestamp:         &ts,
			LatencyMs:         float(42),
			PacketLossPercent: float(0.5),
		}
	}

	p := NewProcessor(authService, telemetryService, 2, 10)
	p.Start(ctx)

	msgs := []*Envelope{
		{APIKey: key.APIKey, Reading: reading("sat-7")},
		{APIKey: key.APIKey, Reading: reading("sat-7")},
		{APIKey: key.APIKey, Reading: reading("sat-8")},
		{APIKey: "sk_sat-7_forged", Reading: reading("sat-7")},
	}
	for _, env := range msgs {
		if !p.Enqueue(&Message{Topic: "spacelink/telemetry/sat-7", Envelope: env}) {
			t.Fatal("message dropped")
		}
	}
	p.Stop()

	m := p.GetMetrics()
	if m.MessagesReceived != 4 || m.MessagesAccepted != 1 || m.MessagesDuplicate != 1 || m.MessagesRejected != 2 {
		t.Errorf("unexpected metrics: %+v", m)
	}

	stored, err := readings.Count(ctx, domainTelemetry.Filter{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if stored != 1 {
		t.Errorf("stored readings = %d, want 1", stored)
	}
}

func TestProcessorDropsOnOverflow(t *testing.T) {
	p := NewProcessor(nil, nil, 1, 1)

	env := &Envelope{APIKey: "k", Reading: &telemetry.ReadingRequest{}}
	if !p.Enqueue(&Message{Envelope: env}) {
		t.Fatal("first message dropped")
	}
	if p.Enqueue(&Message{Envelope: env}) {
		t.Fatal("overflow message queued")
	}

	m := p.GetMetrics()
	if m.MessagesReceived != 1 || m.MessagesDropped != 1 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}
