package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"spacelink-gateway/internal/usecase/telemetry"
)

// Envelope is the MQTT payload a device publishes: its API key and one reading.
type Envelope struct {
	APIKey  string                    `json:"api_key"`
	Reading *telemetry.ReadingRequest `json:"reading"`
}

// Message is an envelope queued for processing.
type Message struct {
	Topic      string
	Envelope   *Envelope
	ReceivedAt time.Time
}

var (
	ErrMissingAPIKey  = errors.New("envelope has no api_key")
	ErrMissingReading = errors.New("envelope has no reading")
)

// ParseEnvelope decodes payload. A reading without device_id takes the last
// segment of topic, so devices may publish to spacelink/telemetry/<device_id>.
func ParseEnvelope(topic string, payload []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	env.APIKey = strings.TrimSpace(env.APIKey)
	if env.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if env.Reading == nil {
		return nil, ErrMissingReading
	}

	if strings.TrimSpace(env.Reading.DeviceID) == "" {
		if i := strings.LastIndex(topic, "/"); i >= 0 && i < len(topic)-1 {
			env.Reading.DeviceID = topic[i+1:]
		}
	}

	return &env, nil
}
