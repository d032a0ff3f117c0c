package ingestion

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/metrics"
	pkgmqtt "spacelink-gateway/pkg/mqtt"

	"go.uber.org/zap"
)

// MQTTIngestionConfig describes the telemetry topic and MQTT connection parameters.
type MQTTIngestionConfig struct {
	ClientConfig   *pkgmqtt.Config
	TelemetryTopic string
	QoS            byte
}

// MQTTIngestionClient wires MQTT messages into the ingestion processor.
type MQTTIngestionClient struct {
	cfg       *MQTTIngestionConfig
	client    *pkgmqtt.Client
	processor *Processor

	mu      sync.Mutex
	started bool
}

// NewMQTTIngestionClient builds a new MQTT client for ingestion.
func NewMQTTIngestionClient(cfg *MQTTIngestionConfig, processor *Processor) (*MQTTIngestionClient, error) {
	if cfg == nil || cfg.ClientConfig == nil {
		return nil, errors.New("mqtt ingestion config is not configured")
	}
	if cfg.TelemetryTopic == "" {
		return nil, errors.New("no MQTT telemetry topic configured for ingestion")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	return &MQTTIngestionClient{
		cfg:       cfg,
		client:    pkgmqtt.NewClient(cfg.ClientConfig, logger.Logger),
		processor: processor,
	}, nil
}

// Start establishes the MQTT connection and subscribes to the telemetry topic.
func (c *MQTTIngestionClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if err := c.client.Connect(); err != nil {
		return err
	}

	if err := c.client.Subscribe(c.cfg.TelemetryTopic, c.cfg.QoS, c.HandleMessage); err != nil {
		c.client.Disconnect()
		return fmt.Errorf("subscribe failed for topic %s: %w", c.cfg.TelemetryTopic, err)
	}

	c.started = true
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (c *MQTTIngestionClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	if err := c.client.Unsubscribe(c.cfg.TelemetryTopic); err != nil {
		logger.Warn("Failed to unsubscribe from MQTT topic", zap.String("topic", c.cfg.TelemetryTopic), zap.Error(err))
	}

	c.client.Disconnect()
	c.started = false
}

// HandleMessage decodes an envelope and hands it to the processor.
func (c *MQTTIngestionClient) HandleMessage(topic string, payload []byte) {
	env, err := ParseEnvelope(topic, payload)
	if err != nil {
		logger.Warn("Invalid telemetry payload", zap.String("topic", topic), zap.Error(err))
		metrics.MQTTMessagesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return
	}

	c.processor.Enqueue(&Message{Topic: topic, Envelope: env, ReceivedAt: time.Now().UTC()})
}
