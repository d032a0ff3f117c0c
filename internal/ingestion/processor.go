package ingestion

import (
	"context"
	"sync"
	"time"

	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/metrics"
	"spacelink-gateway/internal/rbac"
	"spacelink-gateway/internal/usecase/telemetry"
	appErrors "spacelink-gateway/pkg/errors"

	"go.uber.org/zap"
)

const processTimeout = 5 * time.Second

// Authenticator resolves the API key carried in an envelope.
type Authenticator interface {
	ValidateAPIKey(ctx context.Context, key string) (rbac.Principal, error)
}

// Submitter stores a reading on behalf of a principal.
type Submitter interface {
	Submit(ctx context.Context, p rbac.Principal, req *telemetry.ReadingRequest) (*telemetry.Ack, error)
}

// Processor authenticates and submits MQTT envelopes on a pool of workers. The
// queue is bounded; messages arriving while it is full are dropped.
type Processor struct {
	auth      Authenticator
	submitter Submitter

	workerCount int
	queue       chan *Message

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup

	tracker *MetricsTracker
}

// NewProcessor creates a new telemetry processor
func NewProcessor(auth Authenticator, submitter Submitter, workerCount, bufferSize int) *Processor {
	if workerCount <= 0 {
		workerCount = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}

	return &Processor{
		auth:        auth,
		submitter:   submitter,
		workerCount: workerCount,
		queue:       make(chan *Message, bufferSize),
		tracker:     NewMetricsTracker(),
	}
}

// Start starts the processor workers
func (p *Processor) Start(ctx context.Context) {
	logger.Info("Starting telemetry processor",
		zap.Int("workers", p.workerCount),
		zap.Int("buffer_size", cap(p.queue)),
	)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop stops accepting messages and waits for queued ones to be processed.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()

	snapshot := p.tracker.Snapshot()
	logger.Info("Telemetry processor stopped",
		zap.Int64("received", snapshot.MessagesReceived),
		zap.Int64("accepted", snapshot.MessagesAccepted),
		zap.Int64("rejected", snapshot.MessagesRejected),
		zap.Int64("dropped", snapshot.MessagesDropped),
	)
}

// Enqueue queues msg without blocking. It reports false when the message was
// dropped.
func (p *Processor) Enqueue(msg *Message) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		p.drop(msg, "processor stopped")
		return false
	}

	select {
	case p.queue <- msg:
		p.tracker.Update(func(m *IngestMetrics) {
			m.MessagesReceived++
			m.BufferSize = len(p.queue)
		})
		return true
	default:
		p.drop(msg, "buffer full")
		return false
	}
}

func (p *Processor) drop(msg *Message, reason string) {
	logger.Warn("Dropping telemetry message",
		zap.String("topic", msg.Topic),
		zap.String("reason", reason),
	)
	metrics.MQTTMessagesTotal.WithLabelValues(metrics.ResultDropped).Inc()
	p.tracker.Update(func(m *IngestMetrics) {
		m.MessagesDropped++
	})
}

func (p *Processor) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case msg, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, id, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Processor) process(ctx context.Context, workerID int, msg *Message) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	ack, err := p.handle(ctx, msg)
	if err != nil {
		logger.Warn("Rejected MQTT telemetry",
			zap.Int("worker", workerID),
			zap.String("topic", msg.Topic),
			zap.String("code", appErrors.Code(err)),
			zap.Error(err),
		)
		metrics.MQTTMessagesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		p.tracker.Update(func(m *IngestMetrics) {
			m.MessagesRejected++
			m.observe(time.Since(start))
		})
		return
	}

	result := metrics.ResultAccepted
	if ack.Duplicate {
		result = metrics.ResultDuplicate
	}
	metrics.MQTTMessagesTotal.WithLabelValues(result).Inc()
	p.tracker.Update(func(m *IngestMetrics) {
		if ack.Duplicate {
			m.MessagesDuplicate++
		} else {
			m.MessagesAccepted++
		}
		m.BufferSize = len(p.queue)
		m.observe(time.Since(start))
	})
}

// handle applies the same checks as the HTTP endpoint: key validation first,
// then the ingestor's device, tenant and payload checks.
func (p *Processor) handle(ctx context.Context, msg *Message) (*telemetry.Ack, error) {
	principal, err := p.auth.ValidateAPIKey(ctx, msg.Envelope.APIKey)
	if err != nil {
		return nil, err
	}
	return p.submitter.Submit(ctx, principal, msg.Envelope.Reading)
}

// GetMetrics returns current metrics
func (p *Processor) GetMetrics() IngestMetrics {
	return p.tracker.Snapshot()
}
