package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
)

// deviceStream is the ordered reading log of one device. Each stream has its own
// lock so writers for different devices never contend.
type deviceStream struct {
	mu       sync.RWMutex
	readings []*domainTelemetry.Reading
	keys     map[int64]struct{}
	latest   *domainTelemetry.Reading
}

// TelemetryRepository implements domainTelemetry.Repository in memory.
type TelemetryRepository struct {
	mu      sync.RWMutex
	streams map[string]*deviceStream
}

func NewTelemetryRepository() *TelemetryRepository {
	return &TelemetryRepository{streams: make(map[string]*deviceStream)}
}

func (r *TelemetryRepository) stream(deviceID string, create bool) *deviceStream {
	r.mu.RLock()
	s, ok := r.streams[deviceID]
	r.mu.RUnlock()
	if ok || !create {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.streams[deviceID]; ok {
		return s
	}
	s = &deviceStream{keys: make(map[int64]struct{})}
	r.streams[deviceID] = s
	return s
}

func (r *TelemetryRepository) snapshot() map[string]*deviceStream {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*deviceStream, len(r.streams))
	for id, s := range r.streams {
		out[id] = s
	}
	return out
}

func (r *TelemetryRepository) Append(ctx context.Context, reading *domainTelemetry.Reading) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s := r.stream(reading.DeviceID, true)
	key := reading.Timestamp.UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.keys[key]; dup {
		return false, nil
	}

	stored := cloneReading(reading)
	idx := sort.Search(len(s.readings), func(i int) bool {
		return s.readings[i].Timestamp.After(stored.Timestamp)
	})
	s.readings = append(s.readings, nil)
	copy(s.readings[idx+1:], s.readings[idx:])
	s.readings[idx] = stored
	s.keys[key] = struct{}{}

	if stored.Newer(s.latest) {
		s.latest = stored
	}

	return true, nil
}

func (r *TelemetryRepository) Latest(ctx context.Context, deviceID string) (*domainTelemetry.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := r.stream(deviceID, false)
	if s == nil {
		return nil, domainTelemetry.ErrNoReadings
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, domainTelemetry.ErrNoReadings
	}
	return cloneReading(s.latest), nil
}

func (r *TelemetryRepository) LatestByOrganization(ctx context.Context, organization string) ([]*domainTelemetry.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*domainTelemetry.Reading, 0)
	for _, s := range r.snapshot() {
		s.mu.RLock()
		latest := s.latest
		s.mu.RUnlock()

		if latest == nil {
			continue
		}
		if organization != "" && latest.Organization != organization {
			continue
		}
		out = append(out, cloneReading(latest))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func (r *TelemetryRepository) Window(ctx context.Context, deviceIDs []string, from, to time.Time) ([]*domainTelemetry.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*domainTelemetry.Reading, 0)
	for _, id := range deviceIDs {
		s := r.stream(id, false)
		if s == nil {
			continue
		}

		s.mu.RLock()
		start := sort.Search(len(s.readings), func(i int) bool {
			return !s.readings[i].Timestamp.Before(from)
		})
		for i := start; i < len(s.readings) && !s.readings[i].Timestamp.After(to); i++ {
			out = append(out, cloneReading(s.readings[i]))
		}
		s.mu.RUnlock()
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *TelemetryRepository) Query(ctx context.Context, filter domainTelemetry.Filter) ([]*domainTelemetry.Reading, error) {
	out, err := r.match(ctx, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *TelemetryRepository) Count(ctx context.Context, filter domainTelemetry.Filter) (int64, error) {
	filter.Limit = 0
	out, err := r.match(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(out)), nil
}

func (r *TelemetryRepository) match(ctx context.Context, filter domainTelemetry.Filter) ([]*domainTelemetry.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	streams := r.snapshot()
	if len(filter.DeviceIDs) > 0 {
		scoped := make(map[string]*deviceStream, len(filter.DeviceIDs))
		for _, id := range filter.DeviceIDs {
			if s, ok := streams[id]; ok {
				scoped[id] = s
			}
		}
		streams = scoped
	}

	out := make([]*domainTelemetry.Reading, 0)
	for _, s := range streams {
		s.mu.RLock()
		for _, reading := range s.readings {
			if filter.Matches(reading) {
				out = append(out, cloneReading(reading))
			}
		}
		s.mu.RUnlock()
	}
	return out, nil
}

func cloneReading(r *domainTelemetry.Reading) *domainTelemetry.Reading {
	c := *r
	return &c
}
