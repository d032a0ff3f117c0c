package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/domain/telemetry/mock"
	"spacelink-gateway/internal/infrastructure/database/memory"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"

	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func tsPtr(t time.Time) *time.Time { return &t }

func newService(t *testing.T) (*Service, *memory.TelemetryRepository, *memory.DeviceRepository) {
	t.Helper()
	readings := memory.NewTelemetryRepository()
	devices := memory.NewDeviceRepository()
	svc := NewService(readings, devices).WithClock(func() time.Time { return testNow })
	return svc, readings, devices
}

func deviceKey(deviceID, org string) rbac.Principal {
	return rbac.NewDevicePrincipal("key-"+deviceID, org, deviceID)
}

func validReading(deviceID string, ts time.Time) *ReadingRequest {
	return &ReadingRequest{
		DeviceID:          deviceID,
		Organization:      "acme",
		Timestamp:         tsPtr(ts),
		LatencyMs:         f64(45.5),
		PacketLossPercent: f64(0.2),
		SignalStrength:    f64(-68.5),
		Status:            "active",
	}
}

func TestSubmitThenLatestVisibleToOrganization(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	ts := testNow.Add(-time.Minute)
	ack, err := svc.Submit(ctx, deviceKey("device-001", "acme"), validReading("device-001", ts))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !ack.Accepted || ack.Duplicate {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	customer := rbac.NewUserPrincipal("u1", "carol", "acme", rbac.RoleCustomer)
	latest, err := svc.Latest(ctx, customer, "")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(latest) != 1 {
		t.Fatalf("got %d latest readings, want 1", len(latest))
	}
	got := latest[0]
	if got.DeviceID != "device-001" || got.LatencyMs != 45.5 || got.PacketLossPercent != 0.2 ||
		got.SignalStrength == nil || *got.SignalStrength != -68.5 || got.Status != "active" || !got.Timestamp.Equal(ts) {
		t.Errorf("latest reading does not match submission: %+v", got)
	}

	outsider := rbac.NewUserPrincipal("u2", "olga", "globex", rbac.RoleReadOnly)
	latest, err = svc.Latest(ctx, outsider, "")
	if err != nil {
		t.Fatalf("Latest for other org: %v", err)
	}
	if len(latest) != 0 {
		t.Errorf("other organization sees %d readings", len(latest))
	}

	if _, err := svc.Latest(ctx, outsider, "acme"); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("explicit foreign organization: got %v, want ErrTenantMismatch", err)
	}
}

func TestSubmitRejectsDeviceMismatch(t *testing.T) {
	svc, readings, _ := newService(t)

	_, err := svc.Submit(context.Background(), deviceKey("device-001", "acme"), validReading("device-002", testNow))
	if !errors.Is(err, appErrors.ErrDeviceMismatch) {
		t.Fatalf("got %v, want ErrDeviceMismatch", err)
	}

	n, _ := readings.Count(context.Background(), domainTelemetry.Filter{})
	if n != 0 {
		t.Errorf("rejected reading was stored")
	}
}

func TestSubmitRequiresDevicePrincipal(t *testing.T) {
	svc, _, _ := newService(t)
	admin := rbac.NewUserPrincipal("a", "admin", "acme", rbac.RoleAdmin)

	if _, err := svc.Submit(context.Background(), admin, validReading("device-001", testNow)); !errors.Is(err, appErrors.ErrDeviceMismatch) {
		t.Errorf("got %v, want ErrDeviceMismatch", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *ReadingRequest)
		field  string
	}{
		{"negative latency", func(r *ReadingRequest) { r.LatencyMs = f64(-1) }, "latency_ms"},
		{"missing latency", func(r *ReadingRequest) { r.LatencyMs = nil }, "latency_ms"},
		{"loss above 100", func(r *ReadingRequest) { r.PacketLossPercent = f64(100.5) }, "packet_loss_percent"},
		{"negative loss", func(r *ReadingRequest) { r.PacketLossPercent = f64(-0.1) }, "packet_loss_percent"},
		{"unknown status", func(r *ReadingRequest) { r.Status = "exploded" }, "status"},
		{"positive signal", func(r *ReadingRequest) { r.SignalStrength = f64(12) }, "signal_strength"},
		{"negative throughput", func(r *ReadingRequest) { r.ThroughputMbps = f64(-3) }, "throughput_mbps"},
		{"latitude out of range", func(r *ReadingRequest) { r.Latitude = f64(91) }, "latitude"},
		{"future timestamp", func(r *ReadingRequest) { r.Timestamp = tsPtr(testNow.Add(time.Hour)) }, "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, readings, _ := newService(t)
			req := validReading("device-001", testNow.Add(-time.Minute))
			tt.mutate(req)

			_, err := svc.Submit(context.Background(), deviceKey("device-001", "acme"), req)
			if appErrors.Code(err) != appErrors.CodeValidation {
				t.Fatalf("got %v, want validation error", err)
			}
			if f := appErrors.Field(err); f != tt.field {
				t.Errorf("field = %q, want %q", f, tt.field)
			}

			n, _ := readings.Count(context.Background(), domainTelemetry.Filter{})
			if n != 0 {
				t.Errorf("invalid reading was stored")
			}
		})
	}
}

func TestSubmitBoundaryValuesAccepted(t *testing.T) {
	svc, _, _ := newService(t)
	req := validReading("device-001", testNow)
	req.LatencyMs = f64(0)
	req.PacketLossPercent = f64(100)
	req.Status = " OFFLINE "

	if _, err := svc.Submit(context.Background(), deviceKey("device-001", "acme"), req); err != nil {
		t.Fatalf("boundary reading rejected: %v", err)
	}
}

func TestSubmitTenantMismatch(t *testing.T) {
	svc, _, _ := newService(t)
	req := validReading("device-001", testNow)
	req.Organization = "globex"

	if _, err := svc.Submit(context.Background(), deviceKey("device-001", "acme"), req); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Fatalf("got %v, want ErrTenantMismatch", err)
	}
}

func TestSubmitFillsOrganizationFromKey(t *testing.T) {
	svc, readings, _ := newService(t)
	req := validReading("device-001", testNow)
	req.Organization = ""

	if _, err := svc.Submit(context.Background(), deviceKey("device-001", "acme"), req); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	latest, err := readings.Latest(context.Background(), "device-001")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Organization != "acme" {
		t.Errorf("organization = %q, want acme", latest.Organization)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	svc, readings, _ := newService(t)
	ctx := context.Background()
	key := deviceKey("device-001", "acme")
	ts := time.Date(2026, 3, 1, 11, 0, 0, 123456789, time.UTC)

	if _, err := svc.Submit(ctx, key, validReading("device-001", ts)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	ack, err := svc.Submit(ctx, key, validReading("device-001", ts.Add(100*time.Nanosecond)))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !ack.Accepted || !ack.Duplicate {
		t.Errorf("retry ack = %+v, want accepted duplicate", ack)
	}

	n, err := readings.Count(ctx, domainTelemetry.Filter{DeviceIDs: []string{"device-001"}})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d readings, want 1", n)
	}
}

func TestLatestIgnoresOutOfOrderArrival(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	key := deviceKey("device-001", "acme")
	newer := testNow.Add(-time.Minute)
	older := testNow.Add(-time.Hour)

	if _, err := svc.Submit(ctx, key, validReading("device-001", newer)); err != nil {
		t.Fatalf("Submit newer: %v", err)
	}
	if _, err := svc.Submit(ctx, key, validReading("device-001", older)); err != nil {
		t.Fatalf("Submit older: %v", err)
	}

	admin := rbac.NewUserPrincipal("a", "admin", "spacelink", rbac.RoleAdmin)
	latest, err := svc.DeviceLatest(ctx, admin, "device-001")
	if err != nil {
		t.Fatalf("DeviceLatest: %v", err)
	}
	if !latest.Timestamp.Equal(newer) {
		t.Errorf("latest = %v, want %v", latest.Timestamp, newer)
	}

	history, err := svc.History(ctx, admin, "device-001", 24)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 || !history[0].Timestamp.Equal(older) {
		t.Errorf("history not ordered oldest first: %+v", history)
	}
}

func TestSubmitRejectsDeactivatedDevice(t *testing.T) {
	svc, _, devices := newService(t)
	ctx := context.Background()
	key := deviceKey("device-001", "acme")

	if _, err := svc.Submit(ctx, key, validReading("device-001", testNow.Add(-time.Hour))); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := devices.Deactivate(ctx, "device-001"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if _, err := svc.Submit(ctx, key, validReading("device-001", testNow)); !errors.Is(err, appErrors.ErrDeviceInactive) {
		t.Errorf("got %v, want ErrDeviceInactive", err)
	}
}

func TestSubmitBatchPartialFailure(t *testing.T) {
	svc, readings, _ := newService(t)
	ctx := context.Background()

	bad := validReading("device-001", testNow.Add(-2*time.Minute))
	bad.PacketLossPercent = f64(150)

	batch := []*ReadingRequest{
		validReading("device-001", testNow.Add(-3*time.Minute)),
		bad,
		validReading("device-002", testNow.Add(-time.Minute)),
		validReading("device-001", testNow.Add(-3*time.Minute)),
	}

	result, err := svc.SubmitBatch(ctx, deviceKey("device-001", "acme"), batch)
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if result.Submitted != 4 || result.Accepted != 1 || result.Rejected != 2 || result.Duplicates != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if r := result.Results[1]; r.Error != appErrors.CodeValidation || r.Field != "packet_loss_percent" {
		t.Errorf("item 1 = %+v", r)
	}
	if r := result.Results[2]; r.Error != appErrors.CodeDeviceMismatch {
		t.Errorf("item 2 = %+v", r)
	}

	n, _ := readings.Count(ctx, domainTelemetry.Filter{})
	if n != 1 {
		t.Errorf("got %d stored readings, want 1", n)
	}
}

func TestSubmitBatchLimits(t *testing.T) {
	svc, _, _ := newService(t)
	key := deviceKey("device-001", "acme")

	if _, err := svc.SubmitBatch(context.Background(), key, nil); appErrors.Code(err) != appErrors.CodeValidation {
		t.Errorf("empty batch: got %v", err)
	}
	if _, err := svc.SubmitBatch(context.Background(), key, make([]*ReadingRequest, MaxBatchSize+1)); appErrors.Code(err) != appErrors.CodeValidation {
		t.Errorf("oversized batch: got %v", err)
	}
}

func TestSubmitPropagatesStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	storeErr := errors.New("connection reset")
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(false, storeErr)

	svc := NewService(repo, memory.NewDeviceRepository()).WithClock(func() time.Time { return testNow })
	_, err := svc.Submit(context.Background(), deviceKey("device-001", "acme"), validReading("device-001", testNow))
	if !errors.Is(err, storeErr) {
		t.Fatalf("got %v, want store error", err)
	}
	if appErrors.Code(err) != appErrors.CodeInternal {
		t.Errorf("code = %s, want INTERNAL_ERROR", appErrors.Code(err))
	}
}

func TestDeviceReadsEnforceTenancy(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, deviceKey("device-001", "acme"), validReading("device-001", testNow)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	outsider := rbac.NewUserPrincipal("u", "bob", "globex", rbac.RoleCustomer)
	if _, err := svc.DeviceLatest(ctx, outsider, "device-001"); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("DeviceLatest: got %v, want ErrTenantMismatch", err)
	}
	if _, err := svc.History(ctx, outsider, "device-001", 24); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("History: got %v, want ErrTenantMismatch", err)
	}
	if _, err := svc.History(ctx, outsider, "device-001", 500); appErrors.Field(err) != "hours" {
		t.Errorf("History hours: got %v", err)
	}
}

func TestQueryAndSummary(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	key := deviceKey("device-001", "acme")

	for i := 0; i < 5; i++ {
		req := validReading("device-001", testNow.Add(-time.Duration(i)*time.Minute))
		if i == 0 {
			req.Status = "degraded"
		}
		if _, err := svc.Submit(ctx, key, req); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	customer := rbac.NewUserPrincipal("u", "carol", "acme", rbac.RoleCustomer)
	got, err := svc.Query(ctx, customer, &QueryRequest{DeviceID: "device-001", Limit: 3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 3 || !got[0].Timestamp.Equal(testNow) {
		t.Errorf("query not newest first with limit: %+v", got)
	}

	got, err = svc.Query(ctx, customer, &QueryRequest{Status: "degraded"})
	if err != nil || len(got) != 1 {
		t.Errorf("status filter: %d readings, err %v", len(got), err)
	}

	if _, err := svc.Query(ctx, customer, &QueryRequest{Limit: 5000}); appErrors.Field(err) != "limit" {
		t.Errorf("limit: got %v", err)
	}

	summary, err := svc.Summary(ctx, customer, "")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalDevices != 1 || summary.ActiveDevices != 0 || summary.Readings24h != 5 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.AvgLatencyMs == nil || *summary.AvgLatencyMs != 45.5 || summary.AvgThroughputMbps != nil {
		t.Errorf("unexpected averages: %+v", summary)
	}
}
