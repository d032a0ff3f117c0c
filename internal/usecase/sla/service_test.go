package sla

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	domainNetwork "spacelink-gateway/internal/domain/network"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/infrastructure/database/memory"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func readings(total, offline int) []*domainTelemetry.Reading {
	out := make([]*domainTelemetry.Reading, total)
	for i := range out {
		status := domainTelemetry.StatusActive
		if i < offline {
			status = domainTelemetry.StatusOffline
		}
		out[i] = &domainTelemetry.Reading{
			DeviceID:     "device-001",
			Organization: "acme",
			Timestamp:    testNow.Add(-time.Duration(i) * time.Minute),
			LatencyMs:    80,
			Status:       status,
		}
	}
	return out
}

func network(target float64, members ...string) *domainNetwork.Network {
	return &domainNetwork.Network{
		ID:                 "net_0123456789ab",
		Organization:       "acme",
		Name:               "Backbone",
		Type:               domainNetwork.TypeSatellite,
		Status:             domainNetwork.StatusActive,
		SLAUptimeTarget:    target,
		SLALatencyTargetMs: 100,
		DeviceIDs:          members,
	}
}

func TestComputeMissesTarget(t *testing.T) {
	report := Compute(network(99.9, "device-001"), readings(1000, 2), testNow.Add(-720*time.Hour), testNow)

	if report.ObservedUptimePercent != 99.8 {
		t.Errorf("uptime = %v, want 99.8", report.ObservedUptimePercent)
	}
	if report.Compliant {
		t.Error("99.8% against 99.9% must not be compliant")
	}
	if math.Abs(report.Margin-(-0.1)) > 1e-9 {
		t.Errorf("margin = %v, want -0.1", report.Margin)
	}
	if report.TotalReadings != 1000 || report.OfflineReadings != 2 {
		t.Errorf("counts = %d/%d", report.TotalReadings, report.OfflineReadings)
	}
	if report.LatencyCompliant == nil || !*report.LatencyCompliant {
		t.Error("80ms average must meet a 100ms latency target")
	}
}

func TestComputeBoundaryIsCompliant(t *testing.T) {
	report := Compute(network(99.9), readings(1000, 1), testNow.Add(-time.Hour), testNow)
	if !report.Compliant {
		t.Errorf("observed %v == target 99.9 must be compliant", report.ObservedUptimePercent)
	}
	if report.Margin != 0 {
		t.Errorf("margin = %v, want 0", report.Margin)
	}
}

func TestComputeMatchesDefinition(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for offline := 0; offline <= total; offline++ {
			for _, target := range []float64{0, 50, 90, 95, 99, 99.9, 100} {
				report := Compute(network(target), readings(total, offline), testNow.Add(-time.Hour), testNow)
				uptime := 100 * float64(total-offline) / float64(total)
				if report.Compliant != (uptime >= target) {
					t.Fatalf("total=%d offline=%d target=%v: compliant=%v, uptime=%v",
						total, offline, target, report.Compliant, uptime)
				}
			}
		}
	}
}

func TestComputeWithoutReadings(t *testing.T) {
	report := Compute(network(0), nil, testNow.Add(-time.Hour), testNow)
	if report.ObservedUptimePercent != 0 || report.Compliant {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.AvgLatencyMs != nil || report.LatencyCompliant != nil {
		t.Error("latency fields must be empty without readings")
	}
}

func TestResolveWindow(t *testing.T) {
	from, to, err := ResolveWindow(WindowRequest{}, testNow)
	if err != nil || !to.Equal(testNow) || to.Sub(from) != 720*time.Hour {
		t.Errorf("default window: %v..%v, %v", from, to, err)
	}

	start := testNow.Add(-48 * time.Hour)
	end := testNow.Add(-24 * time.Hour)
	from, to, err = ResolveWindow(WindowRequest{Start: &start, End: &end}, testNow)
	if err != nil || !from.Equal(start) || !to.Equal(end) {
		t.Errorf("explicit window: %v..%v, %v", from, to, err)
	}

	if _, _, err := ResolveWindow(WindowRequest{Hours: 2161}, testNow); appErrors.Field(err) != "hours" {
		t.Errorf("hours bound: got %v", err)
	}
	if _, _, err := ResolveWindow(WindowRequest{Start: &end, End: &start}, testNow); appErrors.Field(err) != "end" {
		t.Errorf("inverted window: got %v", err)
	}
	if _, _, err := ResolveWindow(WindowRequest{End: &end}, testNow); appErrors.Field(err) != "start" {
		t.Errorf("end without start: got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	readingRepo := memory.NewTelemetryRepository()
	networkRepo := memory.NewNetworkRepository()
	if err := networkRepo.Create(ctx, network(99.9, "device-001")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, r := range readings(1000, 2) {
		if _, err := readingRepo.Append(ctx, r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	// Outside the 24h window.
	old := readings(1, 1)[0]
	old.Timestamp = testNow.Add(-48 * time.Hour)
	if _, err := readingRepo.Append(ctx, old); err != nil {
		t.Fatalf("Append: %v", err)
	}

	eval := NewEvaluator(readingRepo, networkRepo).WithClock(func() time.Time { return testNow })
	customer := rbac.NewUserPrincipal("u", "carol", "acme", rbac.RoleCustomer)

	report, err := eval.Evaluate(ctx, customer, "net_0123456789ab", WindowRequest{Hours: 24})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.TotalReadings != 1000 || report.Compliant || report.ObservedUptimePercent != 99.8 {
		t.Errorf("unexpected report: %+v", report)
	}

	outsider := rbac.NewUserPrincipal("u2", "bob", "globex", rbac.RoleCustomer)
	if _, err := eval.Evaluate(ctx, outsider, "net_0123456789ab", WindowRequest{}); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("got %v, want ErrTenantMismatch", err)
	}
	if _, err := eval.Evaluate(ctx, customer, "net_missing", WindowRequest{}); !errors.Is(err, appErrors.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
