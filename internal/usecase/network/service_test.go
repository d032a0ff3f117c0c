package network

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/infrastructure/database/memory"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
)

var (
	admin    = rbac.NewUserPrincipal("a", "admin", "spacelink", rbac.RoleAdmin)
	partner  = rbac.NewUserPrincipal("p", "pat", "acme", rbac.RolePartner)
	customer = rbac.NewUserPrincipal("c", "carol", "acme", rbac.RoleCustomer)
	outsider = rbac.NewUserPrincipal("o", "olga", "globex", rbac.RolePartner)
)

func newService(t *testing.T) (*Service, *memory.DeviceRepository) {
	t.Helper()
	devices := memory.NewDeviceRepository()
	ctx := context.Background()
	for id, org := range map[string]string{"device-001": "acme", "device-002": "acme", "device-900": "globex"} {
		if _, _, err := devices.CreateIfAbsent(ctx, &domainDevice.Device{ID: id, Organization: org, Status: domainDevice.StatusActive}); err != nil {
			t.Fatalf("CreateIfAbsent: %v", err)
		}
	}
	return NewService(memory.NewNetworkRepository(), devices), devices
}

func createNetwork(t *testing.T, svc *Service, devices ...string) *NetworkResponse {
	t.Helper()
	n, err := svc.CreateNetwork(context.Background(), partner, &CreateNetworkRequest{
		Name:        "Backbone",
		NetworkType: "satellite",
		DeviceIDs:   devices,
	})
	if err != nil {
		t.Fatalf("CreateNetwork: %v", err)
	}
	return n
}

func TestCreateNetworkDefaults(t *testing.T) {
	svc, _ := newService(t)
	n := createNetwork(t, svc, "device-001", "device-001")

	if !regexp.MustCompile(`^net_[0-9a-f]{12}$`).MatchString(n.NetworkID) {
		t.Errorf("unexpected id %q", n.NetworkID)
	}
	if n.Organization != "acme" || n.SLAUptimeTarget != 99.9 || n.SLALatencyTargetMs != 100 || n.Status != "active" {
		t.Errorf("unexpected defaults: %+v", n)
	}
	if n.DeviceCount != 1 {
		t.Errorf("duplicate member ids were not collapsed: %v", n.DeviceIDs)
	}
}

func TestCreateNetworkValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	over := 100.5

	_, err := svc.CreateNetwork(ctx, partner, &CreateNetworkRequest{Name: "x", NetworkType: "mesh"})
	if appErrors.Field(err) != "network_type" {
		t.Errorf("network_type: got %v", err)
	}
	_, err = svc.CreateNetwork(ctx, partner, &CreateNetworkRequest{Name: "x", NetworkType: "wan", SLAUptimeTarget: &over})
	if appErrors.Field(err) != "sla_uptime_target" {
		t.Errorf("sla_uptime_target: got %v", err)
	}
}

func TestCreateNetworkAuthorization(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	req := &CreateNetworkRequest{Name: "x", NetworkType: "wan"}

	if _, err := svc.CreateNetwork(ctx, customer, req); !errors.Is(err, appErrors.ErrForbidden) {
		t.Errorf("customer: got %v, want ErrForbidden", err)
	}

	req.Organization = "globex"
	if _, err := svc.CreateNetwork(ctx, partner, req); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("foreign org: got %v, want ErrTenantMismatch", err)
	}
	if _, err := svc.CreateNetwork(ctx, admin, req); err != nil {
		t.Errorf("admin in any org: %v", err)
	}
}

func TestCreateNetworkRejectsForeignMembers(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateNetwork(context.Background(), partner, &CreateNetworkRequest{
		Name: "x", NetworkType: "wan", DeviceIDs: []string{"device-001", "device-900"},
	})
	if !errors.Is(err, appErrors.ErrCrossTenantMembership) {
		t.Errorf("got %v, want ErrCrossTenantMembership", err)
	}
}

func TestAddDeviceMembership(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	n := createNetwork(t, svc)

	updated, err := svc.AddDevice(ctx, partner, n.NetworkID, &AddDeviceRequest{DeviceID: "device-002"})
	if err != nil {
		t.Fatalf("AddDevice: %v", err)
	}
	if updated.DeviceCount != 1 {
		t.Errorf("device count = %d", updated.DeviceCount)
	}

	if _, err := svc.AddDevice(ctx, partner, n.NetworkID, &AddDeviceRequest{DeviceID: "device-002"}); err != nil {
		t.Errorf("re-adding a member: %v", err)
	}
	if _, err := svc.AddDevice(ctx, partner, n.NetworkID, &AddDeviceRequest{DeviceID: "device-900"}); !errors.Is(err, appErrors.ErrCrossTenantMembership) {
		t.Errorf("foreign device: got %v, want ErrCrossTenantMembership", err)
	}
	if _, err := svc.AddDevice(ctx, admin, n.NetworkID, &AddDeviceRequest{DeviceID: "device-900"}); !errors.Is(err, appErrors.ErrCrossTenantMembership) {
		t.Errorf("admin adding foreign device: got %v, want ErrCrossTenantMembership", err)
	}
	if _, err := svc.AddDevice(ctx, partner, n.NetworkID, &AddDeviceRequest{DeviceID: "device-404"}); !errors.Is(err, appErrors.ErrNotFound) {
		t.Errorf("unknown device: got %v, want ErrNotFound", err)
	}
	if _, err := svc.AddDevice(ctx, outsider, n.NetworkID, &AddDeviceRequest{DeviceID: "device-900"}); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("outsider: got %v, want ErrTenantMismatch", err)
	}

	updated, err = svc.RemoveDevice(ctx, partner, n.NetworkID, "device-002")
	if err != nil {
		t.Fatalf("RemoveDevice: %v", err)
	}
	if updated.DeviceCount != 0 {
		t.Errorf("device count after removal = %d", updated.DeviceCount)
	}
	if _, err := svc.RemoveDevice(ctx, partner, n.NetworkID, "device-002"); !errors.Is(err, appErrors.ErrNotFound) {
		t.Errorf("removing non-member: got %v, want ErrNotFound", err)
	}
}

func TestNetworkReadsAreTenantScoped(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	n := createNetwork(t, svc)

	if _, err := svc.GetNetwork(ctx, customer, n.NetworkID); err != nil {
		t.Errorf("same-org customer: %v", err)
	}
	if _, err := svc.GetNetwork(ctx, outsider, n.NetworkID); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("outsider: got %v, want ErrTenantMismatch", err)
	}

	list, err := svc.ListNetworks(ctx, outsider, "")
	if err != nil || len(list) != 0 {
		t.Errorf("outsider list: %d networks, %v", len(list), err)
	}
	list, err = svc.ListNetworks(ctx, admin, "")
	if err != nil || len(list) != 1 {
		t.Errorf("admin list: %d networks, %v", len(list), err)
	}
	if _, err := svc.ListNetworks(ctx, customer, "globex"); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("customer listing other org: got %v", err)
	}
}

func TestUpdateNetwork(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	n := createNetwork(t, svc)
	target := 99.5
	status := "inactive"

	updated, err := svc.UpdateNetwork(ctx, partner, n.NetworkID, &UpdateNetworkRequest{SLAUptimeTarget: &target, Status: &status})
	if err != nil {
		t.Fatalf("UpdateNetwork: %v", err)
	}
	if updated.SLAUptimeTarget != 99.5 || updated.Status != "inactive" || updated.Name != "Backbone" {
		t.Errorf("unexpected update: %+v", updated)
	}

	if _, err := svc.UpdateNetwork(ctx, customer, n.NetworkID, &UpdateNetworkRequest{SLAUptimeTarget: &target}); !errors.Is(err, appErrors.ErrForbidden) {
		t.Errorf("customer update: got %v, want ErrForbidden", err)
	}
}

func TestDeleteNetworkKeepsTelemetry(t *testing.T) {
	devices := memory.NewDeviceRepository()
	readings := memory.NewTelemetryRepository()
	ctx := context.Background()
	if _, _, err := devices.CreateIfAbsent(ctx, &domainDevice.Device{ID: "device-001", Organization: "acme"}); err != nil {
		t.Fatalf("CreateIfAbsent: %v", err)
	}
	if _, err := readings.Append(ctx, &domainTelemetry.Reading{
		DeviceID: "device-001", Organization: "acme", Timestamp: time.Now().UTC(), Status: domainTelemetry.StatusActive,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	svc := NewService(memory.NewNetworkRepository(), devices)
	n := createNetwork(t, svc, "device-001")

	if err := svc.DeleteNetwork(ctx, partner, n.NetworkID); !errors.Is(err, appErrors.ErrForbidden) {
		t.Fatalf("partner delete: got %v, want ErrForbidden", err)
	}
	if err := svc.DeleteNetwork(ctx, admin, n.NetworkID); err != nil {
		t.Fatalf("DeleteNetwork: %v", err)
	}
	if _, err := svc.GetNetwork(ctx, admin, n.NetworkID); !errors.Is(err, appErrors.ErrNotFound) {
		t.Errorf("deleted network still readable: %v", err)
	}

	count, err := readings.Count(ctx, domainTelemetry.Filter{DeviceIDs: []string{"device-001"}})
	if err != nil || count != 1 {
		t.Errorf("telemetry after delete: %d, %v", count, err)
	}
}
