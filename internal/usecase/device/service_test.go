package device

import (
	"context"
	"errors"
	"testing"

	"spacelink-gateway/internal/infrastructure/database/memory"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
)

var (
	admin    = rbac.NewUserPrincipal("a", "admin", "spacelink", rbac.RoleAdmin)
	partner  = rbac.NewUserPrincipal("p", "pat", "acme", rbac.RolePartner)
	customer = rbac.NewUserPrincipal("c", "carol", "acme", rbac.RoleCustomer)
	rival    = rbac.NewUserPrincipal("r", "rex", "globex", rbac.RolePartner)
)

func register(t *testing.T, svc *Service, p rbac.Principal, id string) *DeviceResponse {
	t.Helper()
	d, err := svc.RegisterDevice(context.Background(), p, &RegisterDeviceRequest{DeviceID: id})
	if err != nil {
		t.Fatalf("RegisterDevice(%s): %v", id, err)
	}
	return d
}

func TestRegisterDevice(t *testing.T) {
	svc := NewService(memory.NewDeviceRepository())
	ctx := context.Background()

	d := register(t, svc, partner, " device-001 ")
	if d.DeviceID != "device-001" || d.Organization != "acme" || d.Status != "active" || d.IsOnline {
		t.Errorf("unexpected device: %+v", d)
	}

	again := register(t, svc, partner, "device-001")
	if !again.CreatedAt.Equal(d.CreatedAt) {
		t.Error("re-registration replaced the device")
	}

	if _, err := svc.RegisterDevice(ctx, rival, &RegisterDeviceRequest{DeviceID: "device-001"}); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("foreign re-registration: got %v, want ErrTenantMismatch", err)
	}
	if _, err := svc.RegisterDevice(ctx, customer, &RegisterDeviceRequest{DeviceID: "device-002"}); !errors.Is(err, appErrors.ErrForbidden) {
		t.Errorf("customer: got %v, want ErrForbidden", err)
	}

	lat := 120.0
	if _, err := svc.RegisterDevice(ctx, partner, &RegisterDeviceRequest{DeviceID: "device-003", Latitude: &lat}); appErrors.Field(err) != "latitude" {
		t.Errorf("latitude: got %v", err)
	}
}

func TestListDevicesPagination(t *testing.T) {
	svc := NewService(memory.NewDeviceRepository())
	for _, id := range []string{"d-1", "d-2", "d-3"} {
		register(t, svc, partner, id)
	}
	register(t, svc, rival, "g-1")

	list, err := svc.ListDevices(context.Background(), customer, &DeviceFilterRequest{PageSize: 2, Page: 2})
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if list.Total != 3 || list.TotalPages != 2 || len(list.Devices) != 1 {
		t.Errorf("unexpected page: %+v", list)
	}

	list, err = svc.ListDevices(context.Background(), admin, &DeviceFilterRequest{})
	if err != nil || list.Total != 4 {
		t.Errorf("admin list: %+v, %v", list, err)
	}
}

func TestDeactivateDevice(t *testing.T) {
	svc := NewService(memory.NewDeviceRepository())
	ctx := context.Background()
	register(t, svc, partner, "device-001")

	if _, err := svc.DeactivateDevice(ctx, rival, "device-001"); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("rival: got %v, want ErrTenantMismatch", err)
	}

	d, err := svc.DeactivateDevice(ctx, partner, "device-001")
	if err != nil {
		t.Fatalf("DeactivateDevice: %v", err)
	}
	if d.Status != "deactivated" {
		t.Errorf("status = %s", d.Status)
	}

	if _, err := svc.DeactivateDevice(ctx, partner, "device-001"); appErrors.Code(err) != "INVALID_STATUS_TRANSITION" {
		t.Errorf("second deactivation: got %v", err)
	}

	list, err := svc.ListDevices(ctx, partner, &DeviceFilterRequest{Status: "deactivated"})
	if err != nil || list.Total != 1 {
		t.Errorf("status filter: %+v, %v", list, err)
	}
}
