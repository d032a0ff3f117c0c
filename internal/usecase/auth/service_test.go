package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"spacelink-gateway/internal/config"
	domainDevice "spacelink-gateway/internal/domain/device"
	domainPartner "spacelink-gateway/internal/domain/partner"
	"spacelink-gateway/internal/infrastructure/database/memory"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
)

type fixture struct {
	svc      *Service
	devices  *memory.DeviceRepository
	partners *memory.PartnerRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 60, Issuer: "spacelink-gateway"},
		APIKey: config.APIKeyConfig{Prefix: "sk"},
	}
	devices := memory.NewDeviceRepository()
	partners := memory.NewPartnerRepository()
	svc := NewService(memory.NewAccountRepository(), memory.NewAPIKeyRepository(), devices, partners, cfg)

	if err := svc.EnsureAdmin(context.Background(), config.BootstrapConfig{
		AdminUsername:     "Admin",
		AdminPassword:     "Sup3r$ecret",
		AdminOrganization: "spacelink",
	}); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	return &fixture{svc: svc, devices: devices, partners: partners}
}

func TestIssueAndValidateBearer(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.IssueToken(context.Background(), &TokenRequest{Username: " admin ", Password: "Sup3r$ecret"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if resp.TokenType != TokenTypeBearer || resp.ExpiresIn != 3600 {
		t.Errorf("unexpected token metadata: %+v", resp)
	}

	p, err := f.svc.ValidateBearer(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateBearer: %v", err)
	}
	if p.Role != rbac.RoleAdmin || p.Organization != "spacelink" || p.Username != "admin" || p.IsDevice() {
		t.Errorf("unexpected principal: %+v", p)
	}
}

func TestIssueTokenDoesNotLeakUsernames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, unknownErr := f.svc.IssueToken(ctx, &TokenRequest{Username: "nobody", Password: "Sup3r$ecret"})
	_, wrongErr := f.svc.IssueToken(ctx, &TokenRequest{Username: "admin", Password: "wrong"})

	if !errors.Is(unknownErr, appErrors.ErrInvalidCredentials) || !errors.Is(wrongErr, appErrors.ErrInvalidCredentials) {
		t.Fatalf("want InvalidCredentials for both, got %v / %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("error messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestValidateBearerRejectsExpiredAndTampered(t *testing.T) {
	f := newFixture(t)
	f.svc.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })

	resp, err := f.svc.IssueToken(context.Background(), &TokenRequest{Username: "admin", Password: "Sup3r$ecret"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := f.svc.ValidateBearer(resp.AccessToken); !errors.Is(err, appErrors.ErrTokenExpired) {
		t.Errorf("expired token: got %v, want ErrTokenExpired", err)
	}

	f.svc.WithClock(time.Now)
	resp, err = f.svc.IssueToken(context.Background(), &TokenRequest{Username: "admin", Password: "Sup3r$ecret"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	tampered := resp.AccessToken[:len(resp.AccessToken)-2] + "xx"
	if _, err := f.svc.ValidateBearer(tampered); !errors.Is(err, appErrors.ErrTokenInvalid) {
		t.Errorf("tampered token: got %v, want ErrTokenInvalid", err)
	}
	if _, err := f.svc.ValidateBearer("not-a-jwt"); !errors.Is(err, appErrors.ErrTokenInvalid) {
		t.Errorf("garbage token: got %v, want ErrTokenInvalid", err)
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key, err := f.svc.GenerateAPIKey(ctx, GenerateKeyRequest{DeviceID: "device-001", Organization: "acme", PartnerID: "partner_1"})
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(key.APIKey, "sk_device-001_") {
		t.Errorf("unexpected key format %q", key.APIKey)
	}
	if !strings.HasPrefix(key.APIKey, key.KeyPrefix) {
		t.Errorf("display prefix %q is not a prefix of the key", key.KeyPrefix)
	}

	dev, err := f.devices.GetByID(ctx, "device-001")
	if err != nil || dev.Organization != "acme" {
		t.Fatalf("device not registered under acme: %+v, %v", dev, err)
	}

	p, err := f.svc.ValidateAPIKey(ctx, key.APIKey)
	if err != nil {
		t.Fatalf("ValidateAPIKey: %v", err)
	}
	if !p.IsDevice() || p.DeviceID != "device-001" || p.Organization != "acme" {
		t.Errorf("unexpected principal: %+v", p)
	}
	if rbac.Allowed(p, rbac.ActionReadTelemetry, "acme") || !rbac.Allowed(p, rbac.ActionWriteTelemetry, "acme") {
		t.Error("device principal must only write telemetry")
	}

	keys, err := f.svc.ListAPIKeys(ctx, "partner_1")
	if err != nil || len(keys) != 1 || keys[0].LastUsedAt == nil {
		t.Fatalf("ListAPIKeys: %+v, %v", keys, err)
	}

	if err := f.svc.RevokeAPIKey(ctx, "partner_2", key.KeyID); !errors.Is(err, appErrors.ErrNotFound) {
		t.Errorf("revoke by foreign partner: got %v, want not found", err)
	}
	if err := f.svc.RevokeAPIKey(ctx, "partner_1", key.KeyID); err != nil {
		t.Fatalf("RevokeAPIKey: %v", err)
	}
	if _, err := f.svc.ValidateAPIKey(ctx, key.APIKey); !errors.Is(err, appErrors.ErrInvalidAPIKey) {
		t.Errorf("revoked key: got %v, want ErrInvalidAPIKey", err)
	}
}

func TestValidateAPIKeyUnknown(t *testing.T) {
	f := newFixture(t)

	for _, key := range []string{"", "sk_device-001_nope"} {
		if _, err := f.svc.ValidateAPIKey(context.Background(), key); !errors.Is(err, appErrors.ErrInvalidAPIKey) {
			t.Errorf("key %q: got %v, want ErrInvalidAPIKey", key, err)
		}
	}
}

func TestGenerateAPIKeyForForeignDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, _, err := f.devices.CreateIfAbsent(ctx, &domainDevice.Device{ID: "device-009", Organization: "globex"}); err != nil {
		t.Fatalf("CreateIfAbsent: %v", err)
	}

	_, err := f.svc.GenerateAPIKey(ctx, GenerateKeyRequest{DeviceID: "device-009", Organization: "acme"})
	if !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("got %v, want ErrTenantMismatch", err)
	}
}

func TestSuspendedPartnerKeysStopValidating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	partner := &domainPartner.Partner{
		ID:               "partner_abc",
		Organization:     "acme",
		Name:             "Acme",
		APIAccessEnabled: true,
		Status:           domainPartner.StatusActive,
	}
	if err := f.partners.Create(ctx, partner); err != nil {
		t.Fatalf("Create partner: %v", err)
	}

	key, err := f.svc.GenerateAPIKey(ctx, GenerateKeyRequest{DeviceID: "device-001", Organization: "acme", PartnerID: partner.ID})
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}

	partner.Status = domainPartner.StatusSuspended
	if err := f.partners.Update(ctx, partner); err != nil {
		t.Fatalf("Update partner: %v", err)
	}

	if _, err := f.svc.ValidateAPIKey(ctx, key.APIKey); !errors.Is(err, appErrors.ErrInvalidAPIKey) {
		t.Errorf("got %v, want ErrInvalidAPIKey", err)
	}
}

func TestCreateAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := rbac.NewUserPrincipal("admin-id", "admin", "spacelink", rbac.RoleAdmin)

	req := &CreateAccountRequest{Username: "Viewer", Password: "Passw0rd!", Organization: "acme", Role: "readonly"}
	acct, err := f.svc.CreateAccount(ctx, admin, req)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if acct.Username != "viewer" || acct.Role != "readonly" {
		t.Errorf("unexpected account: %+v", acct)
	}

	if _, err := f.svc.CreateAccount(ctx, admin, req); !errors.Is(err, appErrors.ErrAlreadyExists) {
		t.Errorf("duplicate username: got %v, want ErrAlreadyExists", err)
	}

	weak := &CreateAccountRequest{Username: "other", Password: "password", Organization: "acme", Role: "customer"}
	if _, err := f.svc.CreateAccount(ctx, admin, weak); appErrors.Field(err) != "password" {
		t.Errorf("weak password: got %v, want validation error on password", err)
	}

	partner := rbac.NewUserPrincipal("p", "p", "acme", rbac.RolePartner)
	req.Username = "another"
	if _, err := f.svc.CreateAccount(ctx, partner, req); !errors.Is(err, appErrors.ErrForbidden) {
		t.Errorf("partner creating account: got %v, want ErrForbidden", err)
	}

	resp, err := f.svc.IssueToken(ctx, &TokenRequest{Username: "viewer", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("IssueToken for new account: %v", err)
	}
	if resp.Role != "readonly" || resp.Organization != "acme" {
		t.Errorf("unexpected token response: %+v", resp)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	admin := rbac.NewUserPrincipal("admin-id", "admin", "spacelink", rbac.RoleAdmin)

	if err := f.svc.EnsureAdmin(context.Background(), config.BootstrapConfig{
		AdminUsername:     "admin",
		AdminPassword:     "Different1!",
		AdminOrganization: "spacelink",
	}); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	accounts, err := f.svc.ListAccounts(context.Background(), admin)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("got %d accounts, want 1", len(accounts))
	}
}
