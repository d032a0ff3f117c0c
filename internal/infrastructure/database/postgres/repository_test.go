package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	appErrors "spacelink-gateway/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db, err := NewFromConn(conn)
	if err != nil {
		t.Fatalf("NewFromConn: %v", err)
	}
	return db, mock
}

func TestDeviceGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDeviceRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization"}))

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, domainDevice.ErrDeviceNotFound) {
		t.Fatalf("got %v, want ErrDeviceNotFound", err)
	}
	if !errors.Is(err, appErrors.ErrNotFound) {
		t.Fatalf("device not found must map to ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeviceGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDeviceRepository(db)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "devices" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization", "status", "created_at", "updated_at"}).
			AddRow("device-001", "acme", "active", created, created))

	d, err := repo.GetByID(context.Background(), "device-001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if d.Organization != "acme" || d.Status != domainDevice.StatusActive {
		t.Errorf("unexpected device: %+v", d)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLatestReadingNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTelemetryRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "device_latest_readings" WHERE device_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"device_id"}))

	_, err := repo.Latest(context.Background(), "device-001")
	if !errors.Is(err, domainTelemetry.ErrNoReadings) {
		t.Fatalf("got %v, want ErrNoReadings", err)
	}
}

func TestWindowWithoutDevicesSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTelemetryRepository(db)

	got, err := repo.Window(context.Background(), nil, time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d readings, want 0", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected query: %v", err)
	}
}

func TestNetworkGetByIDLoadsMembers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNetworkRepository(db)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "networks" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organization", "name", "network_type", "status",
			"sla_uptime_target", "sla_latency_target_ms", "created_at", "updated_at",
		}).AddRow("net_abc", "acme", "Backbone", "wan", "active", 99.9, 100.0, created, created))
	mock.ExpectQuery(`SELECT "device_id" FROM "network_devices" WHERE network_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"device_id"}).AddRow("device-001").AddRow("device-002"))

	n, err := repo.GetByID(context.Background(), "net_abc")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if n.SLAUptimeTarget != 99.9 {
		t.Errorf("sla target = %v", n.SLAUptimeTarget)
	}
	if len(n.DeviceIDs) != 2 || n.DeviceIDs[0] != "device-001" {
		t.Errorf("members = %v", n.DeviceIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
