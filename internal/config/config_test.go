package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_HOST", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" || cfg.JWT.ExpiryMinutes != 60 || cfg.APIKey.Prefix != "sk" {
		t.Errorf("unexpected defaults: %+v %+v %+v", cfg.Server, cfg.JWT, cfg.APIKey)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("driver = %q, want memory without DB_HOST", cfg.Storage.Driver)
	}
	if cfg.Health.LatencyBaselineMs != 50 || cfg.Health.LossWeight != 3 || cfg.Health.SignalBaselineDBm != -70 {
		t.Errorf("unexpected health policy: %+v", cfg.Health)
	}
	if cfg.JWT.TTL().Minutes() != 60 {
		t.Errorf("TTL = %v", cfg.JWT.TTL())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadSelectsPostgresWithHost(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != StoragePostgres {
		t.Errorf("driver = %q, want postgres", cfg.Storage.Driver)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:     JWTConfig{Secret: "s", ExpiryMinutes: 60},
			Storage: StorageConfig{Driver: StorageMemory},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, false},
		{"zero expiry", func(c *Config) { c.JWT.ExpiryMinutes = 0 }, false},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, false},
		{"postgres without host", func(c *Config) { c.Storage.Driver = StoragePostgres }, false},
		{"postgres", func(c *Config) {
			c.Storage.Driver = StoragePostgres
			c.Database = DatabaseConfig{Host: "db", DBName: "gateway"}
		}, true},
		{"partial bootstrap", func(c *Config) { c.Bootstrap.AdminUsername = "root" }, false},
		{"mqtt without broker", func(c *Config) { c.MQTT.Enabled = true }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
