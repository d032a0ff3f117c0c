package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	JWT       JWTConfig
	APIKey    APIKeyConfig
	Bootstrap BootstrapConfig
	Health    HealthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	MQTT      MQTTConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StorageConfig struct {
	Driver      string
	AutoMigrate bool
}

type JWTConfig struct {
	Secret        string
	ExpiryMinutes int
	Issuer        string
}

// TTL is the lifetime of an issued bearer token.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

type APIKeyConfig struct {
	Prefix string
}

// BootstrapConfig seeds the first administrator. Empty values skip seeding.
type BootstrapConfig struct {
	AdminUsername     string
	AdminPassword     string
	AdminOrganization string
}

// HealthConfig holds the scoring policy constants.
type HealthConfig struct {
	LatencyBaselineMs float64
	LatencyScaleMs    float64
	LossWeight        float64
	SignalBaselineDBm float64
	SignalScaleDBm    float64
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second per client, <= 0 disables limiting
	GeneralBurst int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type MQTTConfig struct {
	Enabled        bool
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TelemetryTopic string
	QoS            int
	Workers        int
	BufferSize     int
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SERVICE_VERSION", "1.0.0")

	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_AUTO_MIGRATE", true)

	viper.SetDefault("JWT_EXPIRY_MINUTES", 60)
	viper.SetDefault("JWT_ISSUER", "spacelink-gateway")
	viper.SetDefault("API_KEY_PREFIX", "sk")

	viper.SetDefault("HEALTH_LATENCY_BASELINE_MS", 50.0)
	viper.SetDefault("HEALTH_LATENCY_SCALE_MS", 250.0)
	viper.SetDefault("HEALTH_LOSS_WEIGHT", 3.0)
	viper.SetDefault("HEALTH_SIGNAL_BASELINE_DBM", -70.0)
	viper.SetDefault("HEALTH_SIGNAL_SCALE_DBM", 100.0)

	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 50)

	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	viper.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	viper.SetDefault("CORS_MAX_AGE", 43200)

	viper.SetDefault("MQTT_CLIENT_ID", "spacelink-gateway")
	viper.SetDefault("MQTT_TELEMETRY_TOPIC", "spacelink/telemetry/+")
	viper.SetDefault("MQTT_QOS", 1)
	viper.SetDefault("MQTT_WORKERS", 4)
	viper.SetDefault("MQTT_BUFFER_SIZE", 1000)
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
			Version:     viper.GetString("SERVICE_VERSION"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			ExpiryMinutes: viper.GetInt("JWT_EXPIRY_MINUTES"),
			Issuer:        viper.GetString("JWT_ISSUER"),
		},
		APIKey: APIKeyConfig{
			Prefix: viper.GetString("API_KEY_PREFIX"),
		},
		Bootstrap: BootstrapConfig{
			AdminUsername:     viper.GetString("BOOTSTRAP_ADMIN_USERNAME"),
			AdminPassword:     viper.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
			AdminOrganization: viper.GetString("BOOTSTRAP_ADMIN_ORGANIZATION"),
		},
		Health: HealthConfig{
			LatencyBaselineMs: viper.GetFloat64("HEALTH_LATENCY_BASELINE_MS"),
			LatencyScaleMs:    viper.GetFloat64("HEALTH_LATENCY_SCALE_MS"),
			LossWeight:        viper.GetFloat64("HEALTH_LOSS_WEIGHT"),
			SignalBaselineDBm: viper.GetFloat64("HEALTH_SIGNAL_BASELINE_DBM"),
			SignalScaleDBm:    viper.GetFloat64("HEALTH_SIGNAL_SCALE_DBM"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		MQTT: MQTTConfig{
			Enabled:        viper.GetBool("MQTT_ENABLED"),
			Broker:         viper.GetString("MQTT_BROKER"),
			ClientID:       viper.GetString("MQTT_CLIENT_ID"),
			Username:       viper.GetString("MQTT_USERNAME"),
			Password:       viper.GetString("MQTT_PASSWORD"),
			TelemetryTopic: viper.GetString("MQTT_TELEMETRY_TOPIC"),
			QoS:            viper.GetInt("MQTT_QOS"),
			Workers:        viper.GetInt("MQTT_WORKERS"),
			BufferSize:     viper.GetInt("MQTT_BUFFER_SIZE"),
		},
	}

	if config.Storage.Driver == "" {
		if config.Database.Host != "" {
			config.Storage.Driver = StoragePostgres
		} else {
			config.Storage.Driver = StorageMemory
		}
	}

	return config, nil
}

// Validate reports configuration that the gateway cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.ExpiryMinutes <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be positive")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Bootstrap.AdminUsername != "" && (c.Bootstrap.AdminPassword == "" || c.Bootstrap.AdminOrganization == "") {
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD and BOOTSTRAP_ADMIN_ORGANIZATION are required with BOOTSTRAP_ADMIN_USERNAME")
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("MQTT_BROKER is required when MQTT_ENABLED is set")
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
