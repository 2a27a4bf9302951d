package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// SalonConfig identifies this deployment within the fixed set of salon
// servers. Current must be a key of FallbackConfig.Servers.
type SalonConfig struct {
	Current     string
	DefaultSeed []string
}

// FallbackConfig holds the sibling-server resolution settings
type FallbackConfig struct {
	// Servers maps salon keys to base URLs, including this instance's own entry.
	Servers map[string]string
	// Order is the fixed iteration order over Servers.
	Order []string
	// Timeout applies to each sibling request individually.
	Timeout time.Duration
}

// PushConfig holds push-notification delivery configuration
type PushConfig struct {
	Endpoint  string
	Timeout   time.Duration
	ChunkSize int
}

// RedisConfig holds the optional cache configuration. An empty URL
// disables caching entirely.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration
type Config struct {
	DB       DBConfig
	Server   ServerConfig
	Salon    SalonConfig
	Fallback FallbackConfig
	Push     PushConfig
	Redis    RedisConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "salon_api"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Info),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8081"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Salon: SalonConfig{
			Current:     getEnv("CURRENT_SALON", "salonA"),
			DefaultSeed: getEnvAsList("SALON_DEFAULT_SEED", []string{"Salon de formation", "Salon de l'habitat"}),
		},
		Fallback: FallbackConfig{
			Servers: map[string]string{
				"salonA": getEnv("SALON_A_URL", "https://salon-emploi-api.onrender.com"),
				"salonB": getEnv("SALON_B_URL", "https://salon-habitat-api.onrender.com"),
				"salonC": getEnv("SALON_C_URL", "https://marche-noel-api.onrender.com"),
			},
			Order:   []string{"salonA", "salonB", "salonC"},
			Timeout: getEnvAsDuration("FALLBACK_TIMEOUT", 5*time.Second),
		},
		Push: PushConfig{
			Endpoint:  getEnv("PUSH_ENDPOINT", "https://exp.host/--/api/v2/push/send"),
			Timeout:   getEnvAsDuration("PUSH_TIMEOUT", 10*time.Second),
			ChunkSize: getEnvAsInt("PUSH_CHUNK_SIZE", 100),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: getEnvAsDuration("REDIS_TTL", 5*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "salon"),
		},
	}

	if _, ok := config.Fallback.Servers[config.Salon.Current]; !ok {
		return nil, fmt.Errorf("CURRENT_SALON %q is not one of the configured salon servers", config.Salon.Current)
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("current_salon", c.Salon.Current),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as comma-separated lists
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
