package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Store     StoreConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Workspace WorkspaceConfig
	I18n      I18nConfig
}

type ServerConfig struct {
	AppEnv         string
	HTTPPort       string
	GRPCPort       string
	AllowedOrigins []string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// StoreConfig selects the row store backing the four catalog collections.
type StoreConfig struct {
	Driver string // memory, sqlite, postgres, sheets
	DSN    string

	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string

	ProductsSheet   string
	CategoriesSheet string
	TypesSheet      string
	PhonesSheet     string
}

type AuthConfig struct {
	Username     string
	PasswordHash string
	JWTSecretKey string
	SessionTTL   time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled          bool
	Brokers          []string
	OrdersTopic      string
	StockEventsTopic string
	GroupID          string
}

type WorkspaceConfig struct {
	TTL                 time.Duration
	LockTTL             time.Duration
	LockRetries         int
	LockRetryWait       time.Duration
	CheckoutConcurrency int
}

type I18nConfig struct {
	DefaultLanguage string
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverSheets   = "sheets"
)

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "dev"),
			HTTPPort:       getEnv("HTTP_PORT", ":8080"),
			GRPCPort:       getEnv("GRPC_PORT", ":8082"),
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Store: StoreConfig{
			Driver:          getEnv("STORE_DRIVER", DriverSQLite),
			DSN:             getEnv("STORE_DSN", "warehouse.db"),
			SpreadsheetID:   getEnv("SPREADSHEET_ID", ""),
			CredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			ProductsSheet:   getEnv("SHEET_NAME", "Products"),
			CategoriesSheet: getEnv("CATEGORIES_SHEET_NAME", "Categories"),
			TypesSheet:      getEnv("TYPES_SHEET_NAME", "ProductTypes"),
			PhonesSheet:     getEnv("PHONES_SHEET_NAME", "Phones"),
		},
		Auth: AuthConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
			SessionTTL:   getEnvDuration("SESSION_TTL", 12*time.Hour),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:          getEnvBool("KAFKA_ENABLED", false),
			Brokers:          getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic:      getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
			StockEventsTopic: getEnv("KAFKA_TOPIC_STOCK_EVENTS", "warehouse.stock"),
			GroupID:          getEnv("KAFKA_GROUP_INVENTORY", "warehouse-inventory"),
		},
		Workspace: WorkspaceConfig{
			TTL:                 getEnvDuration("WORKSPACE_TTL", 12*time.Hour),
			// renewed while held; only bounds how long a crashed holder blocks
			LockTTL:             getEnvDuration("WORKSPACE_LOCK_TTL", 30*time.Second),
			LockRetries:         getEnvInt("WORKSPACE_LOCK_RETRIES", 20),
			LockRetryWait:       getEnvDuration("WORKSPACE_LOCK_RETRY_WAIT", 100*time.Millisecond),
			CheckoutConcurrency: getEnvInt("CHECKOUT_CONCURRENCY", 8),
		},
		I18n: I18nConfig{
			DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		},
	}
}

// Validate reports configuration that would make serve unusable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	case DriverSheets:
		if c.Store.SpreadsheetID == "" {
			errs = append(errs, errors.New("SPREADSHEET_ID is required for the sheets driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	if c.Auth.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.Auth.Username == "" || c.Auth.PasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD_HASH are required"))
	}
	if c.Workspace.CheckoutConcurrency < 1 {
		errs = append(errs, errors.New("CHECKOUT_CONCURRENCY must be at least 1"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
