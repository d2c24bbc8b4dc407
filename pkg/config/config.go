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

// Storage backends selectable through STORAGE_BACKEND
const (
	StorageLocal      = "local"
	StorageCloudinary = "cloudinary"
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
	// PublicURL is used to build absolute links in notifications
	PublicURL string
}

// IsProduction reports whether the service runs in hosted mode
func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

// JWTConfig holds the key used to verify admin bearer tokens
type JWTConfig struct {
	SigningKey string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	FileEnable bool
	Filename   string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// MediaConfig describes where uploaded images and their renditions live
type MediaConfig struct {
	Backend    string
	Root       string
	URL        string
	Collection string
	// Placeholder is served when a product has no image at all
	Placeholder string
}

// CloudinaryConfig holds remote object store credentials
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// MailConfig holds SMTP settings for contact notifications
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo string
}

// Enabled reports whether SMTP delivery is configured
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.NotifyTo != ""
}

// ImagesConfig controls the rendition batch driver
type ImagesConfig struct {
	Workers  int
	Schedule string
	Quality  int
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Media       MediaConfig
	Cloudinary  CloudinaryConfig
	Mail        MailConfig
	Images      ImagesConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}

	env := getEnv("APP_ENV", "development")
	defaultBackend := StorageLocal
	if env == "production" {
		defaultBackend = StorageCloudinary
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "catalog"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:      getEnv("SERVER_PORT", "8080"),
			Env:       env,
			PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FileEnable: getEnvAsBool("LOG_FILE_ENABLE", false),
			Filename:   getEnv("LOG_FILENAME", "logs/catalog.log"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", serviceName),
		},
		Media: MediaConfig{
			Backend:     strings.ToLower(getEnv("STORAGE_BACKEND", defaultBackend)),
			Root:        getEnv("MEDIA_ROOT", "media"),
			URL:         getEnv("MEDIA_URL", "/media/"),
			Collection:  getEnv("MEDIA_COLLECTION", "productos"),
			Placeholder: getEnv("MEDIA_PLACEHOLDER", "/static/images/placeholders/product-placeholder"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "noreply@localhost"),
			NotifyTo: getEnv("MAIL_NOTIFY_TO", ""),
		},
		Images: ImagesConfig{
			Workers:  getEnvAsInt("IMAGES_WORKERS", 4),
			Schedule: getEnv("IMAGES_SCHEDULE", ""),
			Quality:  getEnvAsInt("IMAGES_QUALITY", 85),
		},
	}

	if config.Media.Backend != StorageLocal && config.Media.Backend != StorageCloudinary {
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", config.Media.Backend)
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("storage_backend", c.Media.Backend),
		zap.Bool("mail_enabled", c.Mail.Enabled()),
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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
