package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Photos    PhotoConfig     `yaml:"photos"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	GinMode        string   `yaml:"ginMode"`
	CORSOrigins    []string `yaml:"corsOrigins"`
	UploadMaxBytes int64    `yaml:"uploadMaxBytes"`
	// DebugErrors echoes low-level store errors in the "details" field.
	DebugErrors bool `yaml:"debugErrors"`
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"dbName"`
	SSLMode    string `yaml:"sslMode"`
	TestDBName string `yaml:"testDBName"` // Separate database for testing
}

// AuthConfig holds the authentication configuration
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwtSecret"`
	TokenTTL      time.Duration `yaml:"-"`
	AdminCategory string        `yaml:"adminCategory"`
	AdminUsername string        `yaml:"adminUsername"`
	AdminPassword string        `yaml:"adminPassword"`
}

// PhotoConfig holds the photo store configuration
type PhotoConfig struct {
	Dir      string      `yaml:"dir"`
	MaxCount int         `yaml:"maxCount"`
	MaxBytes int64       `yaml:"maxBytes"`
	Storage  string      `yaml:"storage"` // "disk" or "minio"
	Minio    MinioConfig `yaml:"minio"`
}

// MinioConfig holds the MinIO object storage settings
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"useSSL"`
}

// RateLimitConfig configures the login limiter. Disabled when RedisAddr is empty.
type RateLimitConfig struct {
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	LoginLimit    int           `yaml:"loginLimit"`
	Window        time.Duration `yaml:"-"`
}

// LogConfig holds the logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// Defaults returns the configuration used when nothing else is set
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           3001,
			GinMode:        "debug",
			CORSOrigins:    []string{"http://localhost:3000"},
			UploadMaxBytes: 10 << 20,
		},
		Database: DatabaseConfig{
			Host:       "localhost",
			Port:       5432,
			Username:   "postgres",
			Password:   "password",
			DBName:     "frutti",
			SSLMode:    "disable",
			TestDBName: "frutti_test",
		},
		Auth: AuthConfig{
			JWTSecret:     "your-secret-key-here",
			TokenTTL:      24 * time.Hour,
			AdminCategory: "admin",
		},
		Photos: PhotoConfig{
			Dir:      "uploads",
			MaxCount: 5,
			MaxBytes: 5 << 20,
			Storage:  "disk",
			Minio: MinioConfig{
				Bucket: "photos",
			},
		},
		RateLimit: RateLimitConfig{
			LoginLimit: 10,
			Window:     time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads the configuration: defaults, then an optional .env file,
// then the YAML file named by CONFIG_FILE, then environment variables.
func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg := Defaults()
	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvAsInt("SERVER_PORT", getEnvAsInt("PORT", cfg.Server.Port))
	cfg.Server.GinMode = getEnv("GIN_MODE", cfg.Server.GinMode)
	cfg.Server.CORSOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", cfg.Server.CORSOrigins)
	cfg.Server.UploadMaxBytes = getEnvAsInt64("UPLOAD_MAX_BYTES", cfg.Server.UploadMaxBytes)
	cfg.Server.DebugErrors = getEnvAsBool("DEBUG_ERRORS", cfg.Server.DebugErrors)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.Username = getEnv("DB_USERNAME", cfg.Database.Username)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	if _, ok := os.LookupEnv("DB_SSL"); ok {
		if getEnvAsBool("DB_SSL", false) {
			cfg.Database.SSLMode = "require"
		} else {
			cfg.Database.SSLMode = "disable"
		}
	}
	cfg.Database.TestDBName = getEnv("TEST_DB_NAME", cfg.Database.TestDBName)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = time.Duration(getEnvAsInt("TOKEN_TTL_HOURS", int(cfg.Auth.TokenTTL.Hours()))) * time.Hour
	cfg.Auth.AdminCategory = getEnv("ADMIN_CATEGORY", cfg.Auth.AdminCategory)
	cfg.Auth.AdminUsername = getEnv("ADMIN_USERNAME", cfg.Auth.AdminUsername)
	cfg.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.Auth.AdminPassword)

	cfg.Photos.Dir = getEnv("PHOTO_DIR", cfg.Photos.Dir)
	cfg.Photos.MaxCount = getEnvAsInt("PHOTO_MAX_COUNT", cfg.Photos.MaxCount)
	cfg.Photos.MaxBytes = getEnvAsInt64("PHOTO_MAX_BYTES", cfg.Photos.MaxBytes)
	cfg.Photos.Storage = strings.ToLower(getEnv("PHOTO_STORAGE", cfg.Photos.Storage))
	cfg.Photos.Minio.Endpoint = getEnv("MINIO_ENDPOINT", cfg.Photos.Minio.Endpoint)
	cfg.Photos.Minio.AccessKey = getEnv("MINIO_ACCESS_KEY", cfg.Photos.Minio.AccessKey)
	cfg.Photos.Minio.SecretKey = getEnv("MINIO_SECRET_KEY", cfg.Photos.Minio.SecretKey)
	cfg.Photos.Minio.Bucket = getEnv("MINIO_BUCKET", cfg.Photos.Minio.Bucket)
	cfg.Photos.Minio.UseSSL = getEnvAsBool("MINIO_USE_SSL", cfg.Photos.Minio.UseSSL)

	cfg.RateLimit.RedisAddr = getEnv("REDIS_ADDR", cfg.RateLimit.RedisAddr)
	cfg.RateLimit.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RateLimit.RedisPassword)
	cfg.RateLimit.LoginLimit = getEnvAsInt("LOGIN_RATE_LIMIT", cfg.RateLimit.LoginLimit)
	cfg.RateLimit.Window = time.Duration(getEnvAsInt("LOGIN_RATE_WINDOW_SECONDS", int(cfg.RateLimit.Window.Seconds()))) * time.Second

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 {
		return fmt.Errorf("config: invalid server port %d", cfg.Server.Port)
	}
	if cfg.Photos.MaxCount <= 0 {
		return fmt.Errorf("config: photo max count must be positive")
	}
	switch cfg.Photos.Storage {
	case "disk":
	case "minio":
		if cfg.Photos.Minio.Endpoint == "" || cfg.Photos.Minio.Bucket == "" {
			return fmt.Errorf("config: minio storage requires MINIO_ENDPOINT and MINIO_BUCKET")
		}
	default:
		return fmt.Errorf("config: unknown photo storage %q", cfg.Photos.Storage)
	}
	return nil
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
