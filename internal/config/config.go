package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	AutoMigrate        bool
}

// StorageConfig holds S3-compatible object storage settings.
// PublicBaseURL is the prefix used to build public object URLs,
// e.g. https://<project>.supabase.co/storage/v1/object/public.
type StorageConfig struct {
	Endpoint            string
	AccessKey           string
	SecretKey           string
	Region              string
	UseSSL              bool
	PublicBaseURL       string
	PapersBucket        string
	PresentationsBucket string
	AudioBucket         string
}

// RedisConfig holds the catalog cache connection. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTLSec   int
}

// AuthConfig points at the hosted auth provider.
type AuthConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string
	AdminEmails    []string
}

// AIConfig configures the generative model used for paper summaries.
type AIConfig struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	InlineLimitMB   int
	TimeoutSec      int
	// MaxDownloadMB caps PDFs fetched by URL. It follows MAX_UPLOAD_MB.
	MaxDownloadMB int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	Timezone    string
	LogLevel    string
	CORSOrigins string
	MaxUploadMB int
	Database    DatabaseConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Auth        AuthConfig
	AI          AIConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 50),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Storage: StorageConfig{
			Endpoint:            getEnv("STORAGE_ENDPOINT", ""),
			AccessKey:           getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:           getEnv("STORAGE_SECRET_KEY", ""),
			Region:              getEnv("STORAGE_REGION", ""),
			UseSSL:              getEnvBool("STORAGE_USE_SSL", false),
			PublicBaseURL:       getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			PapersBucket:        getEnv("STORAGE_BUCKET_PAPERS", "papers"),
			PresentationsBucket: getEnv("STORAGE_BUCKET_PRESENTATIONS", "presentations"),
			AudioBucket:         getEnv("STORAGE_BUCKET_AUDIO", "audio"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTLSec:   getEnvInt("CACHE_TTL_SEC", 60),
		},
		Auth: AuthConfig{
			URL:            strings.TrimRight(getEnv("AUTH_URL", ""), "/"),
			AnonKey:        getEnv("AUTH_ANON_KEY", ""),
			ServiceRoleKey: getEnv("AUTH_SERVICE_ROLE_KEY", ""),
			JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
			AdminEmails:    getEnvList("ADMIN_EMAILS"),
		},
		AI: AIConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Temperature:     getEnvFloat("GEMINI_TEMPERATURE", 0.3),
			MaxOutputTokens: getEnvInt("GEMINI_MAX_OUTPUT_TOKENS", 2048),
			InlineLimitMB:   getEnvInt("GEMINI_INLINE_LIMIT_MB", 18),
			TimeoutSec:      getEnvInt("GEMINI_TIMEOUT_SEC", 120),
			MaxDownloadMB:   getEnvInt("MAX_UPLOAD_MB", 50),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MaxUploadBytes is the largest accepted PDF.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// BodyLimit is the largest accepted request body: three base64 encoded files at the upload limit
// plus 1 MiB for the surrounding JSON.
func (c *AppConfig) BodyLimit() int {
	encoded := (c.MaxUploadBytes() + 2) / 3 * 4
	return int(encoded*3 + 1<<20)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blanks and lowercasing entries.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
