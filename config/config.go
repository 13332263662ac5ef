package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	MaxUploadMB   int64
	CORSOrigin    string
}

func Load() (*Config, error) {
	maxMB := int64(50)
	if v := getEnv("MAX_UPLOAD_MB", "50"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxMB = n
		}
	}
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/biblioteca"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		AccessTTL:     getDuration("ACCESS_TOKEN_TTL", 60*time.Minute),
		RefreshTTL:    getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		S3Bucket:      getEnv("AWS_S3_BUCKET", ""),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3AccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		MaxUploadMB:   maxMB,
		CORSOrigin:    getEnv("CORS_ORIGIN", "*"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("env %s: invalid duration %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

// RequiredEnvVars are checked at startup; app exits if any are unset.
var RequiredEnvVars = []string{
	"DATABASE_URL",
	"JWT_SECRET",
}

// OptionalEnvVars are logged at startup so you can confirm they are loaded when set.
var OptionalEnvVars = []string{
	"PORT",
	"AWS_S3_BUCKET",
	"AWS_REGION",
	"ACCESS_TOKEN_TTL",
	"REFRESH_TOKEN_TTL",
	"MAX_UPLOAD_MB",
	"CORS_ORIGIN",
}

// ValidateEnv checks that all required env vars are set and logs status of
// required + optional. Calls log.Fatal if any required var is missing.
func ValidateEnv() {
	var missing []string
	for _, key := range RequiredEnvVars {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		} else {
			log.Printf("env %s loaded", key)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("missing required env: %s (set these in .env or environment)", strings.Join(missing, ", "))
	}
	for _, key := range OptionalEnvVars {
		v := strings.TrimSpace(os.Getenv(key))
		if v != "" {
			log.Printf("env %s = %s", key, v)
		} else {
			log.Printf("env %s not set (optional)", key)
		}
	}
	if os.Getenv("JWT_SECRET") == "change-me-in-production" {
		log.Fatal("JWT_SECRET must be set to a strong secret (not the default change-me-in-production)")
	}
}
