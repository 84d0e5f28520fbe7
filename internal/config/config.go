package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Verifier backend names accepted by VERIFIER_BACKEND.
const (
	BackendDlib = "dlib"
	BackendGRPC = "grpc"
	BackendHTTP = "http"
)

// Config holds every runtime setting of the service. Values come from the
// environment, with a local .env file honoured for development.
type Config struct {
	ListenAddr      string
	Debug           bool
	WorkDir         string
	DatabaseDSN     string
	RedisAddr       string
	JWTSecret       string
	JWTAudience     string
	FFmpegPath      string
	MaxImageBytes   int64
	MaxVideoBytes   int64
	DownloadTimeout time.Duration
	ShutdownTimeout time.Duration

	Verifier VerifierConfig
}

// VerifierConfig selects and parameterizes the face comparison backend.
type VerifierConfig struct {
	Backend       string
	Threshold     float64
	ModelDir      string        // dlib
	ProcessorAddr string        // grpc
	Endpoint      string        // http
	APIKey        string        // http
	Timeout       time.Duration // http
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		Debug:           getEnvBool("DEBUG", false),
		WorkDir:         getEnv("WORK_DIR", os.TempDir()),
		DatabaseDSN:     getEnv("DATABASE_DSN", "host=postgres user=postgres password=postgres dbname=tact port=5432 sslmode=disable"),
		RedisAddr:       getEnv("REDIS_ADDR", "redis:6379"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTAudience:     os.Getenv("JWT_AUDIENCE"),
		FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
		MaxImageBytes:   getEnvInt64("MAX_IMAGE_BYTES", 15<<20),
		MaxVideoBytes:   getEnvInt64("MAX_VIDEO_BYTES", 200<<20),
		DownloadTimeout: getEnvDuration("DOWNLOAD_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Verifier: VerifierConfig{
			Backend:       getEnv("VERIFIER_BACKEND", BackendDlib),
			Threshold:     getEnvFloat("VERIFIER_THRESHOLD", 0.6),
			ModelDir:      getEnv("DLIB_MODEL_DIR", "models"),
			ProcessorAddr: getEnv("FACE_PROCESSOR_ADDR", "face-processor:50051"),
			Endpoint:      os.Getenv("FACE_API_ENDPOINT"),
			APIKey:        os.Getenv("FACE_API_KEY"),
			Timeout:       getEnvDuration("FACE_API_TIMEOUT", 30*time.Second),
		},
	}

	switch cfg.Verifier.Backend {
	case BackendDlib, BackendGRPC:
	case BackendHTTP:
		if cfg.Verifier.Endpoint == "" {
			return nil, fmt.Errorf("config: FACE_API_ENDPOINT is required for the http backend")
		}
	default:
		return nil, fmt.Errorf("config: unknown verifier backend %q", cfg.Verifier.Backend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
