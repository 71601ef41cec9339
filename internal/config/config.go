package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Vision   VisionConfig
}

type ServerConfig struct {
	Port int
	Host string
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type VisionConfig struct {
	AWSRegion      string        // AWS region, SDK default chain when empty
	CollectionID   string        // Rekognition collection holding enrolled faces
	MatchThreshold float32       // minimum similarity (percent) for a positive match
	CallTimeout    time.Duration // per-provider-call timeout
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envThreshold reads a percentage env var and clamps it to [0, 100].
func envThreshold(key string, defaultVal float32) float32 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return defaultVal
	}
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return float32(f)
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: envInt("SERVER_PORT", 8080),
			Host: envString("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Vision: VisionConfig{
			AWSRegion:      os.Getenv("AWS_REGION"),
			CollectionID:   envString("REKOGNITION_COLLECTION_ID", "attendance-faces"),
			MatchThreshold: envThreshold("FACE_MATCH_THRESHOLD", 75),
			CallTimeout:    time.Duration(envInt("PROVIDER_TIMEOUT", 15)) * time.Second,
		},
	}
}
