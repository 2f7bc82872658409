package main

import (
	"os"
	"strconv"
	"time"
)

// Config holds server settings read from environment
type Config struct {
	DatabaseURL     string
	SegmentsFile    string
	ShadowsFile     string
	Delimiter       string
	Port            string
	Env             string
	CacheSize       int
	MaxCandidates   int
	MaxSnapDistance float64
	RequestTimeout  time.Duration
}

func loadConfig() *Config {
	return &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SegmentsFile:    getEnv("SEGMENTS_FILE", "road_segments.csv"),
		ShadowsFile:     getEnv("SHADOWS_FILE", "link_shadow_hourly.csv"),
		Delimiter:       getEnv("CSV_DELIMITER", ","),
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("GO_ENV", "development"),
		CacheSize:       getEnvInt("PLAN_CACHE_SIZE", 256),
		MaxCandidates:   getEnvInt("MAX_CANDIDATES", 30),
		MaxSnapDistance: getEnvFloat("MAX_SNAP_DISTANCE", 0),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
