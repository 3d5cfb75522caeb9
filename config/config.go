package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the application.
type Config struct {
	DatabaseURL string
	ServerPort  int

	// Engine defaults, applied when a tournament does not override them.
	ByePoints          float64
	RequestedByePoints float64
	AcceleratedRounds  int
}

// Load reads configuration from environment variables. A .env file is
// loaded first when present, which is convenient for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	byePoints, err := floatEnv("BYE_POINTS", 1.0)
	if err != nil {
		return nil, err
	}
	requestedByePoints, err := floatEnv("REQUESTED_BYE_POINTS", 0.5)
	if err != nil {
		return nil, err
	}
	acceleratedRounds, err := intEnv("ACCELERATED_ROUNDS", 2)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		ServerPort:         port,
		ByePoints:          byePoints,
		RequestedByePoints: requestedByePoints,
		AcceleratedRounds:  acceleratedRounds,
	}

	return cfg, nil
}

func floatEnv(name string, def float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %g", name, v)
	}
	return v, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", name, v)
	}
	return v, nil
}
