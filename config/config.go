/*
Package config loads process configuration.

PURPOSE:
  Reads an optional .env file, then environment variables with defaults.
  Also pins the tracked-year set: the set of entitlement buckets depends
  on the wall clock, so it is computed exactly once here and handed to
  every component explicitly. Nothing else reads the clock for schema
  purposes, which keeps the year set injectable in tests.

VARIABLES:
  PORT     HTTP server port          (default 8000)
  DB_PATH  SQLite database path      (default leave.db)
*/
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/leave-tracker/leave"
)

type Config struct {
	Port   int
	DBPath string
	Years  leave.Years
}

// Load builds the configuration from .env (if present) and the
// environment, and fixes the year set as of now.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Port:   getEnvInt("PORT", 8000),
		DBPath: getEnv("DB_PATH", "leave.db"),
		Years:  leave.KnownYears(time.Now()),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, defaultValue)
		return defaultValue
	}
	return n
}
