package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Local storage
	KVBackend    string
	SQLiteDBPath string

	// Remote API
	APIBaseURL string
	APITimeout time.Duration

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Replayer
	ReplayInterval  time.Duration
	ReplayBatchSize int
}

func Load() *Config {
	cfg := &Config{
		KVBackend:    getEnv("KV_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/walletsync.db"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080/api"),
		APITimeout: getEnvDuration("API_TIMEOUT", 10*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "walletsync"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "pending_mutations"),

		ReplayInterval:  getEnvDuration("REPLAY_INTERVAL", 30*time.Second),
		ReplayBatchSize: getEnvInt("REPLAY_BATCH_SIZE", 25),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate kv backend
	validBackends := []string{"sqlite", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.KVBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid kv backend '%s': must be one of %v", c.KVBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.KVBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate API base URL
	if c.APIBaseURL == "" {
		errors = append(errors, "API base URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.APITimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be at least 1 second", c.APITimeout))
	} else if c.APITimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be at most 5 minutes", c.APITimeout))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate replayer configuration
	if c.ReplayBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid replay batch size %d: must be at least 1", c.ReplayBatchSize))
	} else if c.ReplayBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid replay batch size %d: must be at most 1000", c.ReplayBatchSize))
	}

	if c.ReplayInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid replay interval %v: must be at least 1 second", c.ReplayInterval))
	} else if c.ReplayInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid replay interval %v: must be at most 24 hours", c.ReplayInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
