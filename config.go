package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type redisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	DSN      string
	Redis    redisConfig
	Queue    string
	LogLevel logrus.Level
}

// loadEnvFiles pulls .env files into the environment for local development.
// Variables already set win over file contents.
func loadEnvFiles() {
	if path := os.Getenv("PAYMENTS_ENV_FILE"); path != "" {
		_ = godotenv.Load(path)
	}
	_ = godotenv.Load(".env")
}

// loadConfig reads the worker configuration. The database is only needed for
// batch and service mode, so a missing DSN is reported separately through
// Config.requireDSN.
func loadConfig() (Config, error) {
	var cfg Config

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return cfg, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	cfg.Redis, err = parseRedisURL(os.Getenv("REDIS_URL"))
	if err != nil {
		return cfg, err
	}

	qname := os.Getenv("WORKER_QUEUE")
	if qname == "" {
		qname = "default"
	}
	cfg.Queue = "queue:" + qname

	if dsn, err := buildDSNFromEnv(); err == nil {
		cfg.DSN = dsn
	}
	return cfg, nil
}

func (c Config) requireDSN() (string, error) {
	if c.DSN == "" {
		return "", errors.New("POSTGRES_DB not set; set env vars or DATABASE_URL")
	}
	return c.DSN, nil
}

func buildDSNFromEnv() (string, error) {
	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	user := os.Getenv("POSTGRES_USER")
	pass := os.Getenv("POSTGRES_PASSWORD")
	dbname := os.Getenv("POSTGRES_DB")
	if dbname == "" {
		if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
			return dbURL, nil
		}
		return "", errors.New("POSTGRES_DB not set; set env vars or DATABASE_URL")
	}
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, pass, dbname), nil
}

func parseRedisURL(raw string) (redisConfig, error) {
	if raw == "" {
		raw = "redis://localhost:6379/0"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return redisConfig{}, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if u.Scheme == "unix" {
		return redisConfig{}, errors.New("unix sockets not supported by this worker")
	}
	if u.Host == "" {
		return redisConfig{}, fmt.Errorf("invalid REDIS_URL %q: missing host", raw)
	}
	cfg := redisConfig{Addr: u.Host}
	if u.Port() == "" {
		cfg.Addr = u.Host + ":6379"
	}
	cfg.Password, _ = u.User.Password()
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		i, err := strconv.Atoi(db)
		if err != nil {
			return redisConfig{}, fmt.Errorf("invalid REDIS_URL database %q", db)
		}
		cfg.DB = i
	}
	return cfg, nil
}
