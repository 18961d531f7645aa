package config

import (
	"time"

	"github.com/asaulyak/goit-pythonweb-hw-012/internal/env"
)

type Config struct {
	HTTP  httpConfig
	DB    dbConfig
	JWT   jwtConfig
	Cache cacheConfig
	Mail  mailConfig
}

type httpConfig struct {
	ListenAddr      string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type dbConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type jwtConfig struct {
	Secret string
	TTL    time.Duration
}

type cacheConfig struct {
	// Redis when RedisHost is set, in-process otherwise.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	MaxKeys       int64
}

type mailConfig struct {
	// SMTP is used when Host is set; the log notifier otherwise.
	Host       string
	User       string
	Password   string
	From       string
	FromName   string
	SkipVerify bool
}

func FromEnv() Config {
	return Config{
		HTTP: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			Host:            env.String("PUBLIC_HOST", "http://localhost:8080"),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: dbConfig{
			Host:     env.String("POSTGRES_HOST", "localhost"),
			Port:     env.String("POSTGRES_PORT", "5432"),
			User:     env.String("POSTGRES_USER", "postgres"),
			Password: env.RequireString("POSTGRES_PASSWORD"),
			Name:     env.String("POSTGRES_DB", "contacts"),
		},
		JWT: jwtConfig{
			Secret: env.RequireString("JWT_SECRET"),
			TTL:    env.Duration("JWT_EXPIRATION", time.Hour),
		},
		Cache: cacheConfig{
			RedisHost:     env.String("REDIS_HOST", ""),
			RedisPort:     env.String("REDIS_PORT", "6379"),
			RedisPassword: env.String("REDIS_PASSWORD", ""),
			RedisDB:       env.Int("REDIS_DB", 0),
			TTL:           env.Duration("CACHE_TTL", time.Minute),
			MaxKeys:       int64(env.Int("CACHE_MAX_KEYS", 10_000)),
		},
		Mail: mailConfig{
			Host:       env.String("MAIL_HOST", ""),
			User:       env.String("MAIL_USER", ""),
			Password:   env.String("MAIL_PASSWORD", ""),
			From:       env.String("MAIL_FROM", "noreply@contacts.local"),
			FromName:   env.String("MAIL_FROM_NAME", "Contacts"),
			SkipVerify: env.Bool("MAIL_SKIP_TLS_VERIFY", false),
		},
	}
}
