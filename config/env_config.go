package config

import (
	"os"
	"strconv"
)

type EnvConfig struct {
	Postgres struct {
		Host     string
		Port     string
		Database string
		Username string
		Password string
		SSLMode  string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		Database int
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	Minio struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		UseSSL    bool
		Bucket    string
	}
	JWT struct {
		SecretKey string
		Expire    int
	}
	CORS struct {
		AllowDomains string
	}
	Lock struct {
		// DefaultDuration is the lock lifetime in seconds when the caller
		// does not supply one.
		DefaultDuration int
	}
	Render struct {
		// MaxExtendDepth bounds relation expansion in rendered objects.
		MaxExtendDepth int
	}
	Telemetry struct {
		OTLPEndpoint string
		ServiceName  string
	}
	Environment struct {
		Mode string
	}
	DomainName string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.Host = getEnv("PGPOOL_HOST", "localhost")
	config.Postgres.Port = getEnv("PGPOOL_PORT", "5432")
	config.Postgres.Database = getEnv("PGPOOL_DB", "register")
	config.Postgres.Username = getEnv("PGPOOL_USER", "postgres")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.SSLMode = getEnv("PGPOOL_SSLMODE", "disable")

	// Redis
	config.Redis.Host = getEnv("REDIS_HOST", "localhost")
	config.Redis.Port = getEnv("REDIS_PORT", "6379")
	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	// RabbitMQ
	config.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "localhost")
	config.RabbitMQ.Port = getEnv("RABBITMQ_PORT", "5672")
	config.RabbitMQ.Username = getEnv("RABBITMQ_USER", "guest")
	config.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", "guest")

	// MinIO (object attachments)
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	config.Minio.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	config.Minio.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"
	config.Minio.Bucket = getEnv("MINIO_BUCKET", "register-files")

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	if val := os.Getenv("JWT_EXPIRE"); val != "" {
		config.JWT.Expire, _ = strconv.Atoi(val)
	} else {
		config.JWT.Expire = 3600 * 24 * 7
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")

	// Lock policy
	if val := os.Getenv("LOCK_DEFAULT_DURATION"); val != "" {
		config.Lock.DefaultDuration, _ = strconv.Atoi(val)
	}
	if config.Lock.DefaultDuration <= 0 {
		config.Lock.DefaultDuration = 3600
	}

	// Render policy
	if val := os.Getenv("RENDER_MAX_EXTEND_DEPTH"); val != "" {
		config.Render.MaxExtendDepth, _ = strconv.Atoi(val)
	}
	if config.Render.MaxExtendDepth <= 0 {
		config.Render.MaxExtendDepth = 3
	}

	// OpenTelemetry
	config.Telemetry.OTLPEndpoint = os.Getenv("OTLP_ENDPOINT")
	config.Telemetry.ServiceName = getEnv("SERVICE_NAME", "gau-register-service")

	config.Environment.Mode = getEnv("DEPLOY_ENV", "development")
	config.DomainName = getEnv("DOMAIN_NAME", "localhost:8080")

	return &config
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
