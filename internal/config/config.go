package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Environment   string
	LogLevel      string
	APIPrefix     string
	UploadDir     string
	CORSOrigins   []string
	RunMigrations bool

	HTTP           HTTPConfig
	MySQL          MySQLConfig
	JWT            JWTConfig
	Kafka          KafkaConfig
	RateLimit      RateLimitConfig
	FirstSuperuser SuperuserConfig
}

type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

type MySQLConfig struct {
	Host            string
	Port            string
	Database        string
	Username        string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type KafkaConfig struct {
	Brokers          []string
	Topic            string
	ProducerRetries  int
	ProducerTimeout  time.Duration
	RequiredAcks     int
	CompressionType  string
	MaxMessageBytes  int
	IdempotentWrites bool
}

// Enabled reports whether event fan-out should be started.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type RateLimitConfig struct {
	EventsPerSecond float64
	EventsBurst     int
}

type SuperuserConfig struct {
	Email    string
	Password string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		APIPrefix:     getEnv("API_PREFIX", "/api/v1"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		CORSOrigins:   getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:5173"}),
		RunMigrations: getEnvAsBool("RUN_MIGRATIONS", true),
	}

	cfg.HTTP = HTTPConfig{
		Port:            getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		RequestTimeout:  getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 20*time.Second),
		ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxUploadBytes:  int64(getEnvAsInt("HTTP_MAX_UPLOAD_BYTES", 32<<20)),
	}

	cfg.MySQL = MySQLConfig{
		Host:            getEnv("MYSQL_HOST", "127.0.0.1"),
		Port:            getEnv("MYSQL_PORT", "3306"),
		Database:        getEnv("MYSQL_DB", "carlisting"),
		Username:        getEnv("MYSQL_USER", "root"),
		Password:        getEnv("MYSQL_PASSWORD", ""),
		MaxOpenConns:    getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvAsDuration("MYSQL_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET", "change-me-in-production"),
		TTL:    getEnvAsDuration("JWT_TTL", 72*time.Hour),
	}

	cfg.Kafka = KafkaConfig{
		Brokers:          getEnvAsSlice("KAFKA_BROKERS", nil),
		Topic:            getEnv("KAFKA_TOPIC_EVENTS", "item-events"),
		ProducerRetries:  getEnvAsInt("KAFKA_PRODUCER_RETRIES", 3),
		ProducerTimeout:  getEnvAsDuration("KAFKA_PRODUCER_TIMEOUT", 10*time.Second),
		RequiredAcks:     getEnvAsInt("KAFKA_REQUIRED_ACKS", -1),
		CompressionType:  getEnv("KAFKA_COMPRESSION", "snappy"),
		IdempotentWrites: getEnvAsBool("KAFKA_IDEMPOTENT", false),
		MaxMessageBytes:  getEnvAsInt("KAFKA_MAX_MESSAGE_BYTES", 1000000),
	}

	cfg.RateLimit = RateLimitConfig{
		EventsPerSecond: getEnvAsFloat("RATE_LIMIT_EVENTS_RPS", 20),
		EventsBurst:     getEnvAsInt("RATE_LIMIT_EVENTS_BURST", 40),
	}

	cfg.FirstSuperuser = SuperuserConfig{
		Email:    getEnv("FIRST_SUPERUSER", ""),
		Password: getEnv("FIRST_SUPERUSER_PASSWORD", ""),
	}

	return cfg, nil
}

// DSN renders the connection string for go-sql-driver/mysql.
func (c *MySQLConfig) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.Username
	dsn.Passwd = c.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.Host, c.Port)
	dsn.DBName = c.Database
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	return dsn.FormatDSN()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
