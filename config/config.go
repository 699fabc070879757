package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Messaging MessagingConfig
	Tickets   TicketsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
}

func (a AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

type ServerConfig struct {
	Host        string
	Port        int
	BodyLimit   int
	CorsOrigins string
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  int
	RetryInterval   time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type KafkaConfig struct {
	Brokers       []string
	ClientID      string
	ConsumerGroup string
}

const (
	DriverRedis = "redis"
	DriverKafka = "kafka"
	DriverNone  = "none"
)

type MessagingConfig struct {
	Driver       string
	Channel      string
	ReplyChannel string
}

type TicketsConfig struct {
	TransitionPolicy   string
	BatchSize          int
	HoldTTL            time.Duration
	HoldExpiryInterval time.Duration
}

// Load reads an optional .env file (path defaults to ".env") and resolves every key from the environment.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	// a missing .env is fine, the environment may carry everything
	_ = godotenv.Load(paths...)

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := bind(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "event-ticketing")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_LOG_LEVEL", "info")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8002)
	v.SetDefault("SERVER_BODY_LIMIT", 100*1024*1024)
	v.SetDefault("SERVER_CORS_ORIGINS", "http://localhost:5173")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "event_ticketing")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_RETRY_INTERVAL", "2s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "event-ticketing")
	v.SetDefault("KAFKA_CONSUMER_GROUP", "event-ticketing")

	v.SetDefault("MESSAGING_DRIVER", DriverNone)
	v.SetDefault("MESSAGING_CHANNEL", "events")
	v.SetDefault("MESSAGING_REPLY_CHANNEL", "events.replies")

	v.SetDefault("TICKETS_TRANSITION_POLICY", "permissive")
	v.SetDefault("TICKETS_BATCH_SIZE", 1000)
	v.SetDefault("TICKETS_HOLD_TTL", "15m")
	v.SetDefault("TICKETS_HOLD_EXPIRY_INTERVAL", "1m")
}

func bind(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.LogLevel = v.GetString("APP_LOG_LEVEL")

	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.BodyLimit = v.GetInt("SERVER_BODY_LIMIT")
	cfg.Server.CorsOrigins = v.GetString("SERVER_CORS_ORIGINS")

	cfg.Database.Host = v.GetString("DB_HOST")
	cfg.Database.Port = v.GetInt("DB_PORT")
	cfg.Database.User = v.GetString("DB_USER")
	cfg.Database.Password = v.GetString("DB_PASSWORD")
	cfg.Database.DBName = v.GetString("DB_NAME")
	cfg.Database.SSLMode = v.GetString("DB_SSLMODE")
	cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.Database.ConnMaxLifetime = v.GetDuration("DB_CONN_MAX_LIFETIME")
	cfg.Database.ConnectRetries = v.GetInt("DB_CONNECT_RETRIES")
	cfg.Database.RetryInterval = v.GetDuration("DB_RETRY_INTERVAL")

	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
		}
	}
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")
	cfg.Kafka.ConsumerGroup = v.GetString("KAFKA_CONSUMER_GROUP")

	cfg.Messaging.Driver = strings.ToLower(v.GetString("MESSAGING_DRIVER"))
	cfg.Messaging.Channel = v.GetString("MESSAGING_CHANNEL")
	cfg.Messaging.ReplyChannel = v.GetString("MESSAGING_REPLY_CHANNEL")

	cfg.Tickets.TransitionPolicy = strings.ToLower(v.GetString("TICKETS_TRANSITION_POLICY"))
	cfg.Tickets.BatchSize = v.GetInt("TICKETS_BATCH_SIZE")
	cfg.Tickets.HoldTTL = v.GetDuration("TICKETS_HOLD_TTL")
	cfg.Tickets.HoldExpiryInterval = v.GetDuration("TICKETS_HOLD_EXPIRY_INTERVAL")

	return cfg
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	switch c.Messaging.Driver {
	case DriverRedis, DriverNone:
	case DriverKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka driver needs at least one broker")
		}
	default:
		return fmt.Errorf("unknown messaging driver: %q", c.Messaging.Driver)
	}
	if c.Messaging.Driver != DriverNone && c.Messaging.Channel == c.Messaging.ReplyChannel {
		return fmt.Errorf("messaging reply channel must differ from %q", c.Messaging.Channel)
	}
	switch c.Tickets.TransitionPolicy {
	case "permissive", "strict":
	default:
		return fmt.Errorf("unknown transition policy: %q", c.Tickets.TransitionPolicy)
	}
	if c.Tickets.BatchSize <= 0 {
		return fmt.Errorf("invalid batch size: %d", c.Tickets.BatchSize)
	}
	if c.Tickets.HoldTTL <= 0 || c.Tickets.HoldExpiryInterval <= 0 {
		return fmt.Errorf("hold ttl and expiry interval must be positive")
	}
	return nil
}
