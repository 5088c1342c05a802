package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Gateway GatewayConfig
	Booking BookingConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Kolkata"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers            []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	NotificationsTopic string   `envconfig:"KAFKA_NOTIFICATIONS_TOPIC" default:"booking-notifications"`
}

type GatewayConfig struct {
	BaseURL   string `envconfig:"GATEWAY_BASE_URL" default:"https://api.razorpay.com"`
	KeyID     string `envconfig:"GATEWAY_KEY_ID" required:"true"`
	KeySecret string `envconfig:"GATEWAY_KEY_SECRET" required:"true"`
}

type BookingConfig struct {
	// Civil offset of the operating region in minutes east of UTC.
	// Appointment validity is always evaluated against this offset,
	// never against the host's local zone.
	TimeZoneOffsetMin int           `envconfig:"BOOKING_TZ_OFFSET_MIN" default:"330"`
	TimeZoneName      string        `envconfig:"BOOKING_TZ_NAME" default:"IST"`
	SlotHoldTTL       time.Duration `envconfig:"BOOKING_SLOT_HOLD_TTL" default:"30s"`
	PaymentExpiry     time.Duration `envconfig:"BOOKING_PAYMENT_EXPIRY" default:"30m"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Kolkata"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"19800"` // 5*60*60 + 30*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// Zone materializes the booking offset as a fixed civil zone.
func (c *BookingConfig) Zone() *time.Location {
	return time.FixedZone(c.TimeZoneName, c.TimeZoneOffsetMin*60)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Kolkata",
		},
		Redis: RedisConfig{
			Addr: "localhost:16380", // Test Redis port
		},
		Kafka: KafkaConfig{
			Brokers:            []string{"localhost:19092"},
			NotificationsTopic: "booking-notifications-test",
		},
		Gateway: GatewayConfig{
			BaseURL:   "http://localhost:18089",
			KeyID:     "rzp_test_key",
			KeySecret: "rzp_test_secret",
		},
		Booking: BookingConfig{
			TimeZoneOffsetMin: 330,
			TimeZoneName:      "IST",
			SlotHoldTTL:       30 * time.Second,
			PaymentExpiry:     30 * time.Minute,
		},
		JWT: JWTConfig{
			Secret:   "test-secret-key-for-unit-and-e2e",
			Duration: "24h",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Kolkata",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 19800,
		},
	}
}
