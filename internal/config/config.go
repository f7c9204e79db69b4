// Package config builds the application configuration.
//
// Values come from defaults, an optional config.yaml and the environment
// (a .env file is loaded first). The resulting Config is constructed once at
// startup and handed to the components that need it.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Server struct {
	Port           string `mapstructure:"port"`
	Environment    string `mapstructure:"environment"`
	AllowedOrigins string `mapstructure:"allowed-origins"`
}

type Database struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl-mode"`
	MaxIdleConns    int           `mapstructure:"max-idle-conns"`
	MaxOpenConns    int           `mapstructure:"max-open-conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn-max-lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn-max-idle-time"`
}

// DSN returns the postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type Redis struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type Payment struct {
	Provider      string        `mapstructure:"provider"`
	BaseURL       string        `mapstructure:"base-url"`
	APIKey        string        `mapstructure:"api-key"`
	WebhookSecret string        `mapstructure:"webhook-secret"`
	AppURL        string        `mapstructure:"app-url"`
	ReturnURL     string        `mapstructure:"return-url"`
	Currency      string        `mapstructure:"currency"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// CallbackURL is where the processor delivers payment webhooks.
func (p Payment) CallbackURL() string {
	return strings.TrimRight(p.AppURL, "/") + "/api/webhooks/moneroo"
}

type Stripe struct {
	SecretKey string `mapstructure:"secret-key"`
}

// RankBand is one row of the commission rank table. A nil MaxSales marks the
// open-ended top band.
type RankBand struct {
	Name     string `mapstructure:"name"`
	MinSales int64  `mapstructure:"min-sales"`
	MaxSales *int64 `mapstructure:"max-sales"`
	RateBps  int64  `mapstructure:"rate-bps"`
}

type Commission struct {
	Ranks    []RankBand    `mapstructure:"ranks"`
	CacheTTL time.Duration `mapstructure:"cache-ttl"`
}

type Auth struct {
	JWTSecret string `mapstructure:"jwt-secret"`
}

type Logs struct {
	URL   string `mapstructure:"url"`
	Level string `mapstructure:"level"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Kafka struct {
	Brokers        string        `mapstructure:"brokers"`
	Topic          string        `mapstructure:"topic"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
}

// BrokerList splits the comma separated broker list.
func (k Kafka) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type Config struct {
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	Redis      Redis      `mapstructure:"redis"`
	Payment    Payment    `mapstructure:"payment"`
	Stripe     Stripe     `mapstructure:"stripe"`
	Commission Commission `mapstructure:"commission"`
	Auth       Auth       `mapstructure:"auth"`
	Logs       Logs       `mapstructure:"logs"`
	Metrics    Metrics    `mapstructure:"metrics"`
	Kafka      Kafka      `mapstructure:"kafka"`
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate rejects configurations the settlement flow cannot run with.
// The rank table itself is validated by the commission package.
func (c *Config) Validate() error {
	var errs []error
	if c.Payment.WebhookSecret == "" {
		errs = append(errs, errors.New("payment.webhook-secret is required"))
	}
	if c.Payment.Timeout <= 0 {
		errs = append(errs, errors.New("payment.timeout must be positive"))
	}
	switch c.Payment.Provider {
	case "moneroo":
		if c.Payment.BaseURL == "" {
			errs = append(errs, errors.New("payment.base-url is required for moneroo"))
		}
	case "stripe":
		if c.Stripe.SecretKey == "" {
			errs = append(errs, errors.New("stripe.secret-key is required for stripe"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown payment.provider %q", c.Payment.Provider))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt-secret is required"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed-origins", "http://localhost:3000")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "tradefy")
	v.SetDefault("database.ssl-mode", "disable")
	v.SetDefault("database.max-idle-conns", 10)
	v.SetDefault("database.max-open-conns", 100)
	v.SetDefault("database.conn-max-lifetime", time.Hour)
	v.SetDefault("database.conn-max-idle-time", 30*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("payment.provider", "moneroo")
	v.SetDefault("payment.base-url", "https://api.moneroo.io/v1")
	v.SetDefault("payment.api-key", "")
	v.SetDefault("payment.webhook-secret", "")
	v.SetDefault("payment.app-url", "http://localhost:3000")
	v.SetDefault("payment.return-url", "http://localhost:3000/payment/complete")
	v.SetDefault("payment.currency", "USD")
	v.SetDefault("payment.timeout", 10*time.Second)

	v.SetDefault("stripe.secret-key", "")

	v.SetDefault("commission.cache-ttl", 5*time.Minute)

	v.SetDefault("auth.jwt-secret", "")

	v.SetDefault("logs.url", "")
	v.SetDefault("logs.level", "info")

	v.SetDefault("metrics.url", "")
	v.SetDefault("metrics.interval-ms", 10000)
	v.SetDefault("metrics.common-labels", `service="tradefy"`)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "settlement-events")
	v.SetDefault("kafka.publish-timeout", 2*time.Second)
}

// Load reads config.yaml from path (optional) and the environment.
// Environment keys are upper-cased with dots and dashes replaced by
// underscores, e.g. PAYMENT_WEBHOOK_SECRET.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}
