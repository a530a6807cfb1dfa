package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDR" env-default:":8080"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"5m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

// Storage selects the durable store that carts are persisted to.
type Storage struct {
	Driver     string        `yaml:"driver" env:"CART_STORAGE_DRIVER" env-default:"redis"`
	SQLitePath string        `yaml:"sqlite_path" env:"CART_SQLITE_PATH" env-default:"carts.db"`
	KeyPrefix  string        `yaml:"key_prefix" env:"CART_KEY_PREFIX" env-default:"cart"`
	TTL        time.Duration `yaml:"ttl" env:"CART_TTL" env-default:"720h"`
	// IdleTimeout drops in-memory session stores; the durable copy stays.
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"CART_IDLE_TIMEOUT" env-default:"30m"`
}

// Pricing amounts are decimal strings so they never pass through float64.
type Pricing struct {
	FreeShippingThreshold string `yaml:"free_shipping_threshold" env:"FREE_SHIPPING_THRESHOLD" env-default:"250.00"`
	StandardShippingCost  string `yaml:"standard_shipping_cost" env:"STANDARD_SHIPPING_COST" env-default:"10.00"`
	TaxRate               string `yaml:"tax_rate" env:"TAX_RATE" env-default:"0.20"`
	Currency              string `yaml:"currency" env:"CURRENCY" env-default:"usd"`
}

type Stripe struct {
	APIKey string `yaml:"STRIPE_API_KEY" env:"STRIPE_API_KEY" env-default:""`
}

type SendGrid struct {
	APIKey    string `yaml:"API_KEY" env:"SENDGRID_API_KEY" env-default:""`
	FromEmail string `yaml:"FROM_EMAIL" env:"SENDGRID_FROM_EMAIL" env-default:"orders@example.com"`
	FromName  string `yaml:"FROM_NAME" env:"SENDGRID_FROM_NAME" env-default:"Storefront"`
}

type Security struct {
	SessionKey string        `yaml:"SESSION_KEY" env:"SESSION_KEY" env-required:"true"`
	SessionTTL time.Duration `yaml:"SESSION_TTL" env:"SESSION_TTL" env-default:"720h"`
}

// Cache holds the read-through catalog cache settings.
type Cache struct {
	Enabled    bool          `yaml:"enabled" env:"CATALOG_CACHE_ENABLED" env-default:"true"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CATALOG_CACHE_TTL" env-default:"5m"`
}

type Tracing struct {
	Enabled          bool    `yaml:"ENABLED" env:"OTEL_ENABLED" env-default:"false"`
	Insecure         bool    `yaml:"INSECURE" env:"OTEL_EXPORTER_INSECURE" env-default:"true"`
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"storefront"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT" env-default:"localhost:4318"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Storage      Storage      `yaml:"storage"`
	Cache        Cache        `yaml:"cache"`
	Pricing      Pricing      `yaml:"pricing"`
	Stripe       Stripe       `yaml:"stripe"`
	SendGrid     SendGrid     `yaml:"sendgrid"`
	Security     Security     `yaml:"security"`
	Tracing      Tracing      `yaml:"otel"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {

			log.Fatal("Config path is not set")

		}

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg

}

func LoadConfigFromPath(configPath string) (*Config, error) {

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &cfg, nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	if r.Username == "" && r.Password == "" {
		return fmt.Sprintf("redis://%s:%s/%d", r.Host, r.Port, r.DB)
	}
	return fmt.Sprintf("redis://%s:%s@%s:%s/%d", r.Username, r.Password, r.Host, r.Port, r.DB)
}
