package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentConfig struct {
	Env            string `yaml:"env" env-default:"local"`
	HTTPServer     `yaml:"http_server"`
	GRPCServer     `yaml:"grpc_server"`
	PaymentDB      `yaml:"payment_db"`
	LogConfig      `yaml:"log_config"`
	KafkaService   `yaml:"kafka_service"`
	ClientCallback `yaml:"client_callback"`
	Reconcile      `yaml:"reconcile"`
	Gateways       `yaml:"gateways"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"30s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"9090"`
}

type PaymentDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
	InMemory       bool   `yaml:"in_memory"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
	LogOutput string `yaml:"log_output" env-default:"stdout"`
}

type KafkaService struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic" env-default:"payment-events"`
}

type ClientCallback struct {
	MaxAttempts     int           `yaml:"max_attempts" env-default:"5"`
	MaxElapsed      time.Duration `yaml:"max_elapsed" env-default:"10s"`
	InitialInterval time.Duration `yaml:"initial_interval" env-default:"500ms"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env-default:"5s"`
}

type Reconcile struct {
	PendingPaymentInterval time.Duration `yaml:"pending_payment_interval" env-default:"10m"`
	PendingPaymentBatch    int           `yaml:"pending_payment_batch" env-default:"200"`
	RefundRetryInterval    time.Duration `yaml:"refund_retry_interval" env-default:"30m"`
	RefundRetryBatch       int           `yaml:"refund_retry_batch" env-default:"100"`
	CommunicationInterval  time.Duration `yaml:"communication_interval" env-default:"1m"`
	CommunicationBatch     int           `yaml:"communication_batch" env-default:"50"`
	CommunicationMaxCount  int           `yaml:"communication_max_count" env-default:"50"`
	// ResendSuccessInterval of zero disables the success re-notification sweep.
	ResendSuccessInterval time.Duration `yaml:"resend_success_interval"`
	ResendSuccessBatch    int           `yaml:"resend_success_batch" env-default:"200"`
	RatePerSecond         float64       `yaml:"rate_per_second" env-default:"5"`
	Concurrency           int           `yaml:"concurrency" env-default:"4"`
}

// Gateways is the gateway-id -> credentials table.
type Gateways struct {
	Default int       `yaml:"default"`
	List    []Gateway `yaml:"list"`
}

type Gateway struct {
	ID     int    `yaml:"id"`
	Driver string `yaml:"driver"`

	// razorpay
	KeyID         string `yaml:"key_id"`
	KeySecret     string `yaml:"key_secret"`
	WebhookSecret string `yaml:"webhook_secret"`

	// paytm
	ClientID    string `yaml:"client_id"`
	MID         string `yaml:"mid"`
	Key         string `yaml:"key"`
	Website     string `yaml:"website"`
	CallbackURL string `yaml:"callback_url"`

	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Lookup returns the gateway configured under id.
func (g Gateways) Lookup(id int) (Gateway, bool) {
	for _, gw := range g.List {
		if gw.ID == id {
			return gw, true
		}
	}
	return Gateway{}, false
}

// Validate rejects duplicate ids and a default that points nowhere.
func (g Gateways) Validate() error {
	seen := make(map[int]struct{}, len(g.List))
	for _, gw := range g.List {
		if _, dup := seen[gw.ID]; dup {
			return fmt.Errorf("duplicate gateway id %d", gw.ID)
		}
		seen[gw.ID] = struct{}{}
		if gw.Driver == "" {
			return fmt.Errorf("gateway %d has no driver", gw.ID)
		}
	}
	if g.Default != 0 {
		if _, ok := seen[g.Default]; !ok {
			return fmt.Errorf("default gateway %d is not configured", g.Default)
		}
	}
	return nil
}

// Load reads the YAML config at path.
func Load(path string) (*PaymentConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.Gateways.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateways config: %w", err)
	}
	return &cfg, nil
}

func MustLoad() *PaymentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	return cfg
}
