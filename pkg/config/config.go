package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LocalMode bool   `envconfig:"LOCAL_MODE" default:"true"` // AWS 없이 로컬 실행 모드

	AWSRegion          string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	AWSEndpoint        string `envconfig:"AWS_ENDPOINT"` // DynamoDB Local
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`

	ProductTableName    string `envconfig:"PRODUCT_TABLE_NAME" default:"products-table"`
	WholesalerTableName string `envconfig:"WHOLESALER_TABLE_NAME" default:"wholesalers-table"`
	OrderTableName      string `envconfig:"ORDER_TABLE_NAME" default:"orders-table"`
	CounterTableName    string `envconfig:"COUNTER_TABLE_NAME" default:"counters-table"`

	KafkaEnabled      bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	OrderEventsTopic  string   `envconfig:"ORDER_EVENTS_TOPIC" default:"order-events"`
	OrderStatusTopic  string   `envconfig:"ORDER_STATUS_TOPIC" default:"order-status"`
	KafkaGroupID      string   `envconfig:"KAFKA_GROUP_ID" default:"order-service"`
	LowStockThreshold int      `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`

	TLSConfig
}

type TLSConfig struct {
	Enabled    bool   `envconfig:"TLS_ENABLED" default:"false"`
	SocketPath string `envconfig:"SPIRE_SOCKET_PATH" default:"unix:///run/spire/sockets/agent.sock"`
	// 비어 있으면 모든 SPIFFE ID 허용
	TrustDomain string `envconfig:"SPIFFE_TRUST_DOMAIN"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var problems []string

	if c.Port == "" {
		problems = append(problems, "PORT is empty")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a log level", c.LogLevel))
	}
	if !c.LocalMode {
		for env, v := range map[string]string{
			"PRODUCT_TABLE_NAME":    c.ProductTableName,
			"WHOLESALER_TABLE_NAME": c.WholesalerTableName,
			"ORDER_TABLE_NAME":      c.OrderTableName,
			"COUNTER_TABLE_NAME":    c.CounterTableName,
			"AWS_REGION":            c.AWSRegion,
		} {
			if strings.TrimSpace(v) == "" {
				problems = append(problems, env+" is empty")
			}
		}
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		problems = append(problems, "KAFKA_BROKERS is empty")
	}
	if c.LowStockThreshold < 0 {
		problems = append(problems, "LOW_STOCK_THRESHOLD must not be negative")
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
