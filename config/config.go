package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/bookvault/borrowing-service/internal/notifier"
	"github.com/bookvault/borrowing-service/internal/stripe"
	"github.com/bookvault/borrowing-service/pkg/kafka"
	"github.com/bookvault/borrowing-service/pkg/logger"
	"github.com/bookvault/borrowing-service/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"30s"`
	WriteTimeout time.Duration
}

type Config struct {
	Server    HTTPServer `yaml:"server"`
	Database  postgres.Config
	Kafka     kafka.Config
	Stripe    stripe.Config
	Telegram  notifier.Config
	DomainURL string     `envconfig:"DOMAIN_URL" default:"http://localhost:8080"`
	Log       logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return &cfg
}

func printConfig(cfg Config) {
	cfg.Stripe.SecretKey = "***"
	cfg.Telegram.BotToken = "***"
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
