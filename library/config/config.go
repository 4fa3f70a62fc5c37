package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/smart-library/library/internal/penalty"
	"github.com/Astemirdum/smart-library/library/internal/summary"
	"github.com/Astemirdum/smart-library/pkg/auth"
	"github.com/Astemirdum/smart-library/pkg/kafka"
	"github.com/Astemirdum/smart-library/pkg/logger"
	"github.com/Astemirdum/smart-library/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LIBRARY_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LIBRARY_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"30s"`
}

type Config struct {
	Server   HTTPServer     `yaml:"server"`
	Database postgres.DB    `yaml:"db"`
	Auth     auth.Config    `yaml:"auth"`
	Loan     penalty.Config `yaml:"loan"`
	AI       summary.Config `yaml:"ai"`
	Kafka    kafka.Config   `yaml:"kafka"`
	Log      logger.Log     `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment. Options win over environment values.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	cfg.Database.Password = "***"
	cfg.Auth.Secret = "***"
	if cfg.AI.APIKey != "" {
		cfg.AI.APIKey = "***"
	}
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
