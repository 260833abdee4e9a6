// Package hubconfig reads the hub's environment-driven settings: the origin
// allow-list, the backend API base and the development-mode switch that
// relaxes origin enforcement for local game work.
package hubconfig

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AllowedOrigins []string `env:"IRUKA_ALLOWED_ORIGINS" envSeparator:","`
	APIBase        string   `env:"IRUKA_API_BASE" envDefault:"http://127.0.0.1:8080"`
	DevMode        bool     `env:"IRUKA_DEV_MODE" envDefault:"false"`
	ListenAddr     string   `env:"IRUKA_LISTEN_ADDR" envDefault:"127.0.0.1:9300"`
	TokenSecret    string   `env:"IRUKA_TOKEN_SECRET"`
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse hub environment: %v", err)
	}
	return cfg, nil
}
