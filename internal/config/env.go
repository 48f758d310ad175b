package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type location struct {
	Dir string `env:"HEROICDASH_CONFIG_DIR"`
}

// ParseEnv loads configuration overrides from environment variables.
// Fields whose variable is unset keep their current value.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
