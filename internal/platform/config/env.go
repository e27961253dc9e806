// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable read by ParseEnvScoped.
const EnvPrefix = "LOADGUARD_"

// ParseEnvScoped loads configuration from environment variables named
// LOADGUARD_<SCOPE>_<TAG>, so `env:"HTTP_ADDR"` with scope "demo" reads
// LOADGUARD_DEMO_HTTP_ADDR.
func ParseEnvScoped(target any, scope string) error {
	prefix := EnvPrefix
	if scope = strings.Trim(strings.ToUpper(strings.TrimSpace(scope)), "_"); scope != "" {
		prefix += scope + "_"
	}
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env %s*: %w", prefix, err)
	}
	return nil
}
