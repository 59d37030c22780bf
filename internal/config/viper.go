package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. IDFORGE_SERVER_PORT.
const EnvPrefix = "IDFORGE"

// newViper reads path, or config.yaml from the usual locations when path is empty.
// A missing file is only tolerated when searching; env vars and defaults still apply.
func newViper(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.path", "data/idforge.db")
	v.SetDefault("storage.max_conns", 10)
	v.SetDefault("storage.min_conns", 2)
	v.SetDefault("storage.application_name", "idforge")
	v.SetDefault("storage.migrate", true)

	v.SetDefault("numerator.duplicate_retries", 3)

	// DATABASE_URL is what most Postgres tooling exports.
	_ = v.BindEnv("storage.dsn", EnvPrefix+"_STORAGE_DSN", "DATABASE_URL")
}
