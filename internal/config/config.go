// Package config loads the idforge configuration from YAML and the environment.
package config

import (
	"fmt"
	"time"

	"idforge/internal/core/apperror"
	corenumerator "idforge/internal/core/numerator"
	"idforge/internal/core/numerator/checkdigit"
	"idforge/internal/core/numerator/increment"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Numerator NumeratorConfig `mapstructure:"numerator"`
	Types     []TypeConfig    `mapstructure:"types"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// StorageConfig selects the identifier history store.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	// DSN is the Postgres connection string.
	DSN string `mapstructure:"dsn"`
	// Path is the SQLite database file.
	Path            string `mapstructure:"path"`
	MaxConns        int32  `mapstructure:"max_conns"`
	MinConns        int32  `mapstructure:"min_conns"`
	ApplicationName string `mapstructure:"application_name"`
	// Migrate creates the history schema on startup.
	Migrate bool `mapstructure:"migrate"`
}

type NumeratorConfig struct {
	DuplicateRetries int `mapstructure:"duplicate_retries"`
}

// TypeConfig is the YAML form of one identifier type.
type TypeConfig struct {
	Name         string `mapstructure:"name"`
	Prefix       string `mapstructure:"prefix"`
	PrefixLayout string `mapstructure:"prefix_layout"`
	Body         string `mapstructure:"body"`
	Separator    string `mapstructure:"separator"`
	Seed         string `mapstructure:"seed"`
	SeedOverride string `mapstructure:"seed_override"`
	Strategy     string `mapstructure:"strategy"`
	Overflow     string `mapstructure:"overflow"`

	CheckDigit CheckDigitConfig `mapstructure:"check_digit"`
	Random     RandomConfig     `mapstructure:"random"`
}

type CheckDigitConfig struct {
	Kind    string `mapstructure:"kind"`
	Modulus int    `mapstructure:"modulus"`
}

type RandomConfig struct {
	Length   int    `mapstructure:"length"`
	Alphabet string `mapstructure:"alphabet"`
}

// Load reads the configuration. An empty path searches ./config.yaml and ./config/config.yaml.
func Load(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that do not depend on the identifier engine.
// Type definitions are checked by Specs.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return apperror.NewConfiguration("storage.dsn is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Storage.Path == "" {
			return apperror.NewConfiguration("storage.path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return apperror.NewConfiguration(fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperror.NewConfiguration(fmt.Sprintf("invalid server port %d", c.Server.Port))
	}
	if c.Numerator.DuplicateRetries < 0 {
		return apperror.NewConfiguration("numerator.duplicate_retries must not be negative")
	}
	if len(c.Types) == 0 {
		return apperror.NewConfiguration("at least one identifier type must be configured")
	}
	return nil
}

// Specs converts every type definition into an identifier spec.
func (c *Config) Specs() ([]corenumerator.Spec, error) {
	specs := make([]corenumerator.Spec, 0, len(c.Types))
	for _, t := range c.Types {
		spec, err := t.Spec()
		if err != nil {
			return nil, fmt.Errorf("identifier type %q: %w", t.Name, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// SeedOverrides returns the configured seed overrides by type name.
func (c *Config) SeedOverrides() map[string]string {
	out := make(map[string]string)
	for _, t := range c.Types {
		if t.SeedOverride != "" {
			out[t.Name] = t.SeedOverride
		}
	}
	return out
}

// Spec converts t into an identifier spec. Names are parsed here; the structure
// of the spec is validated when the service is built.
func (t TypeConfig) Spec() (corenumerator.Spec, error) {
	kind, err := checkdigit.ParseKind(t.CheckDigit.Kind)
	if err != nil {
		return corenumerator.Spec{}, apperror.NewConfiguration(err.Error())
	}
	strategy, err := corenumerator.ParseStrategy(t.Strategy)
	if err != nil {
		return corenumerator.Spec{}, apperror.NewConfiguration(err.Error())
	}
	overflow, err := increment.ParseOverflow(t.Overflow)
	if err != nil {
		return corenumerator.Spec{}, apperror.NewConfiguration(err.Error())
	}

	return corenumerator.Spec{
		Name:         t.Name,
		Prefix:       t.Prefix,
		PrefixLayout: t.PrefixLayout,
		Body:         t.Body,
		Separator:    t.Separator,
		CheckDigit:   checkdigit.Config{Kind: kind, Modulus: t.CheckDigit.Modulus},
		Seed:         t.Seed,
		Strategy:     strategy,
		Overflow:     overflow,
		Random: corenumerator.RandomConfig{
			Length:   t.Random.Length,
			Alphabet: t.Random.Alphabet,
		},
	}, nil
}
