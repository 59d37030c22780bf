package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idforge/internal/core/apperror"
	corenumerator "idforge/internal/core/numerator"
	"idforge/internal/core/numerator/checkdigit"
	"idforge/internal/core/numerator/increment"
)

const sampleYAML = `
server:
  port: 9000
  read_timeout: 5s
storage:
  driver: sqlite
  path: /tmp/ids.db
numerator:
  duplicate_retries: 5
types:
  - name: sample
    body: "[A-Z]{3}[0-9]{4}"
    seed: AAA0000
    seed_override: AAB0001
    check_digit:
      kind: mod10_ordinal
  - name: accession
    body: "[0-9]{10}"
    separator: "-"
    check_digit:
      kind: modulus
      modulus: 13
  - name: batch
    prefix_layout: "20060102"
    body: "[0-9]{4}"
    overflow: fail
  - name: requisition
    prefix: REQ
    strategy: random
    random:
      length: 6
      alphabet: ABC
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/ids.db", cfg.Storage.Path)
	assert.Equal(t, int32(10), cfg.Storage.MaxConns)
	assert.Equal(t, 5, cfg.Numerator.DuplicateRetries)
	require.Len(t, cfg.Types, 4)
	assert.Equal(t, map[string]string{"sample": "AAB0001"}, cfg.SeedOverrides())
}

func TestLoad_Specs(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	specs, err := cfg.Specs()
	require.NoError(t, err)
	require.Len(t, specs, 4)

	assert.Equal(t, corenumerator.Spec{
		Name:       "sample",
		Body:       "[A-Z]{3}[0-9]{4}",
		Seed:       "AAA0000",
		CheckDigit: checkdigit.Config{Kind: checkdigit.Mod10Ordinal},
	}, specs[0])

	assert.Equal(t, checkdigit.Config{Kind: checkdigit.Modulus, Modulus: 13}, specs[1].CheckDigit)
	assert.Equal(t, "-", specs[1].Separator)

	assert.Equal(t, "20060102", specs[2].PrefixLayout)
	assert.Equal(t, increment.Fail, specs[2].Overflow)

	assert.Equal(t, corenumerator.Random, specs[3].Strategy)
	assert.Equal(t, corenumerator.RandomConfig{Length: 6, Alphabet: "ABC"}, specs[3].Random)

	for _, spec := range specs {
		assert.NoError(t, spec.Validate(), spec.Name)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("IDFORGE_SERVER_PORT", "9191")
	t.Setenv("IDFORGE_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := []struct {
		name string
		yaml string
	}{
		{"unknown driver", "storage:\n  driver: redis\ntypes:\n  - name: a\n    body: \"[0-9]{3}\"\n"},
		{"postgres without dsn", "storage:\n  driver: postgres\ntypes:\n  - name: a\n    body: \"[0-9]{3}\"\n"},
		{"no types", "storage:\n  driver: memory\n"},
		{"bad port", "server:\n  port: 70000\ntypes:\n  - name: a\n    body: \"[0-9]{3}\"\n"},
		{"negative retries", "numerator:\n  duplicate_retries: -1\ntypes:\n  - name: a\n    body: \"[0-9]{3}\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.True(t, apperror.IsConfiguration(err))
		})
	}
}

func TestTypeConfig_Spec_UnknownNames(t *testing.T) {
	tests := []TypeConfig{
		{Name: "a", CheckDigit: CheckDigitConfig{Kind: "verhoeff"}},
		{Name: "a", Strategy: "shuffled"},
		{Name: "a", Overflow: "saturate"},
	}
	for _, tc := range tests {
		_, err := tc.Spec()
		require.Error(t, err)
		assert.True(t, apperror.IsConfiguration(err))
	}
}
