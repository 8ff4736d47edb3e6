package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()
}

func TestDefaults(t *testing.T) {
	resetViper(t)

	cfg := NewClientConfigFromViper()
	assert.Equal(t, DefaultPathLength, cfg.PathLength)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultTLSVerify, cfg.TLSVerify)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, KnownSeedServers(), cfg.Directory.SeedNodes)
	assert.Equal(t, DefaultDirectoryRounds, cfg.Directory.Rounds)
	assert.Equal(t, DefaultDirectoryBackoff, cfg.Directory.Backoff)
}

func TestOverrides(t *testing.T) {
	resetViper(t)

	viper.Set("path_length", 5)
	viper.Set("timeout_ms", 2500)
	viper.Set("tls_verify", true)
	viper.Set("log_level", LogLevelProd)
	viper.Set("seed_nodes", []string{"https://seed.example.invalid/json_rpc"})
	viper.Set("directory.rounds", 2)

	cfg := NewClientConfigFromViper()
	assert.Equal(t, 5, cfg.PathLength)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.TLSVerify)
	assert.Equal(t, LogLevelProd, cfg.LogLevel)
	assert.Equal(t, []string{"https://seed.example.invalid/json_rpc"}, cfg.Directory.SeedNodes)
	assert.Equal(t, 2, cfg.Directory.Rounds)
}

func TestSanitization(t *testing.T) {
	resetViper(t)

	viper.Set("path_length", 0)
	viper.Set("log_level", "verbose")
	viper.Set("timeout_ms", -1)
	viper.Set("directory.rounds", 0)

	cfg := NewClientConfigFromViper()
	assert.Equal(t, DefaultPathLength, cfg.PathLength)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultDirectoryRounds, cfg.Directory.Rounds)
}

func TestKnownSeedServers_Copy(t *testing.T) {
	a := KnownSeedServers()
	require.NotEmpty(t, a)
	a[0] = "mutated"
	assert.NotEqual(t, a[0], KnownSeedServers()[0], "callers must not be able to mutate the package list")
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()
	assert.Equal(t, DefaultPathLength, cfg.PathLength)
	assert.NotEmpty(t, cfg.Directory.SeedNodes)
	assert.Equal(t, DefaultTimeout, cfg.Directory.Timeout)
}
