package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/go-oxen/go-lsrpc/lib/util"
	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var (
	// CfgFile is the config file path given on the command line, if any.
	CfgFile string
	log     = logger.GetLSRPCLogger()
)

const LSRPC_BASE_DIR = ".go-lsrpc"

// InitConfig wires viper: explicit --config file if given, otherwise
// $HOME/.go-lsrpc/config.yaml, created with defaults on first run.
func InitConfig() {
	if CfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(CfgFile)
	} else {
		viper.AddConfigPath(BuildLSRPCDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	handleConfigFile()
}

func setDefaults() {
	viper.SetDefault("path_length", DefaultPathLength)
	viper.SetDefault("timeout_ms", int(DefaultTimeout/time.Millisecond))
	viper.SetDefault("tls_verify", DefaultTLSVerify)
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("seed_nodes", KnownSeedServers())
	viper.SetDefault("directory.rounds", DefaultDirectoryRounds)
	viper.SetDefault("directory.backoff_ms", int(DefaultDirectoryBackoff/time.Millisecond))
	viper.SetDefault("directory.limit", DefaultDirectoryLimit)
}

// NewClientConfigFromViper builds a ClientConfig from current viper
// settings. This is the preferred accessor; there is no global config.
func NewClientConfigFromViper() *ClientConfig {
	seeds := viper.GetStringSlice("seed_nodes")
	if len(seeds) == 0 {
		seeds = KnownSeedServers()
	}

	timeout := time.Duration(viper.GetInt("timeout_ms")) * time.Millisecond
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	cfg := &ClientConfig{
		PathLength: viper.GetInt("path_length"),
		Timeout:    timeout,
		TLSVerify:  viper.GetBool("tls_verify"),
		LogLevel:   viper.GetString("log_level"),
		Directory: DirectoryConfig{
			SeedNodes: seeds,
			Rounds:    viper.GetInt("directory.rounds"),
			Backoff:   time.Duration(viper.GetInt("directory.backoff_ms")) * time.Millisecond,
			Limit:     viper.GetInt("directory.limit"),
			Timeout:   timeout,
		},
	}

	if cfg.PathLength < 1 {
		log.WithField("path_length", cfg.PathLength).Warn("path_length below 1, using default")
		cfg.PathLength = DefaultPathLength
	}
	if cfg.LogLevel != LogLevelDev && cfg.LogLevel != LogLevelProd {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log_level, using default")
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Directory.Rounds < 1 {
		cfg.Directory.Rounds = DefaultDirectoryRounds
	}

	return cfg
}

func createDefaultConfig(defaultConfigDir string) {
	defaultConfigFile := filepath.Join(defaultConfigDir, "config.yaml")
	// Ensure directory exists
	if err := os.MkdirAll(defaultConfigDir, 0o755); err != nil {
		log.Fatalf("Could not create config directory: %s", err)
	}

	// Write current config file
	if err := viper.SafeWriteConfigAs(defaultConfigFile); err != nil {
		log.Fatalf("Could not write default config file: %s", err)
	}

	log.Debugf("Created default configuration at: %s", defaultConfigFile)
}

func handleConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if CfgFile != "" {
				log.Fatalf("Config file %s is not found: %s", CfgFile, err)
			} else {
				createDefaultConfig(BuildLSRPCDirPath())
			}
		} else {
			log.Fatalf("Error reading config file: %s", err)
		}
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func BuildLSRPCDirPath() string {
	return filepath.Join(util.UserHome(), LSRPC_BASE_DIR)
}
