package config

import "time"

// Defaults for the onion client. Centralized so they are easy to
// discover and modify.
const (
	// DefaultPathLength is the number of hops per request.
	DefaultPathLength = 3

	// DefaultTimeout bounds each outbound HTTP request (transport and
	// directory alike).
	DefaultTimeout = 10 * time.Second

	// DefaultTLSVerify is off: service nodes present self-signed
	// certificates in development deployments.
	DefaultTLSVerify = false

	// DefaultLogLevel is the development level.
	DefaultLogLevel = LogLevelDev

	// DefaultDirectoryRounds is the number of passes over the seed
	// list before Fetch gives up.
	DefaultDirectoryRounds = 5

	// DefaultDirectoryBackoff is the pause between seed rounds.
	DefaultDirectoryBackoff = 10 * time.Second

	// DefaultDirectoryLimit requests the full node list.
	DefaultDirectoryLimit = 0
)

// DefaultClientConfig returns a ClientConfig populated with defaults
// and the known seed servers.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		PathLength: DefaultPathLength,
		Timeout:    DefaultTimeout,
		TLSVerify:  DefaultTLSVerify,
		LogLevel:   DefaultLogLevel,
		Directory: DirectoryConfig{
			SeedNodes: KnownSeedServers(),
			Rounds:    DefaultDirectoryRounds,
			Backoff:   DefaultDirectoryBackoff,
			Limit:     DefaultDirectoryLimit,
			Timeout:   DefaultTimeout,
		},
	}
}
