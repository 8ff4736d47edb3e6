package config

import "time"

// ClientConfig carries every option the onion client recognizes.
type ClientConfig struct {
	// PathLength is the number of hops per request. Must be >= 1.
	PathLength int
	// Timeout bounds each outbound HTTP request.
	Timeout time.Duration
	// TLSVerify enables entry-hop certificate verification. Off by
	// default: operators interoperate with self-signed service-node
	// certificates.
	TLSVerify bool
	// LogLevel is "dev" or "prod".
	LogLevel string
	// Directory configures the seed-node client.
	Directory DirectoryConfig
}

// DirectoryConfig configures the seed-node directory client.
type DirectoryConfig struct {
	// SeedNodes is the ordered list of seed JSON-RPC endpoints.
	SeedNodes []string
	// Rounds is the number of passes over the seed list before
	// giving up.
	Rounds int
	// Backoff is the pause between rounds.
	Backoff time.Duration
	// Limit is the maximum number of nodes to request; 0 means
	// unbounded.
	Limit int
	// Timeout bounds each seed request.
	Timeout time.Duration
}

// LogLevelDev enables debug diagnostics.
const LogLevelDev = "dev"

// LogLevelProd restricts output to warnings and errors.
const LogLevelProd = "prod"
