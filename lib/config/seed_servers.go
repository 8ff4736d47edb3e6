package config

// knownSeedServers is the static ordered list of seed-node JSON-RPC
// endpoints queried to refresh the service-node directory. The order
// matters: Fetch walks the list front to back each round.
var knownSeedServers = []string{
	"https://storage.seed1.loki.network:38157/json_rpc",
	"https://storage.seed3.loki.network:38157/json_rpc",
	"https://public.loki.foundation:38157/json_rpc",
}

// KnownSeedServers returns a copy of the default seed endpoints so
// callers cannot mutate the package list.
func KnownSeedServers() []string {
	out := make([]string, len(knownSeedServers))
	copy(out, knownSeedServers)
	return out
}
