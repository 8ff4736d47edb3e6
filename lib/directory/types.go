package directory

import "github.com/go-oxen/go-lsrpc/lib/snode"

// rpcMethod is the seed-node call that lists active service nodes.
const rpcMethod = "get_n_service_nodes"

// fetchParams is the params object of a get_n_service_nodes call. The
// fields map selects which attributes the seed includes per node.
type fetchParams struct {
	Limit  int             `json:"limit,omitempty"`
	Fields map[string]bool `json:"fields"`
}

// requestedFields are the service-node attributes the client consumes.
var requestedFields = map[string]bool{
	"public_ip":        true,
	"storage_port":     true,
	"pubkey_x25519":    true,
	"pubkey_ed25519":   true,
	"storage_lmq_port": true,
	"swarm_id":         true,
}

// nodeListResult is the result object of a get_n_service_nodes reply.
type nodeListResult struct {
	ServiceNodeStates []snode.ServiceNode `json:"service_node_states"`
}
