// Package snode holds the data model for the LSRPC onion client: the
// service-node directory entry, the per-request path hop projection,
// and the terminal HTTP destination.
package snode

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/samber/oops"

	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var log = logger.GetLSRPCLogger()

var (
	// ErrInvalidDestination is returned when a Destination fails validation.
	ErrInvalidDestination = errors.New("invalid destination")
	// ErrMalformedKey is returned when a hex key does not decode to 32 bytes.
	ErrMalformedKey = errors.New("malformed key")
)

// ServiceNode is a directory entry as returned by the seed RPC.
// Immutable once observed. The json tags match the field names of the
// get_n_service_nodes response.
type ServiceNode struct {
	PubkeyEd25519  string `json:"pubkey_ed25519"`
	PubkeyX25519   string `json:"pubkey_x25519"`
	PublicIP       string `json:"public_ip"`
	StoragePort    uint16 `json:"storage_port"`
	StorageLMQPort uint16 `json:"storage_lmq_port"`
	SwarmID        uint64 `json:"swarm_id"`
}

// Valid reports whether the node carries the four fields the onion
// builder needs: both keys, a public IP, and a storage port.
func (n ServiceNode) Valid() bool {
	return n.PubkeyEd25519 != "" && n.PubkeyX25519 != "" && n.PublicIP != "" && n.StoragePort != 0
}

// Hop projects the node onto the fields a single request needs.
func (n ServiceNode) Hop() PathHop {
	return PathHop{
		Ed25519Pubkey: n.PubkeyEd25519,
		X25519Pubkey:  n.PubkeyX25519,
		IP:            n.PublicIP,
		Port:          n.StoragePort,
	}
}

// PathHop is a chosen member of an onion path. Lifetime: one request.
type PathHop struct {
	Ed25519Pubkey string
	X25519Pubkey  string
	IP            string
	Port          uint16
}

// X25519Key decodes the hop's X25519 public key from hex.
func (h PathHop) X25519Key() ([]byte, error) {
	return decodeKey(h.X25519Pubkey)
}

// Ed25519Key decodes the hop's Ed25519 identity key from hex.
func (h PathHop) Ed25519Key() ([]byte, error) {
	return decodeKey(h.Ed25519Pubkey)
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		log.WithError(err).WithField("key", s).Error("Key is not valid hex")
		return nil, oops.Wrapf(ErrMalformedKey, "%v", err)
	}
	if len(key) != 32 {
		log.WithField("key_len", len(key)).Error("Key is not 32 bytes")
		return nil, oops.Wrapf(ErrMalformedKey, "decoded to %d bytes", len(key))
	}
	return key, nil
}

// Destination is the terminal HTTP target of an onion request.
type Destination struct {
	Host     string
	Port     uint16
	Protocol string
	Target   string
}

// Validate checks the shape the terminal hop requires: all four fields
// set, protocol http or https, target beginning with "/".
func (d Destination) Validate() error {
	switch {
	case d.Host == "":
		return oops.Wrapf(ErrInvalidDestination, "empty host")
	case d.Port == 0:
		return oops.Wrapf(ErrInvalidDestination, "zero port")
	case d.Protocol != "http" && d.Protocol != "https":
		return oops.Wrapf(ErrInvalidDestination, "protocol %q", d.Protocol)
	case d.Target == "" || !strings.HasPrefix(d.Target, "/"):
		return oops.Wrapf(ErrInvalidDestination, "target %q", d.Target)
	}
	return nil
}
