// Package onion builds multi-layered onion requests for the LSRPC
// transport. Layers are sealed outside-in: the innermost payload frame
// is present in every layer, so construction iterates from the terminal
// hop back to the entry hop, chaining a fresh ephemeral key per layer.
package onion

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"

	"github.com/samber/oops"

	"github.com/go-oxen/go-lsrpc/lib/crypto"
	"github.com/go-oxen/go-lsrpc/lib/frame"
	"github.com/go-oxen/go-lsrpc/lib/snode"
	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var log = logger.GetLSRPCLogger()

var (
	// ErrJSONEncode is returned when a payload or routing record cannot
	// be marshalled.
	ErrJSONEncode = errors.New("json encoding failed")
	// ErrEmptyPath is returned when Build is given no hops.
	ErrEmptyPath = errors.New("empty onion path")
)

// Envelope is the output of a build: the outermost wrapper bytes, the
// entry hop they must be POSTed to, and the ephemeral public key the
// entry hop will use (also embedded in the wrapper metadata).
type Envelope struct {
	Bytes             []byte
	Entry             snode.PathHop
	EntryEphemeralPub []byte
}

// Builder composes onion requests. The randomness source is injectable
// so tests can supply deterministic byte streams; the zero value is not
// usable, construct with NewBuilder.
type Builder struct {
	rand io.Reader
}

// NewBuilder returns a Builder reading randomness from randReader, or
// from the OS RNG when randReader is nil.
func NewBuilder(randReader io.Reader) *Builder {
	if randReader == nil {
		randReader = cryptorand.Reader
	}
	return &Builder{rand: randReader}
}

// Build constructs the layered request for payload addressed to dst
// through hops. hops[0] is the entry hop, hops[len-1] the terminal hop.
// Every ephemeral secret generated during the build is wiped before
// Build returns, on success and failure alike. No partial envelope is
// ever returned.
func (b *Builder) Build(payload interface{}, dst snode.Destination, hops []snode.PathHop) (*Envelope, error) {
	if len(hops) == 0 {
		return nil, oops.Wrapf(ErrEmptyPath, "no hops")
	}
	if err := dst.Validate(); err != nil {
		log.WithError(err).Error("Destination failed validation")
		return nil, err
	}

	blob, err := b.encodePayloadFrame(payload)
	if err != nil {
		return nil, err
	}

	// The final ephemeral pair identifies the request toward the
	// terminal hop. Its public key seeds the chain; the first loop
	// iteration (the terminal layer) replaces it, since terminal
	// routing carries the destination address instead of a key.
	finalKP, err := crypto.GenerateEphemeralKeyPair(b.rand)
	if err != nil {
		return nil, oops.Wrapf(err, "generating final ephemeral keypair")
	}
	defer finalKP.Destroy()
	nextEphPub := finalKP.Public()

	for i := len(hops) - 1; i >= 0; i-- {
		blob, nextEphPub, err = b.sealLayer(blob, nextEphPub, i, hops, dst)
		if err != nil {
			return nil, err
		}
	}

	meta, err := marshalRoute(outerMeta{
		EphemeralKey: hex.EncodeToString(nextEphPub),
		EncType:      crypto.EncTypeAESGCM,
	})
	if err != nil {
		return nil, err
	}
	wrapper := frame.Encode(blob, meta)

	log.WithFields(logger.Fields{
		"at":          "Build",
		"hops":        len(hops),
		"wrapper_len": len(wrapper),
		"entry_ip":    hops[0].IP,
	}).Debug("Built onion envelope")

	return &Envelope{
		Bytes:             wrapper,
		Entry:             hops[0],
		EntryEphemeralPub: nextEphPub,
	}, nil
}

// encodePayloadFrame produces the innermost frame: the JSON payload
// with the minimal {"headers":{}} route annotation.
func (b *Builder) encodePayloadFrame(payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("Payload is not encodable JSON")
		return nil, oops.Wrapf(ErrJSONEncode, "payload: %v", err)
	}
	route, err := marshalRoute(innerRoute{Headers: map[string]string{}})
	if err != nil {
		return nil, err
	}
	return frame.Encode(payloadBytes, route), nil
}

// sealLayer wraps blob in the layer addressed to hops[i]: a fresh
// ephemeral keypair, the routing record for this position, and an
// AES-GCM seal under the hop's X25519 key. Returns the sealed blob and
// the ephemeral public key the preceding layer must advertise.
func (b *Builder) sealLayer(blob, nextEphPub []byte, i int, hops []snode.PathHop, dst snode.Destination) ([]byte, []byte, error) {
	hopKP, err := crypto.GenerateEphemeralKeyPair(b.rand)
	if err != nil {
		return nil, nil, oops.Wrapf(err, "generating ephemeral keypair for hop %d", i)
	}
	defer hopKP.Destroy()

	routing, err := b.routingFor(i, hops, dst, nextEphPub)
	if err != nil {
		return nil, nil, err
	}

	layerPlain := frame.Encode(blob, routing)

	peerPub, err := hops[i].X25519Key()
	if err != nil {
		return nil, nil, oops.Wrapf(err, "hop %d X25519 key", i)
	}

	sealed, err := crypto.Seal(b.rand, layerPlain, peerPub, hopKP.Secret())
	if err != nil {
		return nil, nil, oops.Wrapf(err, "sealing layer for hop %d", i)
	}

	pub := make([]byte, crypto.X25519KeySize)
	copy(pub, hopKP.Public())
	return sealed, pub, nil
}

// routingFor builds the routing record for position i: the terminal
// hop carries the HTTP destination, every other hop addresses its
// successor by Ed25519 identity and advertises the successor's
// ephemeral key.
func (b *Builder) routingFor(i int, hops []snode.PathHop, dst snode.Destination, nextEphPub []byte) ([]byte, error) {
	if i == len(hops)-1 {
		return marshalRoute(terminalRoute{
			Host:     dst.Host,
			Port:     dst.Port,
			Protocol: dst.Protocol,
			Target:   dst.Target,
		})
	}
	return marshalRoute(relayRoute{
		Destination:  hops[i+1].Ed25519Pubkey,
		EphemeralKey: hex.EncodeToString(nextEphPub),
		EncType:      crypto.EncTypeAESGCM,
	})
}

func marshalRoute(v interface{}) ([]byte, error) {
	out, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("Routing record is not encodable JSON")
		return nil, oops.Wrapf(ErrJSONEncode, "routing: %v", err)
	}
	return out, nil
}
