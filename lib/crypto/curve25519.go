package crypto

import (
	"encoding/hex"
	"io"

	"github.com/awnumar/memguard"
	"github.com/samber/oops"
	"golang.org/x/crypto/curve25519"

	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var log = logger.GetLSRPCLogger()

const (
	// X25519KeySize is the size of X25519 public keys and secret scalars.
	X25519KeySize = 32
)

// EphemeralKeyPair is a single-use X25519 keypair. The secret scalar lives
// in a locked buffer and is wiped by Destroy. Never reused across requests.
type EphemeralKeyPair struct {
	pub    [X25519KeySize]byte
	secret *memguard.LockedBuffer
}

// GenerateEphemeralKeyPair generates a fresh X25519 keypair from randReader.
// The private scalar is clamped per the X25519 spec before the public key
// is computed.
func GenerateEphemeralKeyPair(randReader io.Reader) (*EphemeralKeyPair, error) {
	seed := make([]byte, X25519KeySize)
	if _, err := io.ReadFull(randReader, seed); err != nil {
		log.WithError(err).Error("Failed to read ephemeral key seed")
		return nil, oops.Wrapf(ErrRandomSource, "reading ephemeral seed: %v", err)
	}

	// Clamp the private key per X25519 spec
	seed[0] &= 248
	seed[31] &= 127
	seed[31] |= 64

	// NewBufferFromBytes wipes the source slice after copying.
	secret := memguard.NewBufferFromBytes(seed)

	pub, err := curve25519.X25519(secret.Bytes(), curve25519.Basepoint)
	if err != nil {
		secret.Destroy()
		log.WithError(err).Error("Failed to derive ephemeral public key")
		return nil, oops.Wrapf(ErrCipherBackend, "deriving public key: %v", err)
	}

	kp := &EphemeralKeyPair{secret: secret}
	copy(kp.pub[:], pub)

	log.WithField("public_key", kp.PublicHex()).Debug("Generated ephemeral X25519 keypair")
	return kp, nil
}

// Public returns the 32-byte public key.
func (kp *EphemeralKeyPair) Public() []byte {
	return kp.pub[:]
}

// PublicHex returns the public key as 64 lowercase hex characters.
func (kp *EphemeralKeyPair) PublicHex() string {
	return hex.EncodeToString(kp.pub[:])
}

// Secret returns the clamped secret scalar. The slice is only valid until
// Destroy is called.
func (kp *EphemeralKeyPair) Secret() []byte {
	return kp.secret.Bytes()
}

// Destroy wipes the secret scalar. Safe to call more than once.
func (kp *EphemeralKeyPair) Destroy() {
	if kp.secret != nil && kp.secret.IsAlive() {
		kp.secret.Destroy()
	}
}
