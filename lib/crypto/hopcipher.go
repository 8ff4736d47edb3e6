package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"github.com/awnumar/memguard"
	"github.com/samber/oops"
	"golang.org/x/crypto/curve25519"

	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

const (
	// GCMIVSize is the size of the IV prepended to every sealed blob.
	GCMIVSize = 12
	// GCMTagSize is the size of the GCM authentication tag.
	GCMTagSize = 16
	// minSealedSize is the smallest possible sealed blob: IV plus tag.
	minSealedSize = GCMIVSize + GCMTagSize

	// EncTypeAESGCM is the only cipher the LSRPC scheme supports.
	EncTypeAESGCM = "aes-gcm"
)

// hopKeySalt is the fixed HMAC key for per-hop symmetric key derivation.
var hopKeySalt = []byte("LOKI")

// CheckEncType rejects every enc_type value except aes-gcm.
func CheckEncType(encType string) error {
	if encType != EncTypeAESGCM {
		log.WithField("enc_type", encType).Error("Unsupported enc_type")
		return oops.Wrapf(ErrCipherBackend, "enc_type %q", encType)
	}
	return nil
}

// DeriveHopKey computes the per-hop AES-256-GCM key:
// HMAC-SHA256(key="LOKI", X25519(secret, peerPub)).
// The derivation is direction-agnostic: the sender passes its ephemeral
// secret and the hop's public key, the hop passes its own secret and the
// sender's ephemeral public key, and both arrive at the same key.
// Callers must wipe the returned key when done.
func DeriveHopKey(secret, peerPub []byte) ([]byte, error) {
	if len(secret) != X25519KeySize || len(peerPub) != X25519KeySize {
		log.WithFields(logger.Fields{
			"at":          "DeriveHopKey",
			"secret_len":  len(secret),
			"peerpub_len": len(peerPub),
		}).Error("Invalid key length")
		return nil, oops.Wrapf(ErrInvalidKeyLength, "secret=%d peer=%d", len(secret), len(peerPub))
	}

	shared, err := curve25519.X25519(secret, peerPub)
	if err != nil {
		log.WithError(err).Error("X25519 shared secret computation failed")
		return nil, oops.Wrapf(ErrCipherBackend, "X25519: %v", err)
	}
	defer memguard.WipeBytes(shared)

	mac := hmac.New(sha256.New, hopKeySalt)
	mac.Write(shared)
	key := mac.Sum(nil)

	log.WithField("at", "DeriveHopKey").Debug("Derived per-hop symmetric key")
	return key, nil
}

// Seal encrypts plaintext for the hop holding peerPub, using the sender's
// ephemeral secret scalar. Output layout: IV(12) || ciphertext || tag(16),
// with empty associated data.
func Seal(randReader io.Reader, plaintext, peerPub, secret []byte) ([]byte, error) {
	key, err := DeriveHopKey(secret, peerPub)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, GCMIVSize)
	if _, err := io.ReadFull(randReader, iv); err != nil {
		log.WithError(err).Error("Failed to generate GCM IV")
		return nil, oops.Wrapf(ErrRandomSource, "reading IV: %v", err)
	}

	sealed := aead.Seal(iv, iv, plaintext, nil)

	log.WithFields(logger.Fields{
		"at":             "Seal",
		"plaintext_len":  len(plaintext),
		"ciphertext_len": len(sealed),
	}).Debug("Sealed layer")
	return sealed, nil
}

// Open decrypts a sealed blob produced by Seal. peerPub is the sender's
// ephemeral public key, secret the receiver's X25519 secret. Fails with
// ErrCiphertextShort if the input cannot hold IV and tag, ErrAuthFailed
// if the tag does not verify.
func Open(sealed, peerPub, secret []byte) ([]byte, error) {
	if len(sealed) < minSealedSize {
		log.WithFields(logger.Fields{
			"at":         "Open",
			"sealed_len": len(sealed),
			"min":        minSealedSize,
		}).Error("Sealed blob too short")
		return nil, oops.Wrapf(ErrCiphertextShort, "got %d bytes, need at least %d", len(sealed), minSealedSize)
	}

	key, err := DeriveHopKey(secret, peerPub)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := sealed[:GCMIVSize]
	plaintext, err := aead.Open(nil, iv, sealed[GCMIVSize:], nil)
	if err != nil {
		log.WithError(err).Error("GCM authentication failed")
		return nil, oops.Wrapf(ErrAuthFailed, "%v", err)
	}

	log.WithFields(logger.Fields{
		"at":            "Open",
		"plaintext_len": len(plaintext),
	}).Debug("Opened layer")
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		log.WithError(err).Error("Failed to create AES cipher")
		return nil, oops.Wrapf(ErrCipherBackend, "aes: %v", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		log.WithError(err).Error("Failed to create GCM")
		return nil, oops.Wrapf(ErrCipherBackend, "gcm: %v", err)
	}
	return aead, nil
}
