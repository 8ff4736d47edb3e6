package crypto

import "errors"

var (
	// ErrCiphertextShort is returned by Open when the input cannot hold
	// an IV and a GCM tag.
	ErrCiphertextShort = errors.New("ciphertext too short for IV and tag")
	// ErrAuthFailed is returned by Open when the GCM tag does not verify.
	ErrAuthFailed = errors.New("ciphertext authentication failed")
	// ErrRandomSource is returned when the RNG cannot produce bytes.
	ErrRandomSource = errors.New("random source failure")
	// ErrCipherBackend is returned for unsupported cipher parameters,
	// including any enc_type other than aes-gcm.
	ErrCipherBackend = errors.New("unsupported cipher backend")
	// ErrInvalidKeyLength is returned when a key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("invalid X25519 key length")
)
