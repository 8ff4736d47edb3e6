package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqReader yields an incrementing byte stream so key and IV material
// is reproducible across test runs.
type seqReader struct {
	next byte
}

func (r *seqReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

// errReader fails every read.
type errReader struct{}

func (errReader) Read(p []byte) (int, error) {
	return 0, errors.New("rng broken")
}

func TestGenerateEphemeralKeyPair_Clamping(t *testing.T) {
	kp, err := GenerateEphemeralKeyPair(&seqReader{})
	require.NoError(t, err)
	defer kp.Destroy()

	secret := kp.Secret()
	require.Len(t, secret, X25519KeySize)
	assert.Equal(t, byte(0), secret[0]&7, "low bits must be cleared")
	assert.Equal(t, byte(0), secret[31]&128, "high bit must be cleared")
	assert.Equal(t, byte(64), secret[31]&64, "second-highest bit must be set")
	assert.Len(t, kp.Public(), X25519KeySize)
	assert.Len(t, kp.PublicHex(), 64)
}

func TestGenerateEphemeralKeyPair_RNGFailure(t *testing.T) {
	kp, err := GenerateEphemeralKeyPair(errReader{})
	assert.Nil(t, kp)
	assert.ErrorIs(t, err, ErrRandomSource)
}

func TestDeriveHopKey_Symmetry(t *testing.T) {
	a, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer a.Destroy()
	b, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer b.Destroy()

	k1, err := DeriveHopKey(a.Secret(), b.Public())
	require.NoError(t, err)
	k2, err := DeriveHopKey(b.Secret(), a.Public())
	require.NoError(t, err)

	assert.Equal(t, k1, k2, "both directions must derive the same key")
	assert.Len(t, k1, 32)
}

func TestDeriveHopKey_BadLengths(t *testing.T) {
	_, err := DeriveHopKey(make([]byte, 31), make([]byte, 32))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
	_, err = DeriveHopKey(make([]byte, 32), make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	sender, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer sender.Destroy()
	hop, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer hop.Destroy()

	plaintext := []byte("u32 frame with routing tail")
	sealed, err := Seal(rand.Reader, plaintext, hop.Public(), sender.Secret())
	require.NoError(t, err)

	// IV + plaintext + tag
	assert.Equal(t, GCMIVSize+len(plaintext)+GCMTagSize, len(sealed))

	opened, err := Open(sealed, sender.Public(), hop.Secret())
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestSeal_DeterministicIV(t *testing.T) {
	sender, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer sender.Destroy()
	hop, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer hop.Destroy()

	rng := &seqReader{}
	sealed, err := Seal(rng, []byte("x"), hop.Public(), sender.Secret())
	require.NoError(t, err)

	wantIV := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	assert.True(t, bytes.Equal(sealed[:GCMIVSize], wantIV), "IV must come from the injected RNG")
}

func TestOpen_ShortInput(t *testing.T) {
	hop, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer hop.Destroy()

	_, err = Open(make([]byte, minSealedSize-1), hop.Public(), hop.Secret())
	assert.ErrorIs(t, err, ErrCiphertextShort)
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	sender, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer sender.Destroy()
	hop, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer hop.Destroy()

	sealed, err := Seal(rand.Reader, []byte("payload"), hop.Public(), sender.Secret())
	require.NoError(t, err)

	// flip one bit anywhere in the GCM body
	sealed[GCMIVSize] ^= 0x01
	_, err = Open(sealed, sender.Public(), hop.Secret())
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestOpen_WrongKey(t *testing.T) {
	sender, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer sender.Destroy()
	hop, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer hop.Destroy()
	other, err := GenerateEphemeralKeyPair(rand.Reader)
	require.NoError(t, err)
	defer other.Destroy()

	sealed, err := Seal(rand.Reader, []byte("payload"), hop.Public(), sender.Secret())
	require.NoError(t, err)

	_, err = Open(sealed, sender.Public(), other.Secret())
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestCheckEncType(t *testing.T) {
	assert.NoError(t, CheckEncType(EncTypeAESGCM))
	assert.ErrorIs(t, CheckEncType("xchacha20"), ErrCipherBackend)
	assert.ErrorIs(t, CheckEncType(""), ErrCipherBackend)
}
