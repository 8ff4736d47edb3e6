// Package frame implements the length-prefixed layer container used at
// every level of an onion request: u32_LE(size) || inner || tail. The
// tail carries the UTF-8 JSON routing block for the hop that decrypts
// the layer.
package frame

import (
	"encoding/binary"
	"errors"

	"github.com/samber/oops"

	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var log = logger.GetLSRPCLogger()

const (
	// sizePrefixLen is the length of the little-endian size prefix.
	sizePrefixLen = 4
	// MaxInnerSize caps the declared inner size at decode. The format
	// itself imposes no limit; the cap resists abusive inputs.
	MaxInnerSize = 10 * 1024 * 1024
)

var (
	// ErrTruncated is returned when a buffer is shorter than its
	// declared inner size.
	ErrTruncated = errors.New("frame truncated")
	// ErrTooLarge is returned when the declared inner size exceeds
	// MaxInnerSize.
	ErrTooLarge = errors.New("frame inner size too large")
)

// Encode concatenates u32_LE(len(inner)) || inner || tail.
func Encode(inner, tail []byte) []byte {
	out := make([]byte, sizePrefixLen+len(inner)+len(tail))
	binary.LittleEndian.PutUint32(out, uint32(len(inner)))
	copy(out[sizePrefixLen:], inner)
	copy(out[sizePrefixLen+len(inner):], tail)

	log.WithFields(logger.Fields{
		"at":        "Encode",
		"inner_len": len(inner),
		"tail_len":  len(tail),
	}).Debug("Encoded frame")
	return out
}

// Decode splits a frame into its inner blob and tail. The returned
// slices alias buf.
func Decode(buf []byte) (inner, tail []byte, err error) {
	if len(buf) < sizePrefixLen {
		log.WithField("buf_len", len(buf)).Error("Frame shorter than size prefix")
		return nil, nil, oops.Wrapf(ErrTruncated, "got %d bytes, need at least %d", len(buf), sizePrefixLen)
	}
	size := binary.LittleEndian.Uint32(buf)
	if size > MaxInnerSize {
		log.WithField("inner_size", size).Error("Frame inner size over cap")
		return nil, nil, oops.Wrapf(ErrTooLarge, "declared %d bytes, cap %d", size, MaxInnerSize)
	}
	if uint64(len(buf)) < uint64(sizePrefixLen)+uint64(size) {
		log.WithFields(logger.Fields{
			"at":         "Decode",
			"buf_len":    len(buf),
			"inner_size": size,
		}).Error("Frame truncated")
		return nil, nil, oops.Wrapf(ErrTruncated, "declared %d bytes, have %d", size, len(buf)-sizePrefixLen)
	}

	inner = buf[sizePrefixLen : sizePrefixLen+size]
	tail = buf[sizePrefixLen+size:]
	return inner, tail, nil
}
