// Package path selects onion paths from the service-node directory.
package path

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/samber/oops"

	"github.com/go-oxen/go-lsrpc/lib/snode"
	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var log = logger.GetLSRPCLogger()

var (
	// ErrZeroLength is returned when a zero-hop path is requested.
	ErrZeroLength = errors.New("path length is zero")
	// ErrInsufficient is returned when fewer valid candidates exist
	// than the requested path length. Matchable via errors.Is; the
	// concrete error is *InsufficientError.
	ErrInsufficient = errors.New("insufficient valid candidates")
)

// InsufficientError reports how many candidates were needed and found.
type InsufficientError struct {
	Need int
	Got  int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient valid candidates: need %d, got %d", e.Need, e.Got)
}

func (e *InsufficientError) Is(target error) bool {
	return target == ErrInsufficient
}

// Select picks n distinct nodes uniformly at random from the valid
// candidates. The first element of the result is the entry hop, the
// last the terminal hop. Duplicate entries in the candidate list are
// each independently eligible; distinctness is by list position.
// Randomness is read from randReader so tests can stub it.
func Select(randReader io.Reader, candidates []snode.ServiceNode, n int) ([]snode.PathHop, error) {
	if n <= 0 {
		log.WithField("n", n).Error("Zero-length path requested")
		return nil, oops.Wrapf(ErrZeroLength, "requested %d hops", n)
	}

	var valid []snode.ServiceNode
	for _, c := range candidates {
		if c.Valid() {
			valid = append(valid, c)
		}
	}
	if len(valid) < n {
		log.WithFields(logger.Fields{
			"at":   "Select",
			"need": n,
			"got":  len(valid),
		}).Error("Not enough valid candidates for path")
		return nil, &InsufficientError{Need: n, Got: len(valid)}
	}

	hops := make([]snode.PathHop, 0, n)
	chosen := make(map[int]bool, n)
	for len(hops) < n {
		idx, err := uniformIndex(randReader, len(valid))
		if err != nil {
			return nil, err
		}
		if chosen[idx] {
			continue
		}
		chosen[idx] = true
		hops = append(hops, valid[idx].Hop())
	}

	log.WithFields(logger.Fields{
		"at":         "Select",
		"hops":       n,
		"candidates": len(valid),
	}).Debug("Selected onion path")
	return hops, nil
}

// uniformIndex draws an unbiased index in [0, k) by rejection sampling
// uniform 32-bit values from randReader.
func uniformIndex(randReader io.Reader, k int) (int, error) {
	bound := uint32(k)
	limit := (^uint32(0) / bound) * bound
	var buf [4]byte
	for {
		if _, err := io.ReadFull(randReader, buf[:]); err != nil {
			return 0, oops.Errorf("reading selection randomness: %w", err)
		}
		v := binary.LittleEndian.Uint32(buf[:])
		if v >= limit {
			continue
		}
		return int(v % bound), nil
	}
}
