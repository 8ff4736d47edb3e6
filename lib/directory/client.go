// Package directory refreshes the service-node list from seed nodes.
// Seeds are tried in their configured order; the whole list is retried
// for a bounded number of rounds with a pause between rounds, and the
// first successful response wins.
package directory

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/oops"
	"github.com/ybbus/jsonrpc/v2"
	"golang.org/x/time/rate"

	"github.com/go-oxen/go-lsrpc/lib/config"
	"github.com/go-oxen/go-lsrpc/lib/snode"
	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var log = logger.GetLSRPCLogger()

// ErrExhausted is returned when every seed in every round failed. The
// last per-attempt cause is preserved in the wrap chain.
var ErrExhausted = errors.New("all seed nodes exhausted")

// Client queries seed-node JSON-RPC endpoints for the service-node
// directory.
type Client struct {
	cfg        config.DirectoryConfig
	httpClient *http.Client
}

// NewClient builds a directory client from cfg. Zero-valued timeout
// and rounds fall back to the package defaults.
func NewClient(cfg config.DirectoryConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeout
	}
	if cfg.Rounds < 1 {
		cfg.Rounds = config.DefaultDirectoryRounds
	}
	if len(cfg.SeedNodes) == 0 {
		cfg.SeedNodes = config.KnownSeedServers()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch retrieves up to limit service nodes (0 = unbounded). Seeds are
// walked in order each round; rounds are paced by the configured
// backoff. Returns on the first successful parse; fails with
// ErrExhausted once every round is spent.
func (c *Client) Fetch(ctx context.Context, limit int) ([]snode.ServiceNode, error) {
	// burst 1: the first round starts immediately, each further round
	// waits out the backoff.
	limiter := rate.NewLimiter(rate.Every(c.cfg.Backoff), 1)

	var lastErr error
	for round := 0; round < c.cfg.Rounds; round++ {
		if c.cfg.Backoff > 0 {
			if err := limiter.Wait(ctx); err != nil {
				return nil, oops.Wrapf(ErrExhausted, "cancelled during backoff: %v", err)
			}
		} else if err := ctx.Err(); err != nil {
			return nil, oops.Wrapf(ErrExhausted, "cancelled: %v", err)
		}

		for _, seed := range c.cfg.SeedNodes {
			nodes, err := c.fetchFromSeed(seed, limit)
			if err != nil {
				log.WithError(err).WithFields(logger.Fields{
					"at":    "Fetch",
					"seed":  seed,
					"round": round,
				}).Warn("seed fetch failed")
				lastErr = err
				continue
			}

			log.WithFields(logger.Fields{
				"at":    "Fetch",
				"seed":  seed,
				"round": round,
				"nodes": len(nodes),
			}).Debug("seed fetch succeeded")
			return nodes, nil
		}
	}

	log.WithFields(logger.Fields{
		"at":     "Fetch",
		"rounds": c.cfg.Rounds,
		"seeds":  len(c.cfg.SeedNodes),
	}).Error("every seed failed in every round")
	if lastErr != nil {
		return nil, oops.Errorf("%w: last error: %w", ErrExhausted, lastErr)
	}
	return nil, oops.Wrapf(ErrExhausted, "no seeds configured")
}

// fetchFromSeed issues one get_n_service_nodes call and parses the
// node list.
func (c *Client) fetchFromSeed(endpoint string, limit int) ([]snode.ServiceNode, error) {
	rpcClient := jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient: c.httpClient,
	})

	start := time.Now()
	resp, err := rpcClient.Call(rpcMethod, fetchParams{
		Limit:  limit,
		Fields: requestedFields,
	})
	if err != nil {
		return nil, oops.Errorf("calling %s: %w", endpoint, err)
	}
	if resp.Error != nil {
		return nil, oops.Errorf("seed %s returned rpc error %d: %s", endpoint, resp.Error.Code, resp.Error.Message)
	}

	var result nodeListResult
	if err := resp.GetObject(&result); err != nil {
		return nil, oops.Errorf("parsing %s response: %w", endpoint, err)
	}
	if result.ServiceNodeStates == nil {
		return nil, oops.Errorf("seed %s returned no service_node_states", endpoint)
	}

	log.WithFields(logger.Fields{
		"at":          "fetchFromSeed",
		"seed":        endpoint,
		"nodes":       len(result.ServiceNodeStates),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("parsed seed response")
	return result.ServiceNodeStates, nil
}
