package onion

import (
	"context"
	"sync"

	"github.com/samber/oops"

	"github.com/go-oxen/go-lsrpc/lib/config"
	"github.com/go-oxen/go-lsrpc/lib/path"
	"github.com/go-oxen/go-lsrpc/lib/snode"
	"github.com/go-oxen/go-lsrpc/lib/transport"
	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

// Directory is the minimal seed-client surface the onion client needs.
type Directory interface {
	Fetch(ctx context.Context, limit int) ([]snode.ServiceNode, error)
}

// Sender delivers a built wrapper to its entry hop.
type Sender interface {
	Send(ctx context.Context, entry snode.PathHop, body []byte) (*transport.Response, error)
}

// Client ties the directory, the builder, and the transport together.
// The node list is the only mutable state: Refresh and SetNodes swap
// it atomically under the mutex, so builds racing a refresh observe
// either the pre- or the post-refresh list, never a mix.
type Client struct {
	mu    sync.RWMutex
	nodes []snode.ServiceNode

	cfg       *config.ClientConfig
	builder   *Builder
	directory Directory
	sender    Sender
}

// NewClient builds a client from cfg and its collaborators. A nil
// builder gets the OS-RNG default.
func NewClient(cfg *config.ClientConfig, builder *Builder, dir Directory, sender Sender) (*Client, error) {
	if cfg == nil {
		return nil, oops.Errorf("config cannot be nil")
	}
	if builder == nil {
		builder = NewBuilder(nil)
	}
	return &Client{
		cfg:       cfg,
		builder:   builder,
		directory: dir,
		sender:    sender,
	}, nil
}

// SetNodes replaces the service-node list.
func (c *Client) SetNodes(nodes []snode.ServiceNode) {
	snapshot := make([]snode.ServiceNode, len(nodes))
	copy(snapshot, nodes)
	c.mu.Lock()
	c.nodes = snapshot
	c.mu.Unlock()

	log.WithField("nodes", len(snapshot)).Debug("Service-node list replaced")
}

// Nodes returns the current service-node snapshot.
func (c *Client) Nodes() []snode.ServiceNode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]snode.ServiceNode, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Refresh replaces the node list from the directory.
func (c *Client) Refresh(ctx context.Context) error {
	if c.directory == nil {
		return oops.Errorf("no directory client configured")
	}
	nodes, err := c.directory.Fetch(ctx, c.cfg.Directory.Limit)
	if err != nil {
		return oops.Wrapf(err, "refreshing service-node list")
	}
	c.SetNodes(nodes)
	return nil
}

// Build selects a path from the current node snapshot and constructs
// the onion envelope for payload addressed to dst.
func (c *Client) Build(payload interface{}, dst snode.Destination) (*Envelope, error) {
	hops, err := path.Select(c.builder.rand, c.Nodes(), c.cfg.PathLength)
	if err != nil {
		return nil, err
	}
	return c.builder.Build(payload, dst, hops)
}

// SendRequest builds an envelope and delivers it to the entry hop,
// returning the entry hop's response verbatim.
func (c *Client) SendRequest(ctx context.Context, payload interface{}, dst snode.Destination) (*transport.Response, error) {
	if c.sender == nil {
		return nil, oops.Errorf("no transport configured")
	}
	env, err := c.Build(payload, dst)
	if err != nil {
		return nil, err
	}
	resp, err := c.sender.Send(ctx, env.Entry, env.Bytes)
	if err != nil {
		return nil, err
	}

	log.WithFields(logger.Fields{
		"at":     "SendRequest",
		"status": resp.StatusCode,
	}).Debug("Onion request completed")
	return resp, nil
}
