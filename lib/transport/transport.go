// Package transport delivers onion envelopes to entry hops. Each send
// opens a fresh TLS connection: paths rotate per request, so pooling
// connections across requests would only leak linkage.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"

	"github.com/samber/oops"

	"github.com/go-oxen/go-lsrpc/lib/config"
	"github.com/go-oxen/go-lsrpc/lib/snode"
	"github.com/go-oxen/go-lsrpc/lib/util/logger"
)

var log = logger.GetLSRPCLogger()

// OnionRequestPath is the entry-hop endpoint for v2 onion requests.
const OnionRequestPath = "/onion_req/v2"

var (
	// ErrHTTPStatus is returned for non-2xx responses. Matchable via
	// errors.Is; the concrete error is *StatusError.
	ErrHTTPStatus = errors.New("http status error")
	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrCancelled is returned when the caller's context is cancelled.
	ErrCancelled = errors.New("request cancelled")
)

// StatusError reports a non-2xx entry-hop response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("entry hop returned status %d", e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// Response is the entry hop's HTTP response, surfaced verbatim. The
// body is opaque: no onion decryption happens at this level.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport POSTs onion envelopes to entry hops.
type Transport struct {
	cfg *config.ClientConfig
}

// NewTransport returns a Transport honoring cfg's timeout and TLS
// settings.
func NewTransport(cfg *config.ClientConfig) *Transport {
	return &Transport{cfg: cfg}
}

// publicFQDNPattern matches hostnames that look like public-internet
// domains (at least one dot, alphabetic TLD). Entry hops are addressed
// by IP, which never matches.
var publicFQDNPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// Send POSTs the wrapper bytes to the entry hop and returns its
// response verbatim. The context cancels the request in flight.
func (t *Transport) Send(ctx context.Context, entry snode.PathHop, body []byte) (*Response, error) {
	url := fmt.Sprintf("https://%s%s", net.JoinHostPort(entry.IP, fmt.Sprintf("%d", entry.Port)), OnionRequestPath)

	log.WithFields(logger.Fields{
		"at":       "Send",
		"url":      url,
		"body_len": len(body),
	}).Debug("Sending onion request to entry hop")

	client := t.newClient(entry.IP)
	defer client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, oops.Errorf("building entry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := client.Do(req)
	if err != nil {
		return nil, t.classifySendError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.Errorf("reading entry response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(logger.Fields{
			"at":     "Send",
			"status": resp.StatusCode,
		}).Error("Entry hop returned non-2xx status")
		return nil, &StatusError{Code: resp.StatusCode}
	}

	log.WithFields(logger.Fields{
		"at":       "Send",
		"status":   resp.StatusCode,
		"body_len": len(respBody),
	}).Debug("Entry hop responded")

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// newClient builds a one-shot HTTP client. TLS verification follows
// the config, except that lax TLS toward a public-FQDN host in prod
// mode is refused: verification stays on and a warning is logged.
func (t *Transport) newClient(host string) *http.Client {
	skipVerify := !t.cfg.TLSVerify
	if skipVerify && t.cfg.LogLevel == config.LogLevelProd && publicFQDNPattern.MatchString(host) {
		log.WithField("host", host).Warn("refusing lax TLS toward public FQDN in prod mode")
		skipVerify = false
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: skipVerify,
		},
		DisableKeepAlives: true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   t.cfg.Timeout,
	}
}

// classifySendError maps transport failures onto the error taxonomy,
// preserving the cause.
func (t *Transport) classifySendError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		log.WithError(err).Warn("Onion request cancelled")
		return oops.Wrapf(ErrCancelled, "%v", err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		log.WithError(err).Error("Onion request timed out")
		return oops.Wrapf(ErrTimeout, "%v", err)
	default:
		log.WithError(err).Error("Onion request failed")
		return oops.Errorf("sending onion request: %w", err)
	}
}
