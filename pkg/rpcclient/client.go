/*
Package rpcclient implements a JSON-RPC client for the registry node.

Client is an HTTP client for one-shot calls, WSClient extends it with
event subscriptions delivered over a websocket connection.
*/
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nspcc-dev/zkp-registry/pkg/neorpc"
	"go.uber.org/atomic"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 4 * time.Second
)

// Client is a JSON-RPC client of a registry node. It's safe for concurrent
// use.
type Client struct {
	cli      *http.Client
	endpoint *url.URL
	ctx      context.Context
	opts     Options
	// requestF sends the request over HTTP or websocket.
	requestF func(*neorpc.Request) (*neorpc.Response, error)
	lastID   atomic.Uint64
}

// Options defines options for the RPC client. Zero durations are replaced
// with 4 seconds.
type Options struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// MaxConnsPerHost limits the number of connections, zero is unlimited.
	MaxConnsPerHost int
	// UserAgent is sent with HTTP requests if set.
	UserAgent string
}

// New returns a new Client ready to use. ctx bounds every request made by
// the client.
func New(ctx context.Context, endpoint string, opts Options) (*Client, error) {
	cl := new(Client)
	if err := initClient(ctx, cl, endpoint, opts); err != nil {
		return nil, err
	}
	return cl, nil
}

func initClient(ctx context.Context, cl *Client, endpoint string, opts Options) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q", endpoint)
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	cl.ctx = ctx
	cl.endpoint = u
	cl.opts = opts
	cl.cli = &http.Client{
		Transport: &http.Transport{
			DialContext:     (&net.Dialer{Timeout: opts.DialTimeout}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}
	cl.requestF = cl.makeHTTPRequest
	return nil
}

// Endpoint returns the client endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Close closes idle connections.
func (c *Client) Close() {
	c.cli.CloseIdleConnections()
}

// performRequest calls method with params p and unmarshals its result into v.
// Server-side errors are returned as *neorpc.Error.
func (c *Client) performRequest(method string, p []any, v any) error {
	if p == nil {
		p = []any{}
	}
	resp, err := c.requestF(&neorpc.Request{
		JSONRPC: neorpc.JSONRPCVersion,
		Method:  method,
		Params:  p,
		ID:      c.lastID.Inc(),
	})
	switch {
	case resp != nil && resp.Error != nil:
		return resp.Error
	case err != nil:
		return err
	case resp == nil || resp.Result == nil:
		return errors.New("no result returned")
	}
	return json.Unmarshal(resp.Result, v)
}

func (c *Client) makeHTTPRequest(r *neorpc.Request) (*neorpc.Response, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	httpResp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	// Error responses may still carry a JSON-RPC error which is more
	// specific than the status code.
	resp := new(neorpc.Response)
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d/%s", httpResp.StatusCode, http.StatusText(httpResp.StatusCode))
		}
		return nil, fmt.Errorf("JSON decoding: %w", err)
	}
	return resp, nil
}

// Ping attempts to create a connection to the endpoint
// and returns an error if there is any.
func (c *Client) Ping() error {
	conn, err := net.DialTimeout("tcp", c.endpoint.Host, c.opts.DialTimeout)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
