package surface

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/modhost-project/modhost-go/pkg/log"
	"github.com/modhost-project/modhost-go/pkg/transport"
	"github.com/modhost-project/modhost-go/pkg/wire"
)

// DefaultRequestTimeout bounds the wait for a response.
const DefaultRequestTimeout = 10 * time.Second

// StatusError reports a non-success wire status.
type StatusError struct {
	Status wire.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("host returned %s", e.Status)
}

// ClientConfig configures a control surface client.
type ClientConfig struct {
	// Address of the host's control surface. Required.
	Address string

	// WriteToken is sent with Write requests to establish privilege.
	WriteToken string

	// RequestTimeout bounds each request round trip (default: 10s).
	RequestTimeout time.Duration

	// DialTimeout bounds the initial connect including retries
	// (default: transport.DefaultConnectTimeout).
	DialTimeout time.Duration

	// EventLogger for structured event capture (optional).
	EventLogger log.Logger
}

// Client is a request/response client for a host's control surface.
// It issues one request at a time and reconnects with exponential
// backoff when the connection drops.
type Client struct {
	config    ClientConfig
	transport *transport.Client
	messageID atomic.Uint32

	mu   sync.Mutex
	conn *transport.ClientConn
}

// Connect dials the host's control surface.
func Connect(config ClientConfig) (*Client, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = transport.DefaultConnectTimeout
	}

	c := &Client{
		config: config,
		transport: transport.NewClient(transport.ClientConfig{
			Logger: config.EventLogger,
		}),
	}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

// reconnect dials with exponential backoff until DialTimeout elapses.
// Callers must not hold c.mu.
func (c *Client) reconnect() error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = c.config.DialTimeout

	var conn *transport.ClientConn
	err := backoff.Retry(func() error {
		var dialErr error
		conn, dialErr = c.transport.Connect(c.config.Address)
		return dialErr
	}, policy)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.config.Address, err)
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// roundTrip sends a request and waits for the matching response. A
// dropped connection triggers one reconnect-and-retry cycle.
func (c *Client) roundTrip(req *wire.Request) (*wire.Response, error) {
	req.MessageID = c.messageID.Add(1)

	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.exchange(req.MessageID, data)
	if err == nil {
		return resp, nil
	}

	// Retry once on a fresh connection.
	if rerr := c.reconnect(); rerr != nil {
		return nil, err
	}
	return c.exchange(req.MessageID, data)
}

func (c *Client) exchange(messageID uint32, data []byte) (*wire.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, transport.ErrConnectionClosed
	}

	if err := c.conn.Send(data); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.config.RequestTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("timed out waiting for response %d", messageID)
		}

		frame, err := c.conn.Receive(remaining)
		if err != nil {
			return nil, err
		}

		resp, err := wire.DecodeResponse(frame)
		if err != nil {
			return nil, err
		}
		if resp.MessageID != messageID {
			// Stale response from an abandoned request.
			continue
		}
		return resp, nil
	}
}

// List returns the units loaded on the host.
func (c *Client) List() ([]wire.UnitSummary, error) {
	resp, err := c.roundTrip(&wire.Request{Operation: wire.OpList})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Status: resp.Status}
	}

	var payload wire.ListResponsePayload
	if err := wire.DecodePayload(resp.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode list payload: %w", err)
	}
	return payload.Units, nil
}

// Info returns the full description of one unit.
func (c *Client) Info(unit string) (*wire.InfoResponsePayload, error) {
	resp, err := c.roundTrip(&wire.Request{
		Operation: wire.OpInfo,
		Unit:      unit,
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Status: resp.Status}
	}

	var payload wire.InfoResponsePayload
	if err := wire.DecodePayload(resp.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode info payload: %w", err)
	}
	return &payload, nil
}

// Read returns the current value of a unit parameter.
func (c *Client) Read(unit, param string) (int64, error) {
	resp, err := c.roundTrip(&wire.Request{
		Operation: wire.OpRead,
		Unit:      unit,
		Param:     param,
	})
	if err != nil {
		return 0, err
	}
	if !resp.IsSuccess() {
		return 0, &StatusError{Status: resp.Status}
	}

	var payload wire.ReadResponsePayload
	if err := wire.DecodePayload(resp.Payload, &payload); err != nil {
		return 0, fmt.Errorf("failed to decode read payload: %w", err)
	}
	return payload.Value, nil
}

// Write sets a unit parameter and returns the values around the write.
func (c *Client) Write(unit, param string, value int64) (*wire.WriteResponsePayload, error) {
	resp, err := c.roundTrip(&wire.Request{
		Operation: wire.OpWrite,
		Unit:      unit,
		Param:     param,
		Payload:   wire.WritePayload{Value: value},
		Token:     c.config.WriteToken,
	})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{Status: resp.Status}
	}

	var payload wire.WriteResponsePayload
	if err := wire.DecodePayload(resp.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode write payload: %w", err)
	}
	return &payload, nil
}
