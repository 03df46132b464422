package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/modhost-project/modhost-go/pkg/log"
)

// DefaultConnectTimeout is the default timeout for establishing a
// connection to a host.
const DefaultConnectTimeout = 10 * time.Second

// ClientConfig configures a control-plane client.
type ClientConfig struct {
	// ConnectTimeout is the timeout for establishing connections
	// (default: 10s).
	ConnectTimeout time.Duration

	// MaxMessageSize is the maximum message size (default: 64KB).
	MaxMessageSize uint32

	// Logger for transport logging (optional).
	Logger log.Logger
}

// Client dials control-plane connections to module hosts.
type Client struct {
	config ClientConfig
}

// NewClient creates a new control-plane client.
func NewClient(config ClientConfig) *Client {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}

	return &Client{
		config: config,
	}
}

// Connect establishes a connection to a host at the given address.
func (c *Client) Connect(address string) (*ClientConn, error) {
	conn, err := net.DialTimeout("tcp", address, c.config.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	framer := NewFramerWithMaxSize(conn, c.config.MaxMessageSize)
	if c.config.Logger != nil {
		framer.SetLogger(c.config.Logger, "")
	}

	return &ClientConn{
		conn:    conn,
		framer:  framer,
		closeCh: make(chan struct{}),
	}, nil
}

// ClientConn represents a connection to a module host.
type ClientConn struct {
	conn    net.Conn
	framer  *Framer
	closeCh chan struct{}

	closeOnce sync.Once
}

// RemoteAddr returns the remote network address.
func (c *ClientConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send sends a message to the host.
func (c *ClientConn) Send(data []byte) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}
	return c.framer.WriteFrame(data)
}

// Receive reads the next message from the host, waiting up to timeout.
// A zero timeout blocks until a message arrives or the connection
// closes.
func (c *ClientConn) Receive(timeout time.Duration) ([]byte, error) {
	select {
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	if timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
		defer c.conn.SetReadDeadline(time.Time{})
	}

	return c.framer.ReadFrame()
}

// Close closes the connection.
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}
