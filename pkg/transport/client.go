package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-drift/micbridge/pkg/platform"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client sends method calls to a Server and waits for their replies.
// A Client is safe for concurrent use.
type Client struct {
	ws     *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan []byte

	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// clientConfig holds Dial settings.
type clientConfig struct {
	version string
	header  http.Header
	logger  *zap.Logger
}

// ClientOption configures Dial.
type ClientOption func(*clientConfig)

// WithProtocolVersion overrides the protocol version announced to the server.
func WithProtocolVersion(version string) ClientOption {
	return func(c *clientConfig) {
		c.version = version
	}
}

// WithHeader adds a header to the upgrade request.
func WithHeader(key, value string) ClientOption {
	return func(c *clientConfig) {
		c.header.Add(key, value)
	}
}

// WithClientLogger sets the client logger.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Dial connects to the Server at url (ws:// or wss://). A failed handshake
// wraps platform.ErrNotConnected.
func Dial(ctx context.Context, url string, opts ...ClientOption) (*Client, error) {
	cfg := clientConfig{
		version: ProtocolVersion,
		header:  http.Header{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.header.Set(ProtocolHeader, cfg.version)

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, cfg.header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			if msg := strings.TrimSpace(string(body)); msg != "" {
				return nil, fmt.Errorf("%w: dial %s: %w: %s", platform.ErrNotConnected, url, err, msg)
			}
		}
		return nil, fmt.Errorf("%w: dial %s: %w", platform.ErrNotConnected, url, err)
	}

	c := &Client{
		ws:      ws,
		logger:  cfg.logger.Named("transport.client"),
		pending: make(map[string]chan []byte),
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Invoke sends method with args to channel and waits for the reply. It
// returns the reply's result, platform.ErrMethodNotFound for the
// not-implemented signal, or a *platform.ChannelError. ctx bounds only the
// wait; the remote handler is not canceled.
func (c *Client) Invoke(ctx context.Context, channel, method string, args any) (any, error) {
	payload, err := platform.EncodeMethodCall(method, args)
	if err != nil {
		return nil, fmt.Errorf("encode method call: %w", err)
	}
	frame := Frame{ID: uuid.NewString(), Channel: channel, Payload: payload}
	data, err := platform.DefaultCodec.Encode(frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	replyCh := make(chan []byte, 1)
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return nil, c.err()
	}
	c.pending[frame.ID] = replyCh
	c.mu.Unlock()
	defer c.forget(frame.ID)

	c.writeMu.Lock()
	err = c.ws.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("send %s/%s: %w", channel, method, err)
	}

	select {
	case envelope := <-replyCh:
		return platform.DecodeEnvelope(envelope)
	case <-c.closed:
		return nil, c.err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the connection. Calls still waiting fail with platform.ErrClosed.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.ws.Close()
	c.shutdown(nil)
	return err
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.closed
}

func (c *Client) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}

		var frame Frame
		if err := platform.DefaultCodec.DecodeInto(data, &frame); err != nil {
			c.logger.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}

		c.mu.Lock()
		replyCh := c.pending[frame.ID]
		c.mu.Unlock()
		if replyCh == nil {
			c.logger.Debug("reply for unknown call", zap.String("id", frame.ID))
			continue
		}
		select {
		case replyCh <- frame.Payload:
		default:
		}
	}
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	if c.pending != nil {
		delete(c.pending, id)
	}
	c.mu.Unlock()
}

func (c *Client) shutdown(cause error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.pending = nil
		if cause != nil && !websocket.IsCloseError(cause, websocket.CloseNormalClosure) {
			c.closeErr = fmt.Errorf("%w: %v", platform.ErrClosed, cause)
		} else {
			c.closeErr = platform.ErrClosed
		}
		c.mu.Unlock()
		close(c.closed)
	})
}

func (c *Client) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeErr != nil {
		return c.closeErr
	}
	return platform.ErrClosed
}
