package transport

import (
	"net/http"
	"sync"

	"github.com/go-drift/micbridge/pkg/errors"
	"github.com/go-drift/micbridge/pkg/platform"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MessageHandler routes one encoded method call to a channel.
type MessageHandler func(channel string, data []byte, reply platform.Reply) error

// Server accepts WebSocket connections and routes their frames into method
// channels. It implements http.Handler.
type Server struct {
	upgrader websocket.Upgrader
	handle   MessageHandler
	logger   *zap.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the server logger.
func WithServerLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMessageHandler replaces platform.HandleMessage as the frame router.
func WithMessageHandler(h MessageHandler) ServerOption {
	return func(s *Server) {
		if h != nil {
			s.handle = h
		}
	}
}

// WithCheckOrigin sets the upgrade origin check. The default accepts only
// same-origin requests.
func WithCheckOrigin(check func(r *http.Request) bool) ServerOption {
	return func(s *Server) {
		s.upgrader.CheckOrigin = check
	}
}

// NewServer creates a Server routing into the platform channel registry.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		handle: platform.HandleMessage,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("transport")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := CheckProtocol(r.Header.Get(ProtocolHeader)); err != nil {
		s.logger.Warn("rejected connection", zap.String("remote", r.RemoteAddr), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Warn("failed websocket upgrade", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &serverConn{
		ws:     ws,
		handle: s.handle,
		logger: s.logger.With(zap.String("conn", uuid.NewString())),
	}
	c.logger.Debug("connection opened", zap.String("remote", r.RemoteAddr))
	c.serve()
	c.logger.Debug("connection closed")
}

type serverConn struct {
	ws     *websocket.Conn
	handle MessageHandler
	logger *zap.Logger

	writeMu sync.Mutex
}

// serve reads frames until the connection fails. Each frame is handed off
// without waiting for earlier replies.
func (c *serverConn) serve() {
	defer c.ws.Close()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				errors.Report(&errors.BridgeError{
					Op:   "transport.read",
					Kind: errors.KindTransport,
					Err:  err,
				})
			}
			return
		}

		var frame Frame
		if err := platform.DefaultCodec.DecodeInto(data, &frame); err != nil || frame.ID == "" {
			errors.Report(&errors.BridgeError{
				Op:   "transport.decodeFrame",
				Kind: errors.KindParsing,
				Err:  &errors.ParseError{Channel: frame.Channel, DataType: "Frame", Got: string(data), Err: err},
			})
			continue
		}

		id := frame.ID
		channel := frame.Channel
		c.logger.Debug("frame received", zap.String("id", id), zap.String("channel", channel))
		// Errors are reported by the router and answered through reply.
		_ = c.handle(channel, frame.Payload, func(envelope []byte) {
			c.write(channel, Frame{ID: id, Payload: envelope})
		})
	}
}

func (c *serverConn) write(channel string, frame Frame) {
	data, err := platform.DefaultCodec.Encode(frame)
	if err != nil {
		errors.Report(&errors.BridgeError{
			Op:      "transport.encodeFrame",
			Kind:    errors.KindParsing,
			Channel: channel,
			Err:     err,
		})
		return
	}

	c.writeMu.Lock()
	err = c.ws.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		// The caller is gone; the reply cannot be delivered.
		errors.Report(&errors.BridgeError{
			Op:      "transport.write",
			Kind:    errors.KindTransport,
			Channel: channel,
			Err:     err,
		})
	}
}
