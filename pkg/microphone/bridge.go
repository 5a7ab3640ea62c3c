// Package microphone exposes the platform microphone-permission prompt to an
// application layer over a method channel.
//
// The bridge is a pass-through: it matches the method name, asks the
// AudioSession once, and replies with the boolean the platform reports. The
// platform owns the permission state, the prompt and its timing.
package microphone

import (
	"github.com/go-drift/micbridge/pkg/platform"
	"go.uber.org/zap"
)

const (
	// ChannelName is the well-known channel callers address.
	ChannelName = "microphone_permission"

	// MethodRequestPermission asks the platform for record permission and
	// replies with a bool.
	MethodRequestPermission = "requestPermission"
)

// PermissionBridge relays requestPermission calls to an AudioSession.
// It keeps no state between calls; concurrent calls are neither serialized
// nor queued.
type PermissionBridge struct {
	session AudioSession
	logger  *zap.Logger
	metrics *Metrics
}

// Option configures a PermissionBridge.
type Option func(*PermissionBridge)

// WithLogger sets the logger used for debug tracing of calls.
func WithLogger(logger *zap.Logger) Option {
	return func(b *PermissionBridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics records call outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(b *PermissionBridge) {
		b.metrics = m
	}
}

// NewPermissionBridge creates a bridge backed by session.
func NewPermissionBridge(session AudioSession, opts ...Option) *PermissionBridge {
	b := &PermissionBridge{
		session: session,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named("microphone")
	return b
}

// Register binds the bridge as the sole handler of ChannelName.
func (b *PermissionBridge) Register(registrar platform.Registrar) {
	channel := registrar.NewMethodChannel(ChannelName)
	registrar.AddMethodCallDelegate(b, channel)
	b.logger.Debug("registered", zap.String("channel", ChannelName))
}

// HandleMethodCall implements platform.MethodCallDelegate.
func (b *PermissionBridge) HandleMethodCall(call platform.MethodCall, result platform.Result) {
	if call.Method != MethodRequestPermission {
		b.logger.Debug("method not implemented", zap.String("method", call.Method))
		b.metrics.observe(call.Method, outcomeNotImplemented)
		result.NotImplemented()
		return
	}

	b.metrics.requestStarted()
	b.logger.Debug("requesting record permission")
	b.session.RequestRecordPermission(func(granted bool) {
		b.metrics.requestFinished()
		b.metrics.observe(call.Method, outcomeFor(granted))
		b.logger.Debug("record permission resolved", zap.Bool("granted", granted))
		result.Success(granted)
	})
}
