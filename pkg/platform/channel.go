package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-drift/micbridge/pkg/errors"
)

// MethodCallHandler handles incoming method calls on a channel. The handler
// must reply exactly once through result, either before returning or later
// from any goroutine.
type MethodCallHandler func(call MethodCall, result Result)

// MethodChannel is a named request/response channel.
type MethodChannel struct {
	name string

	mu      sync.RWMutex
	handler MethodCallHandler
}

// NewMethodChannel creates a method channel with the given name and registers
// it. A later channel with the same name replaces the earlier one.
func NewMethodChannel(name string) *MethodChannel {
	ch := &MethodChannel{name: name}
	registry.registerMethod(name, ch)
	return ch
}

// Name returns the channel name.
func (c *MethodChannel) Name() string {
	return c.name
}

// SetMethodCallHandler sets the handler for incoming method calls, replacing
// any previous handler. A nil handler answers every call as not implemented.
func (c *MethodChannel) SetMethodCallHandler(handler MethodCallHandler) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// Invoke sends a method call to this channel's handler in-process and waits
// for the reply. ctx bounds only the wait: a handler that already started
// keeps running and its late reply is discarded.
func (c *MethodChannel) Invoke(ctx context.Context, method string, args any) (any, error) {
	data, err := EncodeMethodCall(method, args)
	if err != nil {
		return nil, fmt.Errorf("encode method call: %w", err)
	}

	done := make(chan []byte, 1)
	c.handleMessage(data, func(envelope []byte) {
		done <- envelope
	})

	select {
	case envelope := <-done:
		return DecodeEnvelope(envelope)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *MethodChannel) getHandler() MethodCallHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handler
}

// handleMessage decodes an encoded method call and hands it to the handler.
func (c *MethodChannel) handleMessage(data []byte, reply Reply) {
	call, err := DecodeMethodCall(data)
	if err != nil {
		errors.Report(&errors.BridgeError{
			Op:      "platform.handleMessage",
			Kind:    errors.KindParsing,
			Channel: c.name,
			Err: &errors.ParseError{
				Channel:  c.name,
				DataType: "MethodCall",
				Got:      data,
				Err:      err,
			},
		})
		newResult(c.name, "", reply).Error(CodeInvalidArguments, err.Error(), nil)
		return
	}

	result := newResult(c.name, call.Method, reply)
	handler := c.getHandler()
	if handler == nil {
		result.NotImplemented()
		return
	}

	defer errors.RecoverWithCallback("platform.handleMethodCall", func(r any) {
		result.Error(CodeInternal, fmt.Sprintf("handler panic: %v", r), nil)
	})
	handler(call, result)
}
