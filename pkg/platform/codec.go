// Package platform provides the named request/response channels that carry
// method calls from an application layer to platform plugins and carry the
// plugins' replies back.
package platform

import (
	"encoding/json"
	"fmt"
)

// JsonCodec encodes and decodes channel messages as JSON.
// JSON prioritizes interoperability and minimal native dependencies.
type JsonCodec struct{}

// Encode serializes the value to JSON bytes.
func (c JsonCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode deserializes JSON bytes to a Go value.
func (c JsonCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeInto deserializes JSON bytes into a specific type.
func (c JsonCodec) DecodeInto(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// DefaultCodec is the codec used by method channels.
var DefaultCodec = JsonCodec{}

// MethodCall is a single named request sent over a method channel.
type MethodCall struct {
	// Method identifies the operation. Matching is exact and case-sensitive.
	Method string `json:"method"`
	// Arguments carries the optional payload. May be nil.
	Arguments any `json:"args"`
}

// Envelope status values.
const (
	StatusSuccess        = "success"
	StatusError          = "error"
	StatusNotImplemented = "notImplemented"
)

// Envelope is the encoded reply to a MethodCall.
type Envelope struct {
	Status string        `json:"status"`
	Result any           `json:"result,omitempty"`
	Error  *ChannelError `json:"error,omitempty"`
}

// successEnvelope keeps Result on the wire even when it is a zero value,
// so that false is distinguishable from an absent result.
type successEnvelope struct {
	Status string `json:"status"`
	Result any    `json:"result"`
}

// EncodeMethodCall encodes a method call.
func EncodeMethodCall(method string, args any) ([]byte, error) {
	return DefaultCodec.Encode(MethodCall{Method: method, Arguments: args})
}

// DecodeMethodCall decodes a method call. A payload without a method field
// decodes to the empty method name, which no handler recognizes.
func DecodeMethodCall(data []byte) (MethodCall, error) {
	var call MethodCall
	if len(data) == 0 {
		return call, fmt.Errorf("%w: empty method call", ErrInvalidArguments)
	}
	if err := DefaultCodec.DecodeInto(data, &call); err != nil {
		return MethodCall{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return call, nil
}

// EncodeSuccess encodes a successful reply carrying result.
func EncodeSuccess(result any) ([]byte, error) {
	return DefaultCodec.Encode(successEnvelope{Status: StatusSuccess, Result: result})
}

// EncodeError encodes an error reply.
func EncodeError(code, message string, details any) ([]byte, error) {
	return DefaultCodec.Encode(Envelope{
		Status: StatusError,
		Error:  NewChannelErrorWithDetails(code, message, details),
	})
}

// EncodeNotImplemented encodes the not-implemented signal.
func EncodeNotImplemented() []byte {
	return []byte(`{"status":"notImplemented"}`)
}

// DecodeEnvelope decodes a reply. It returns the result for a success
// envelope, ErrMethodNotFound for the not-implemented signal, and a
// *ChannelError for an error envelope.
func DecodeEnvelope(data []byte) (any, error) {
	var env Envelope
	if err := DefaultCodec.DecodeInto(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Status {
	case StatusSuccess:
		return env.Result, nil
	case StatusNotImplemented:
		return nil, ErrMethodNotFound
	case StatusError:
		if env.Error == nil {
			return nil, NewChannelError("unknown", "error envelope without error")
		}
		return nil, env.Error
	default:
		return nil, fmt.Errorf("decode envelope: unknown status %q", env.Status)
	}
}
