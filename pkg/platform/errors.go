package platform

import "errors"

// Standard errors for channel operations.
var (
	// ErrChannelNotFound indicates the requested channel is not registered.
	ErrChannelNotFound = errors.New("platform channel not found")

	// ErrMethodNotFound is the not-implemented signal: the channel handler
	// does not recognize the method.
	ErrMethodNotFound = errors.New("method not implemented")

	// ErrInvalidArguments indicates the call could not be decoded.
	ErrInvalidArguments = errors.New("invalid arguments")

	// ErrPlatformUnavailable indicates the platform feature is not available
	// on this host (e.g., no audio framework, cgo disabled).
	ErrPlatformUnavailable = errors.New("platform feature unavailable")

	// ErrReplyAlreadySent is reported when a handler replies more than once.
	ErrReplyAlreadySent = errors.New("reply already sent")

	// ErrClosed is returned when operating on a closed channel or connection.
	ErrClosed = errors.New("platform: channel closed")

	// ErrNotConnected is returned when no connection to the bridge exists.
	ErrNotConnected = errors.New("platform: not connected")
)

// Error codes carried in ChannelError.Code.
const (
	CodeInvalidArguments = "invalid_arguments"
	CodeInternal         = "internal"
)

// ChannelError represents an error reply sent over a channel.
type ChannelError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *ChannelError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// NewChannelError creates a new ChannelError with the given code and message.
func NewChannelError(code, message string) *ChannelError {
	return &ChannelError{Code: code, Message: message}
}

// NewChannelErrorWithDetails creates a new ChannelError with additional details.
func NewChannelErrorWithDetails(code, message string, details any) *ChannelError {
	return &ChannelError{Code: code, Message: message, Details: details}
}
