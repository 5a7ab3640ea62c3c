// Package transport carries method channel traffic between processes over a
// WebSocket connection.
//
// Each request frame holds one encoded MethodCall addressed to a channel; the
// matching reply frame holds the encoded Envelope and the same id. Replies are
// written as the handlers produce them, so they may arrive in any order.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// ProtocolHeader carries the client's protocol version on the upgrade request.
const ProtocolHeader = "X-Micbridge-Protocol"

// ProtocolVersion is the frame protocol spoken by this package.
const ProtocolVersion = "v1.0.0"

// ErrProtocolMismatch is returned when peers speak incompatible protocol versions.
var ErrProtocolMismatch = errors.New("transport: protocol version mismatch")

// Frame is the unit sent over the connection.
type Frame struct {
	// ID correlates a reply with its request.
	ID string `json:"id"`
	// Channel names the method channel. Empty on replies.
	Channel string `json:"channel,omitempty"`
	// Payload is an encoded MethodCall (request) or Envelope (reply).
	Payload json.RawMessage `json:"payload"`
}

// CheckProtocol verifies that version is compatible with ProtocolVersion.
// Versions are compatible when their semver majors match. An empty version
// is treated as ProtocolVersion so that plain WebSocket tools can connect.
func CheckProtocol(version string) error {
	if version == "" {
		return nil
	}
	if !semver.IsValid(version) {
		return fmt.Errorf("%w: invalid version %q", ErrProtocolMismatch, version)
	}
	if semver.Major(version) != semver.Major(ProtocolVersion) {
		return fmt.Errorf("%w: peer speaks %s, want %s.x", ErrProtocolMismatch, version, semver.Major(ProtocolVersion))
	}
	return nil
}
