//go:build !darwin || !cgo

package microphone

import (
	"fmt"
	"runtime"

	"github.com/go-drift/micbridge/pkg/platform"
)

// NewNativeSession reports that no native audio-permission API exists on
// this host (not darwin, or built without cgo). Use the simulated session
// from package simsession instead.
func NewNativeSession() (AudioSession, error) {
	return nil, fmt.Errorf("microphone permission on %s: %w", runtime.GOOS, platform.ErrPlatformUnavailable)
}
