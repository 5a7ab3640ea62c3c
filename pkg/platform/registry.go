package platform

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-drift/micbridge/pkg/errors"
)

// channelRegistry manages all registered method channels.
type channelRegistry struct {
	methodChannels map[string]*MethodChannel
	mu             sync.RWMutex
}

var registry = &channelRegistry{
	methodChannels: make(map[string]*MethodChannel),
}

func (r *channelRegistry) registerMethod(name string, ch *MethodChannel) {
	r.mu.Lock()
	r.methodChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) getMethodChannel(name string) *MethodChannel {
	r.mu.RLock()
	ch := r.methodChannels[name]
	r.mu.RUnlock()
	return ch
}

// Channels returns the names of all registered method channels, sorted.
func Channels() []string {
	registry.mu.RLock()
	names := make([]string, 0, len(registry.methodChannels))
	for name := range registry.methodChannels {
		names = append(names, name)
	}
	registry.mu.RUnlock()
	slices.Sort(names)
	return names
}

// HandleMessage routes an encoded method call arriving from a transport to
// the channel registered under channel. reply receives exactly one encoded
// Envelope, possibly after HandleMessage has returned.
//
// A message for an unregistered channel is answered with the not-implemented
// signal and ErrChannelNotFound is returned.
func HandleMessage(channel string, data []byte, reply Reply) error {
	ch := registry.getMethodChannel(channel)
	if ch == nil {
		err := fmt.Errorf("%w: %s", ErrChannelNotFound, channel)
		errors.Report(&errors.BridgeError{
			Op:      "platform.HandleMessage",
			Kind:    errors.KindPlatform,
			Channel: channel,
			Err:     err,
		})
		newResult(channel, "", reply).NotImplemented()
		return err
	}
	ch.handleMessage(data, reply)
	return nil
}

// ResetForTest clears all registered channels and the dispatch function.
// This should only be called from tests.
func ResetForTest() {
	registry.mu.Lock()
	registry.methodChannels = make(map[string]*MethodChannel)
	registry.mu.Unlock()

	RegisterDispatch(nil)
}
