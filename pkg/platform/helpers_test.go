package platform

import (
	"sync"
	"testing"

	"github.com/go-drift/micbridge/pkg/errors"
)

// captureHandler records reported errors.
type captureHandler struct {
	mu     sync.Mutex
	errs   []*errors.BridgeError
	panics []*errors.PanicError
}

func (h *captureHandler) HandleError(err *errors.BridgeError) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *captureHandler) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	h.panics = append(h.panics, err)
	h.mu.Unlock()
}

func (h *captureHandler) errors() []*errors.BridgeError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*errors.BridgeError(nil), h.errs...)
}

func captureErrors(t *testing.T) *captureHandler {
	t.Helper()
	h := &captureHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

// replyRecorder collects envelopes delivered to a Reply.
type replyRecorder struct {
	mu        sync.Mutex
	envelopes [][]byte
}

func (r *replyRecorder) reply(envelope []byte) {
	r.mu.Lock()
	r.envelopes = append(r.envelopes, envelope)
	r.mu.Unlock()
}

func (r *replyRecorder) all() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.envelopes...)
}
