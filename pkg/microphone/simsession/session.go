package simsession

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/micbridge/pkg/errors"
	"go.uber.org/zap"
)

// Session implements microphone.AudioSession against a Store and a Prompter.
type Session struct {
	store    Store
	prompter Prompter
	logger   *zap.Logger
	now      func() time.Time

	// mu serializes decisions: one dialog at a time, and requests that
	// arrive while a dialog is open see its outcome.
	mu sync.Mutex
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates a Session.
func New(store Store, prompter Prompter, opts ...Option) *Session {
	s := &Session{
		store:    store,
		prompter: prompter,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("simsession")
	return s
}

// RequestRecordPermission resolves on a new goroutine and calls completion
// exactly once.
func (s *Session) RequestRecordPermission(completion func(granted bool)) {
	go func() {
		completion(s.decide())
	}()
}

func (s *Session) decide() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Load()
	if err != nil {
		s.report("simsession.load", err)
		return false
	}
	if rec.Microphone.Determined() {
		s.logger.Debug("permission already determined", zap.String("state", string(rec.Microphone)))
		return rec.Microphone.Granted()
	}

	s.logger.Debug("prompting for microphone permission")
	granted, err := s.prompter.PromptRecordPermission()
	if err != nil {
		// The state stays undetermined so the next request prompts again.
		s.report("simsession.prompt", err)
		return false
	}

	rec = Record{Microphone: stateFor(granted), UpdatedAt: s.now().UTC()}
	if err := s.store.Save(rec); err != nil {
		s.report("simsession.save", err)
	}
	s.logger.Info("microphone permission decided", zap.String("state", string(rec.Microphone)))
	return granted
}

// Status returns the current permission state without prompting.
func (s *Session) Status() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.store.Load()
	if err != nil {
		return "", err
	}
	return rec.Microphone, nil
}

// Set forces the permission state, as a device-management profile or a user
// toggling system settings would.
func (s *Session) Set(state State) error {
	state, err := ParseState(string(state))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(Record{Microphone: state, UpdatedAt: s.now().UTC()}); err != nil {
		return fmt.Errorf("set permission state: %w", err)
	}
	return nil
}

// Reset returns the permission to StateNotDetermined so the next request
// prompts again.
func (s *Session) Reset() error {
	return s.Set(StateNotDetermined)
}

func (s *Session) report(op string, err error) {
	errors.Report(&errors.BridgeError{
		Op:   op,
		Kind: errors.KindPlatform,
		Err:  err,
	})
}
