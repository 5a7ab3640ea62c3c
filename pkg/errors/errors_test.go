package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBridgeErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *BridgeError
		want string
	}{
		{
			name: "op only",
			err:  &BridgeError{Op: "test.op", Kind: KindPlatform, Err: fmt.Errorf("boom")},
			want: "test.op [platform]: boom",
		},
		{
			name: "with channel",
			err:  &BridgeError{Op: "test.op", Kind: KindParsing, Channel: "microphone_permission", Err: fmt.Errorf("boom")},
			want: "test.op [parsing] channel=microphone_permission: boom",
		},
		{
			name: "with channel and method",
			err: &BridgeError{
				Op: "test.op", Kind: KindTransport,
				Channel: "microphone_permission", Method: "requestPermission",
				Err: fmt.Errorf("boom"),
			},
			want: "test.op [transport] channel=microphone_permission method=requestPermission: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestBridgeErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	err := &BridgeError{Op: "op", Err: inner}
	assert.ErrorIs(t, err, inner)
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindPlatform, "platform"},
		{KindParsing, "parsing"},
		{KindInit, "init"},
		{KindTransport, "transport"},
		{KindPanic, "panic"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String(), "ErrorKind(%d)", tt.kind)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	assert.Equal(t, "panic: test panic", err.Error())

	err.Op = "platform.handleCall"
	assert.Equal(t, "panic in platform.handleCall: test panic", err.Error())
}

func TestParseErrorString(t *testing.T) {
	err := &ParseError{Channel: "microphone_permission", DataType: "MethodCall", Got: 123}
	assert.Equal(t, "failed to parse MethodCall from channel microphone_permission: got int", err.Error())

	inner := fmt.Errorf("unexpected end of JSON input")
	err = &ParseError{Channel: "c", DataType: "MethodCall", Err: inner}
	assert.Contains(t, err.Error(), "unexpected end of JSON input")
	assert.ErrorIs(t, err, inner)
}

func TestReport(t *testing.T) {
	var captured *BridgeError
	withHandler(t, &testHandler{onError: func(err *BridgeError) { captured = err }})

	Report(&BridgeError{Op: "test.op", Kind: KindInit, Err: fmt.Errorf("x")})

	require.NotNil(t, captured)
	assert.Equal(t, "test.op", captured.Op)
	assert.False(t, captured.Timestamp.IsZero(), "expected Timestamp to be set")
}

func TestReportNil(t *testing.T) {
	called := false
	withHandler(t, &testHandler{onError: func(*BridgeError) { called = true }})
	Report(nil)
	ReportPanic(nil)
	assert.False(t, called)
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	withHandler(t, &testHandler{onPanic: func(err *PanicError) { captured = err }})

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	require.NotNil(t, captured)
	assert.Equal(t, "intentional test panic", captured.Value)
	assert.Equal(t, "test.recover", captured.Op)
	assert.NotEmpty(t, captured.StackTrace)
}

func TestRecoverWithCallback(t *testing.T) {
	withHandler(t, &testHandler{})

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()
	assert.Equal(t, 42, got)
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	require.NotEmpty(t, stack)
	assert.Regexp(t, `testing|runtime`, stack)
}

func TestSetHandlerNil(t *testing.T) {
	old := DefaultHandler
	t.Cleanup(func() { SetHandler(old) })

	SetHandler(nil)
	require.NotNil(t, DefaultHandler)
	assert.IsType(t, &LogHandler{}, DefaultHandler)
}

func TestLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewLogHandler(zap.New(core))
	h.Verbose = true

	h.HandleError(&BridgeError{
		Op:         "platform.HandleMessage",
		Kind:       KindPlatform,
		Channel:    "microphone_permission",
		Method:     "requestPermission",
		Err:        fmt.Errorf("boom"),
		StackTrace: "frame",
	})
	h.HandlePanic(&PanicError{Op: "platform.handleCall", Value: "oops"})
	h.HandleError(nil)
	h.HandlePanic(nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "bridge error", entries[0].Message)
	assert.Equal(t, "platform.HandleMessage", fields["op"])
	assert.Equal(t, "platform", fields["kind"])
	assert.Equal(t, "microphone_permission", fields["channel"])
	assert.Equal(t, "requestPermission", fields["method"])
	assert.Equal(t, "frame", fields["stack"])

	assert.Equal(t, "bridge panic", entries[1].Message)
	assert.Equal(t, "oops", entries[1].ContextMap()["value"])
}

func withHandler(t *testing.T, h ErrorHandler) {
	t.Helper()
	old := DefaultHandler
	SetHandler(h)
	t.Cleanup(func() { SetHandler(old) })
}

type testHandler struct {
	onError func(*BridgeError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *BridgeError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
