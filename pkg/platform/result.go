package platform

import (
	"fmt"
	"sync/atomic"

	"github.com/go-drift/micbridge/pkg/errors"
)

// Reply receives the encoded Envelope answering one method call.
type Reply func(envelope []byte)

// Result delivers the reply to a single MethodCall. The first call to any of
// its methods wins; later calls are reported as ErrReplyAlreadySent and
// dropped. Result methods may be called from any goroutine.
type Result interface {
	// Success replies with result.
	Success(result any)

	// Error replies with a ChannelError.
	Error(code, message string, details any)

	// NotImplemented replies with the not-implemented signal.
	NotImplemented()
}

type channelResult struct {
	channel string
	method  string
	reply   Reply
	sent    atomic.Bool
}

func newResult(channel, method string, reply Reply) *channelResult {
	return &channelResult{channel: channel, method: method, reply: reply}
}

func (r *channelResult) Success(result any) {
	data, err := EncodeSuccess(result)
	if err != nil {
		r.report(errors.KindParsing, fmt.Errorf("encode result %T: %w", result, err))
		data, _ = EncodeError(CodeInternal, err.Error(), nil)
	}
	r.send(data)
}

func (r *channelResult) Error(code, message string, details any) {
	data, err := EncodeError(code, message, details)
	if err != nil {
		// Details that cannot be encoded are dropped rather than losing the reply.
		r.report(errors.KindParsing, fmt.Errorf("encode error details %T: %w", details, err))
		data, _ = EncodeError(code, message, nil)
	}
	r.send(data)
}

func (r *channelResult) NotImplemented() {
	r.send(EncodeNotImplemented())
}

func (r *channelResult) send(data []byte) {
	if !r.sent.CompareAndSwap(false, true) {
		r.report(errors.KindPlatform, ErrReplyAlreadySent)
		return
	}
	if r.reply == nil {
		return
	}
	reply := r.reply
	Dispatch(func() { reply(data) })
}

func (r *channelResult) report(kind errors.ErrorKind, err error) {
	errors.Report(&errors.BridgeError{
		Op:      "platform.Result",
		Kind:    kind,
		Channel: r.channel,
		Method:  r.method,
		Err:     err,
	})
}
