package microphone

// AudioSession is the host operating system's audio-permission API.
type AudioSession interface {
	// RequestRecordPermission asks the platform for microphone record
	// permission. The platform decides whether a prompt is shown. completion
	// is called exactly once, possibly on another goroutine, with whether
	// permission is granted. The request cannot be canceled once issued.
	RequestRecordPermission(completion func(granted bool))
}

// SessionFunc adapts a function to the AudioSession interface.
type SessionFunc func(completion func(granted bool))

// RequestRecordPermission calls f(completion).
func (f SessionFunc) RequestRecordPermission(completion func(granted bool)) {
	f(completion)
}
