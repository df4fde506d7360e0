package rtnl

import "errors"

var (
	// ErrMalformedBatch means a message header in a received buffer declared a
	// length that does not fit. Nothing after it in that buffer can be trusted.
	ErrMalformedBatch = errors.New("malformed netlink batch")

	// ErrMalformedMessage means a single link message was too short to hold
	// its interface info header. Only that message is skipped.
	ErrMalformedMessage = errors.New("malformed link message")
)

// DiagnosticKind names the class of a reported decoding problem.
type DiagnosticKind string

const (
	MalformedBatch   DiagnosticKind = "batch"
	MalformedMessage DiagnosticKind = "message"
)

// Diagnostic describes data that was dropped while decoding.
type Diagnostic struct {
	Kind DiagnosticKind
	// Interface is empty when the name could not be decoded.
	Interface string
	Reason    string
	Err       error
}

func newDiagnostic(kind DiagnosticKind, err error) Diagnostic {
	return Diagnostic{
		Kind:   kind,
		Reason: err.Error(),
		Err:    err,
	}
}
