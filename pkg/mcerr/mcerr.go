// Package mcerr defines the error taxonomy shared by every layer of the
// world/wire-protocol core: wire decode failures, compression/crypto setup
// failures, protocol-level violations, registry construction bugs, chunk
// shape mismatches, server disconnects, and plain network I/O errors.
//
// Callers distinguish kinds with errors.Is against the sentinel values
// below; call sites attach context with github.com/pkg/errors so a
// diagnostic chain survives up to the packet handler that closes the
// connection.
package mcerr

import "github.com/pkg/errors"

// Sentinel kinds. Use errors.Is(err, mcerr.WireFormat) etc. to classify.
var (
	WireFormat  = errors.New("wire format error")
	Compression = errors.New("compression error")
	Crypto      = errors.New("crypto error")
	Protocol    = errors.New("protocol error")
	Registry    = errors.New("registry error")
	ChunkShape  = errors.New("chunk shape error")
	Disconnect  = errors.New("disconnect")
	Network     = errors.New("network error")
)

// Wrap attaches msg to err and tags it with kind so errors.Is(result, kind)
// succeeds while the original cause remains reachable via errors.Cause.
func Wrap(kind error, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, cause: errors.Wrap(err, msg)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind error, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, cause: errors.Wrapf(err, format, args...)}
}

// New creates a fresh error of the given kind with a message, no wrapped cause.
func New(kind error, msg string) error {
	return &kindError{kind: kind, cause: errors.New(msg)}
}

// Newf is New with a formatted message.
func Newf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, cause: errors.Errorf(format, args...)}
}

type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string { return e.cause.Error() }
func (e *kindError) Unwrap() error { return e.kind }
func (e *kindError) Cause() error  { return e.cause }
