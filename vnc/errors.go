package vnc

import (
	"errors"
	"fmt"
)

// Sentinel categories, matched via errors.Is. Wrapping follows the teacher's
// fmt.Errorf("...: %s", err) idiom rather than exposing every field of the
// failure; callers that need to branch on kind compare against these.
var (
	ErrProtocol = errors.New("vnc: protocol error")
	ErrAuth     = errors.New("vnc: authentication error")
	ErrZRLE     = errors.New("vnc: zrle error")
)

// errUnknownEncoding is returned by decoderFor for an encoding type this
// package has no decoder for. Unlike ProtocolError it is not fatal: RFC 6143
// doesn't define a way to know an unrecognised encoding's body length, so
// the read loop logs it and moves on to the next rectangle header rather
// than aborting the connection.
var errUnknownEncoding = errors.New("vnc: unknown encoding type")

// ProtocolError wraps a malformed or out-of-sequence wire message: a bad
// version string, an unexpected security-result code, a rectangle whose
// header claims more data than the message actually carries.
type ProtocolError struct {
	Detail string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vnc: protocol error: %s: %s", e.Detail, e.Err)
	}
	return fmt.Sprintf("vnc: protocol error: %s", e.Detail)
}

func (e *ProtocolError) Unwrap() error { return ErrProtocol }

func newProtocolError(detail string, err error) *ProtocolError {
	return &ProtocolError{Detail: detail, Err: err}
}

// AuthError wraps a security-negotiation or DES challenge-response failure.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("vnc: authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return ErrAuth }

// ZRLEError wraps a ZRLE tile-decode failure: an illegal subencoding byte,
// a palette size out of range, a run-length that overruns the tile.
type ZRLEError struct {
	Detail string
	Err    error
}

func (e *ZRLEError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vnc: zrle: %s: %s", e.Detail, e.Err)
	}
	return fmt.Sprintf("vnc: zrle: %s", e.Detail)
}

func (e *ZRLEError) Unwrap() error { return ErrZRLE }

func newZRLEError(detail string, err error) *ZRLEError {
	return &ZRLEError{Detail: detail, Err: err}
}
