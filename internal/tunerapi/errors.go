package tunerapi

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorKind is the category of a failed backend call
type ErrorKind int

const (
	// KindNetwork means the request never produced an HTTP response
	KindNetwork ErrorKind = iota
	// KindProtocol means a non-success status or a malformed body
	KindProtocol
	// KindEmpty means a well-formed answer that carries nothing usable
	KindEmpty
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "Network Failure"
	case KindProtocol:
		return "Protocol Error"
	case KindEmpty:
		return "Empty Result"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// NetworkCause narrows down a KindNetwork error
type NetworkCause int

const (
	CauseGeneral NetworkCause = iota
	CauseTimeout
	CauseConnectionRefused
	CauseDNS
	CauseHostUnreachable
)

// Error is returned by every Client call that fails
type Error struct {
	Kind       ErrorKind
	Op         string // API operation, e.g. "tuners"
	Message    string
	StatusCode int // HTTP status, 0 for network failures
	Cause      NetworkCause
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s (caused by: %v)", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

func classifyNetwork(err error) NetworkCause {
	if os.IsTimeout(err) {
		return CauseTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CauseDNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return CauseConnectionRefused
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH), errors.Is(opErr.Err, syscall.ENETUNREACH):
			return CauseHostUnreachable
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return classifyNetwork(urlErr.Err)
	}

	return CauseGeneral
}

func newNetworkError(op string, err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Op:      op,
		Message: "backend unreachable",
		Cause:   classifyNetwork(err),
		Err:     err,
	}
}

func newStatusError(op string, status int, body string) *Error {
	msg := fmt.Sprintf("unexpected status code: %d", status)
	if body != "" {
		msg += ": " + body
	}
	return &Error{
		Kind:       KindProtocol,
		Op:         op,
		Message:    msg,
		StatusCode: status,
	}
}

func newDecodeError(op string, err error) *Error {
	return &Error{
		Kind:    KindProtocol,
		Op:      op,
		Message: "malformed response body",
		Err:     err,
	}
}

func newEmptyError(op, message string) *Error {
	return &Error{
		Kind:    KindEmpty,
		Op:      op,
		Message: message,
	}
}

func kindOf(err error) (ErrorKind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsNetwork reports whether err is a NetworkFailure
func IsNetwork(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNetwork
}

// IsProtocol reports whether err is a ProtocolError
func IsProtocol(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindProtocol
}

// IsEmpty reports whether err is an EmptyResult
func IsEmpty(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindEmpty
}

// ShortMessage returns a one-line, operator-facing description of err
func ShortMessage(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.Kind {
	case KindNetwork:
		switch apiErr.Cause {
		case CauseTimeout:
			return "Backend not responding (timeout)"
		case CauseConnectionRefused:
			return "Backend refused connection - is it running?"
		case CauseDNS:
			return "Cannot resolve backend hostname"
		case CauseHostUnreachable:
			return "Backend unreachable - check network"
		default:
			return "Network error - check connection"
		}
	case KindProtocol:
		if apiErr.StatusCode != 0 {
			return fmt.Sprintf("Backend error (HTTP %d)", apiErr.StatusCode)
		}
		return "Failed to parse backend response"
	default:
		return apiErr.Message
	}
}
