package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Strategy when nothing has been saved yet
// under the requested identity. It is a fresh-start signal, not a failure.
var ErrNotFound = errors.New("collection not found")

// ErrorKind classifies persistence failures surfaced on the store.
type ErrorKind string

const (
	// KindTransport covers network and storage I/O failures.
	KindTransport ErrorKind = "transport"
	// KindDecode covers corrupt persisted payloads.
	KindDecode ErrorKind = "decode"
)

// SyncError is a persistence failure converted to store-level status.
// Callers read it through LastError; it never escapes the store as a
// panic or an uncaught failure.
type SyncError struct {
	Kind ErrorKind
	Op   string // "load" or "save"
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func transportErr(op string, err error) *SyncError {
	return &SyncError{Kind: KindTransport, Op: op, Err: err}
}

func decodeErr(op string, err error) *SyncError {
	return &SyncError{Kind: KindDecode, Op: op, Err: err}
}

// asSyncError normalizes an arbitrary strategy error into a SyncError.
func asSyncError(op string, err error) *SyncError {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr
	}
	return transportErr(op, err)
}
