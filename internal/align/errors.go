package align

import (
	"errors"
	"fmt"
)

// classifies alignment failures
type ErrorKind string

const (
	// a narration has no matching subtitle; non-fatal, degrades to
	// fallback timing
	ErrResolutionGap ErrorKind = "resolution_gap"

	// no narrations to build from; fatal to that build call
	ErrEmptyInput ErrorKind = "empty_input"

	// clip storage I/O failure; per clip, the clip stays silent
	ErrClipFetchFailed ErrorKind = "clip_fetch_failed"

	// rendering/encoding the track failed; fatal to that build call
	ErrEncodeFailed ErrorKind = "encode_failed"
)

type AlignmentError struct {
	Kind ErrorKind
	Err  error
}

func (e *AlignmentError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *AlignmentError) Unwrap() error {
	return e.Err
}

func newAlignmentError(kind ErrorKind, err error) *AlignmentError {
	return &AlignmentError{Kind: kind, Err: err}
}

// reports whether err is an AlignmentError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var ae *AlignmentError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
