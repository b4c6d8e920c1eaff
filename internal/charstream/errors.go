package charstream

import "errors"

var (
	// ErrIndexOutOfRange is returned when a seek target or text bound lies
	// outside [0, Size()].
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrEndOfStream is returned by Consume when the cursor is already at Size().
	ErrEndOfStream = errors.New("end of stream")

	// ErrUnbalancedMark is the panic value (wrapped) raised when a mark is
	// released out of LIFO order or with no outstanding mark.
	ErrUnbalancedMark = errors.New("unbalanced mark")

	// ErrUnknownEncoding is returned when an encoding hint cannot be resolved.
	ErrUnknownEncoding = errors.New("unknown encoding")
)
