package payload

import "errors"

// Sentinel errors for the well-known malformed-encoding conditions. All of
// them are fatal for the current message and are never retried at the codec
// level — a transport-level retry belongs to the caller, not here.
var (
	ErrShortBuffer     = errors.New("payload: buffer too short for claimed length")
	ErrUnknownType     = errors.New("payload: unknown type tag")
	ErrInvalidAttr     = errors.New("payload: attribute byte out of range")
	ErrNonASCII        = errors.New("payload: non-ASCII byte in ASCII-only context")
	ErrUnterminated    = errors.New("payload: unterminated symbol/error string")
	ErrMisalignedGUID  = errors.New("payload: GUID vector length not a multiple of 16")
	ErrNonASCIIRequest = errors.New("payload: query text is not 7-bit ASCII")
)
