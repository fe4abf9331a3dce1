package compress

import "errors"

// Sentinel errors for the decompressor's failure modes. Like the payload
// package's errors, these are fatal for the current message and are never
// retried at this layer.
var (
	ErrShortInput   = errors.New("compress: input exhausted before declared size reached")
	ErrBadBackRef   = errors.New("compress: back-reference points outside the produced output region")
	ErrDeclaredSize = errors.New("compress: declared decompressed size is inconsistent")
)
