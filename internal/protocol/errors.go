package protocol

import (
	"errors"

	"github.com/codemob-dev/mc-connect/internal/protocol/frame"
)

var (
	// ErrInvalidData reports well-framed bytes that do not decode to a known
	// envelope: an unknown tag, a short field, invalid UTF-8, trailing bytes.
	ErrInvalidData = errors.New("protocol: invalid data")
	// ErrNilMessage reports an envelope without a message.
	ErrNilMessage = errors.New("protocol: nil message")

	// ErrTruncated reports a stream that closed mid-frame.
	ErrTruncated = frame.ErrTruncated
	// ErrFrameTooLarge reports a frame above the configured limit.
	ErrFrameTooLarge = frame.ErrPayloadTooLarge
)

// IsDecodeError reports whether err came from a frame that was read in full
// but could not be decoded. The stream is still aligned on a frame boundary.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrInvalidData) || errors.Is(err, ErrFrameTooLarge)
}
