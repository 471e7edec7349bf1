package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// PrefixLen is the size of the big-endian length prefix in front of every payload.
const PrefixLen = 4

var (
	ErrTruncated       = errors.New("frame: stream closed mid-frame")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxPayloadBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 8 * 1024 * 1024,
	}
}

// WithDefaults fills zero fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	if l.MaxPayloadBytes == 0 {
		l.MaxPayloadBytes = DefaultLimits().MaxPayloadBytes
	}
	return l
}

// ReadFrame reads one length-prefixed payload from r.
//
// A stream that ends before any prefix byte returns io.EOF unwrapped. A stream
// that ends anywhere after the first prefix byte returns ErrTruncated. A
// payload above the limit is drained from r before ErrPayloadTooLarge is
// returned so the next read starts on a frame boundary.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	limits = limits.WithDefaults()

	var prefix [PrefixLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short length prefix: %w", ErrTruncated, err)
		}
		return nil, err
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if n > limits.MaxPayloadBytes {
		if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
			return nil, fmt.Errorf("%w: draining oversized payload: %w", ErrTruncated, eofAsUnexpected(err))
		}
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, limits.MaxPayloadBytes)
	}

	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("%w: payload: %w", ErrTruncated, eofAsUnexpected(err))
		}
	}
	return payload, nil
}

// WriteFrame writes the prefix and payload to w with a single Write call, so
// a writer serialized by a mutex never interleaves partial frames.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	buf, err := AppendFrame(make([]byte, 0, PrefixLen+len(payload)), payload, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// AppendFrame appends the framed payload to dst.
func AppendFrame(dst []byte, payload []byte, limits Limits) ([]byte, error) {
	limits = limits.WithDefaults()
	if uint64(len(payload)) > uint64(limits.MaxPayloadBytes) {
		return dst, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), limits.MaxPayloadBytes)
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...), nil
}

func eofAsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
