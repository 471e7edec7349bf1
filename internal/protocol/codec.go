package protocol

import (
	"bytes"
	"io"

	"github.com/codemob-dev/mc-connect/internal/protocol/frame"
)

// Encode returns the complete frame for env: length prefix plus payload.
func Encode(env Envelope, limits frame.Limits) ([]byte, error) {
	payload, err := Marshal(env)
	if err != nil {
		return nil, err
	}
	return frame.AppendFrame(make([]byte, 0, frame.PrefixLen+len(payload)), payload, limits)
}

// Decode reads exactly one frame from b.
func Decode(b []byte, limits frame.Limits) (Envelope, error) {
	return ReadEnvelope(bytes.NewReader(b), limits)
}

// WriteEnvelope writes one complete frame with a single Write call.
func WriteEnvelope(w io.Writer, env Envelope, limits frame.Limits) error {
	buf, err := Encode(env, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadEnvelope reads and decodes one frame.
//
// Errors are distinct by kind: io.EOF (unwrapped) when the stream ended on a
// frame boundary, ErrTruncated when it ended mid-frame, ErrInvalidData or
// ErrFrameTooLarge when a whole frame was consumed but could not be decoded.
// Anything else is the underlying transport error.
func ReadEnvelope(r io.Reader, limits frame.Limits) (Envelope, error) {
	payload, err := frame.ReadFrame(r, limits)
	if err != nil {
		return Envelope{}, err
	}
	return Unmarshal(payload)
}
