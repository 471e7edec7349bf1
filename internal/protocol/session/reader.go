package session

import (
	"context"
	"errors"
	"io"
	"math/rand"

	"github.com/codemob-dev/mc-connect/internal/observability"
	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/codemob-dev/mc-connect/internal/protocol/frame"
	"github.com/rs/zerolog"
)

// envelopeReader pulls envelopes off a stream, skipping frames that fail to
// decode. Every read consumes whole frames, so a bad payload never shifts the
// stream.
type envelopeReader struct {
	r       io.Reader
	limits  frame.Limits
	backoff BackoffConfig
	rng     *rand.Rand
	role    string
	log     zerolog.Logger

	// onInvalid, when set, is called for every frame that was consumed but
	// could not be decoded.
	onInvalid func(err error)
}

func newEnvelopeReader(r io.Reader, cfg Config, role string, log zerolog.Logger) *envelopeReader {
	return &envelopeReader{
		r:       r,
		limits:  cfg.Limits,
		backoff: cfg.Backoff,
		rng:     newRand(),
		role:    role,
		log:     log,
	}
}

// next returns the next decodable envelope. It returns false once the stream
// has ended or ctx is done.
func (er *envelopeReader) next(ctx context.Context) (protocol.Envelope, bool) {
	attempt := 0
	for {
		env, err := protocol.ReadEnvelope(er.r, er.limits)
		if err == nil {
			observability.RecordFrameRead(er.role)
			return env, true
		}

		switch {
		case err == io.EOF:
			er.log.Debug().Msg("peer closed the stream")
			return protocol.Envelope{}, false
		case IsExpectedCloseError(err):
			er.log.Debug().Err(err).Msg("connection closed")
			return protocol.Envelope{}, false
		case ctx.Err() != nil:
			return protocol.Envelope{}, false
		case protocol.IsDecodeError(err):
			observability.RecordReadError(er.role, "decode")
			er.log.Warn().Err(err).Msg("discarding undecodable frame")
			attempt = 0
			if er.onInvalid != nil {
				er.onInvalid(err)
			}
		case errors.Is(err, protocol.ErrTruncated):
			// The next read reports how the stream ended.
			observability.RecordReadError(er.role, "truncated")
			er.log.Warn().Err(err).Msg("stream ended inside a frame")
		default:
			attempt++
			observability.RecordReadError(er.role, "io")
			er.log.Warn().Err(err).Int("attempt", attempt).Msg("read failed; retrying")
			if er.backoff.sleep(ctx, attempt, er.rng) != nil {
				return protocol.Envelope{}, false
			}
		}
	}
}
