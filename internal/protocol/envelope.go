package protocol

import (
	"fmt"

	"github.com/codemob-dev/mc-connect/internal/protocol/field"
)

// Envelope is the unit exchanged over the wire.
type Envelope struct {
	CorrelationID uint64
	Message       Message
}

// Request wraps msg as a new request.
func Request(msg Message) Envelope {
	return Envelope{Message: msg}
}

// Response wraps msg as the response counted under id.
func Response(id uint64, msg Message) Envelope {
	return Envelope{CorrelationID: id, Message: msg}
}

func (e Envelope) IsRequest() bool {
	return e.CorrelationID == 0
}

// Equal compares ids and payloads.
func (e Envelope) Equal(other Envelope) bool {
	return e.CorrelationID == other.CorrelationID && Equal(e.Message, other.Message)
}

// Marshal encodes the envelope payload (no length prefix).
func Marshal(env Envelope) ([]byte, error) {
	msg, ok := Normalize(env.Message)
	if !ok {
		return nil, ErrNilMessage
	}
	w := field.NewWriter(16)
	w.U64(env.CorrelationID)
	w.U8(uint8(msg.Tag()))

	switch m := msg.(type) {
	case Text:
		w.String(m.Body)
	case Notify:
		w.String(m.Title)
		w.String(m.Body)
	case Invoke:
		w.String(m.Class)
		w.String(m.Method)
		w.String(m.Signature)
	case Launch:
		w.String(m.Path)
		w.Strings(m.Args)
		w.String(m.Dir)
		w.OptionalStringMap(m.Env)
	case Acknowledge, Failure:
	default:
		return nil, fmt.Errorf("%w: unsupported message %T", ErrInvalidData, msg)
	}

	b, err := w.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", ErrInvalidData, msg.Tag(), err)
	}
	return b, nil
}

// Unmarshal decodes an envelope payload. Any failure wraps ErrInvalidData.
func Unmarshal(b []byte) (Envelope, error) {
	r := field.NewReader(b)
	id := r.U64()
	tag := Tag(r.U8())
	if err := r.Err(); err != nil {
		return Envelope{}, fmt.Errorf("%w: envelope header: %w", ErrInvalidData, err)
	}

	var msg Message
	switch tag {
	case TagText:
		msg = Text{Body: r.String()}
	case TagNotify:
		m := Notify{}
		m.Title = r.String()
		m.Body = r.String()
		msg = m
	case TagInvoke:
		m := Invoke{}
		m.Class = r.String()
		m.Method = r.String()
		m.Signature = r.String()
		msg = m
	case TagLaunch:
		m := Launch{}
		m.Path = r.String()
		m.Args = r.Strings()
		m.Dir = r.String()
		m.Env = r.OptionalStringMap()
		msg = m
	case TagAcknowledge:
		msg = Acknowledge{}
	case TagFailure:
		msg = Failure{}
	default:
		return Envelope{}, fmt.Errorf("%w: unknown tag %d", ErrInvalidData, uint8(tag))
	}

	if err := r.Finish(); err != nil {
		return Envelope{}, fmt.Errorf("%w: %s: %w", ErrInvalidData, tag, err)
	}
	return Envelope{CorrelationID: id, Message: msg}, nil
}
