package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/observability"
	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler turns one request into its response. A nil response, including a
// nil pointer variant, is answered with Failure.
type Handler interface {
	Handle(ctx context.Context, msg protocol.Message) protocol.Message
}

type HandlerFunc func(ctx context.Context, msg protocol.Message) protocol.Message

func (f HandlerFunc) Handle(ctx context.Context, msg protocol.Message) protocol.Message {
	return f(ctx, msg)
}

// Dispatcher is the responding side of a connection. Requests are handled
// one at a time in arrival order.
type Dispatcher struct {
	id      string
	conn    io.ReadWriteCloser
	handler Handler
	cfg     Config
	log     zerolog.Logger

	wmu       sync.Mutex
	responses atomic.Uint64
	running   atomic.Bool
}

func NewDispatcher(conn io.ReadWriteCloser, handler Handler, cfg Config) (*Dispatcher, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	cfg = cfg.WithDefaults()
	id := uuid.NewString()
	log := logging.Component("session.dispatch")
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Dispatcher{
		id:      id,
		conn:    conn,
		handler: handler,
		cfg:     cfg,
		log:     log.With().Str("session", id).Logger(),
	}, nil
}

func (d *Dispatcher) ID() string {
	return d.id
}

// Responses returns how many responses have been written so far. It equals
// the correlation id of the most recent one.
func (d *Dispatcher) Responses() uint64 {
	return d.responses.Load()
}

// Run serves requests until the peer closes the stream or ctx is done. It
// closes conn on return. Both outcomes are a normal shutdown and return nil.
func (d *Dispatcher) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return fmt.Errorf("session: dispatcher %s already running", d.id)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = d.conn.Close()
	})
	defer func() {
		stop()
		_ = d.conn.Close()
	}()

	d.log.Debug().Msg("dispatcher started")
	reader := newEnvelopeReader(d.conn, d.cfg, observability.RoleAgent, d.log)
	// The peer registered a waiter for the undecodable request, so it still
	// takes a response id.
	reader.onInvalid = func(error) {
		d.respond(ctx, protocol.Failure{})
	}
	for {
		env, ok := reader.next(ctx)
		if !ok {
			d.log.Debug().Uint64("responses", d.responses.Load()).Msg("dispatcher stopped")
			return nil
		}
		if !env.IsRequest() {
			d.log.Debug().Uint64("correlation_id", env.CorrelationID).Msg("request carries a nonzero correlation id")
		}
		d.respond(ctx, d.invoke(ctx, env.Message))
	}
}

func (d *Dispatcher) invoke(ctx context.Context, msg protocol.Message) (reply protocol.Message) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Stringer("tag", msg.Tag()).Msg("handler panicked")
			reply = protocol.Failure{}
		}
		observability.RecordHandler(msg.Tag().String(), reply.Tag().String(), time.Since(start))
	}()
	reply, ok := protocol.Normalize(d.handler.Handle(ctx, msg))
	if !ok {
		reply = protocol.Failure{}
	}
	return reply
}

func (d *Dispatcher) respond(ctx context.Context, reply protocol.Message) {
	id := d.responses.Add(1)
	buf, err := protocol.Encode(protocol.Response(id, reply), d.cfg.Limits)
	if err != nil {
		d.log.Error().Err(err).Uint64("correlation_id", id).Msg("response not encodable; sending failure")
		buf, err = protocol.Encode(protocol.Response(id, protocol.Failure{}), d.cfg.Limits)
		if err != nil {
			d.log.Error().Err(err).Msg("encode failure response")
			return
		}
	}

	d.wmu.Lock()
	_, err = d.conn.Write(buf)
	d.wmu.Unlock()
	if err != nil {
		if ctx.Err() == nil && !IsExpectedCloseError(err) {
			d.log.Error().Err(err).Uint64("correlation_id", id).Msg("write response")
		}
		return
	}
	observability.RecordFrameWritten(observability.RoleAgent)
	d.log.Trace().Uint64("correlation_id", id).Stringer("tag", reply.Tag()).Msg("response sent")
}
