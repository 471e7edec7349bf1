package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/observability"
	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client is the requesting side of a connection. Any number of goroutines may
// send concurrently; a single background reader resolves their waiters.
type Client struct {
	id    string
	conn  io.ReadWriteCloser
	cfg   Config
	log   zerolog.Logger
	table *Table

	wmu sync.Mutex
	// sent counts successfully written requests. Guarded by wmu.
	sent uint64

	ctx       context.Context
	cancel    context.CancelFunc
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// NewClient takes ownership of conn and starts its reader.
func NewClient(conn io.ReadWriteCloser, cfg Config) *Client {
	cfg = cfg.WithDefaults()
	id := uuid.NewString()
	log := logging.Component("session.client")
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	log = log.With().Str("session", id).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		id:     id,
		conn:   conn,
		cfg:    cfg,
		log:    log,
		table:  NewTable(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.readLoop()
	log.Debug().Msg("client session started")
	return c
}

// ID identifies the session in logs.
func (c *Client) ID() string {
	return c.id
}

// Send writes msg as a request and returns the waiter for its response.
//
// The waiter is registered under the next expected id before the frame hits
// the wire, so a response that arrives immediately still finds it. If the
// write fails the entry is dropped and the count is left alone.
func (c *Client) Send(msg protocol.Message) (*Waiter, error) {
	if c.closed.Load() {
		return nil, ErrSessionClosed
	}
	buf, err := protocol.Encode(protocol.Request(msg), c.cfg.Limits)
	if err != nil {
		return nil, err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()

	id := c.sent + 1
	w, err := c.table.Register(id)
	if err != nil {
		return nil, err
	}
	if _, err := c.conn.Write(buf); err != nil {
		c.table.Abandon(id)
		if c.closed.Load() {
			return nil, ErrSessionClosed
		}
		return nil, fmt.Errorf("session: write request: %w", err)
	}
	c.sent = id
	observability.RecordFrameWritten(observability.RoleClient)
	c.log.Trace().Uint64("correlation_id", id).Stringer("tag", msg.Tag()).Msg("request sent")
	return w, nil
}

// Call sends msg and waits for its response.
func (c *Client) Call(ctx context.Context, msg protocol.Message) (protocol.Message, error) {
	w, err := c.Send(msg)
	if err != nil {
		return nil, err
	}
	return w.Wait(ctx)
}

func (c *Client) Print(body string) (*Waiter, error) {
	return c.Send(protocol.NewText(body))
}

// Println sends body with a trailing newline.
func (c *Client) Println(body string) (*Waiter, error) {
	return c.Send(protocol.NewText(body + "\n"))
}

// Toast asks the peer to raise a desktop notification.
func (c *Client) Toast(title, body string) (*Waiter, error) {
	return c.Send(protocol.NewNotify(title, body))
}

func (c *Client) Invoke(class, method, signature string) (*Waiter, error) {
	return c.Send(protocol.NewInvoke(class, method, signature))
}

func (c *Client) Launch(l protocol.Launch) (*Waiter, error) {
	return c.Send(l)
}

// Pending returns the number of requests still awaiting a response.
func (c *Client) Pending() int {
	return c.table.Len()
}

// Done is closed when the reader stops, either because the peer closed the
// stream or because Close was called. Waiters still pending at that point
// stay pending until Close.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close shuts the connection, stops the reader and abandons every pending
// waiter with ErrSessionClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
		c.closeErr = c.conn.Close()
		<-c.done
		if n := c.table.AbandonAll(ErrSessionClosed); n > 0 {
			c.log.Debug().Int("abandoned", n).Msg("abandoned pending requests")
		}
		c.log.Debug().Msg("client session closed")
	})
	return c.closeErr
}

func (c *Client) readLoop() {
	defer close(c.done)
	reader := newEnvelopeReader(c.conn, c.cfg, observability.RoleClient, c.log)
	for {
		env, ok := reader.next(c.ctx)
		if !ok {
			return
		}
		if env.IsRequest() {
			c.log.Warn().Stringer("tag", env.Message.Tag()).Msg("peer sent a request on a client session; discarding")
			continue
		}
		if !c.table.Resolve(env.CorrelationID, env.Message) {
			observability.RecordUnmatchedResponse()
			c.log.Warn().
				Uint64("correlation_id", env.CorrelationID).
				Stringer("tag", env.Message.Tag()).
				Msg("response has no pending waiter; discarding")
		}
	}
}
