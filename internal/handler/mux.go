package handler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/codemob-dev/mc-connect/internal/protocol/session"
	"github.com/rs/zerolog"
)

// Mux routes requests to the handler registered for their tag. Requests with
// no registered handler are answered with Failure.
type Mux struct {
	mu     sync.RWMutex
	routes map[protocol.Tag]session.Handler
	log    zerolog.Logger
}

func NewMux() *Mux {
	return &Mux{
		routes: map[protocol.Tag]session.Handler{},
		log:    logging.Component("handler.mux"),
	}
}

// Register binds h to tag, replacing any earlier binding.
func (m *Mux) Register(tag protocol.Tag, h session.Handler) error {
	if !tag.Valid() {
		return fmt.Errorf("handler: unknown tag %d", tag)
	}
	if h == nil {
		return session.ErrNilHandler
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[tag] = h
	return nil
}

func (m *Mux) Lookup(tag protocol.Tag) (session.Handler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.routes[tag]
	return h, ok
}

// Tags lists the registered tags in wire order.
func (m *Mux) Tags() []protocol.Tag {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]protocol.Tag, 0, len(m.routes))
	for tag := range m.routes {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})
	return out
}

func (m *Mux) Handle(ctx context.Context, msg protocol.Message) protocol.Message {
	h, ok := m.Lookup(msg.Tag())
	if !ok {
		m.log.Warn().Stringer("tag", msg.Tag()).Msg("no handler registered")
		return protocol.Failure{}
	}
	return h.Handle(ctx, msg)
}
