package session

import (
	"context"
	"sort"
	"sync"

	"github.com/codemob-dev/mc-connect/internal/observability"
	"github.com/codemob-dev/mc-connect/internal/protocol"
)

// Table maps correlation ids to pending waiters. Every operation takes the
// table lock, so Register, Resolve and Abandon are linearizable and an entry
// is settled exactly once.
type Table struct {
	mu      sync.Mutex
	waiters map[uint64]*Waiter
}

func NewTable() *Table {
	return &Table{
		waiters: make(map[uint64]*Waiter),
	}
}

// Register creates the single waiter for id.
func (t *Table) Register(id uint64) (*Waiter, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.waiters[id]; ok {
		return nil, ErrDuplicateID
	}
	w := &Waiter{
		id:    id,
		table: t,
		done:  make(chan struct{}),
	}
	t.waiters[id] = w
	observability.AddPendingWaiters(1)
	return w, nil
}

// Resolve delivers msg to the waiter for id and removes it. It reports false
// when nothing is pending under id.
func (t *Table) Resolve(id uint64, msg protocol.Message) bool {
	return t.settle(id, msg, nil)
}

// Abandon removes the waiter for id without a message; its Wait returns
// ErrAbandoned.
func (t *Table) Abandon(id uint64) bool {
	return t.settle(id, nil, ErrAbandoned)
}

// AbandonAll settles every pending waiter with err and returns how many there were.
func (t *Table) AbandonAll(err error) int {
	if err == nil {
		err = ErrAbandoned
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.waiters)
	for id, w := range t.waiters {
		delete(t.waiters, id)
		w.err = err
		close(w.done)
	}
	observability.AddPendingWaiters(-n)
	return n
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}

// Pending lists pending ids in ascending order.
func (t *Table) Pending() []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]uint64, 0, len(t.waiters))
	for id := range t.waiters {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i] < out[j]
	})
	return out
}

func (t *Table) settle(id uint64, msg protocol.Message, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.waiters[id]
	if !ok {
		return false
	}
	delete(t.waiters, id)
	w.msg = msg
	w.err = err
	close(w.done)
	observability.AddPendingWaiters(-1)
	return true
}

// Waiter is a single-resolution placeholder for one response.
type Waiter struct {
	id    uint64
	table *Table

	// msg and err are written once under the table lock before done closes.
	msg  protocol.Message
	err  error
	done chan struct{}
}

// ID is the correlation id the response is expected under.
func (w *Waiter) ID() uint64 {
	return w.id
}

// Done is closed once the waiter is resolved or abandoned.
func (w *Waiter) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the response arrives, the waiter is abandoned, or ctx
// ends. A cancelled ctx abandons the table entry unless the response won the
// race, in which case the response is returned.
func (w *Waiter) Wait(ctx context.Context) (protocol.Message, error) {
	select {
	case <-w.done:
		return w.msg, w.err
	case <-ctx.Done():
	}
	if w.table.Abandon(w.id) {
		return nil, ctx.Err()
	}
	<-w.done
	return w.msg, w.err
}

// Abandon drops the table entry. It reports false if the waiter was already settled.
func (w *Waiter) Abandon() bool {
	return w.table.Abandon(w.id)
}
