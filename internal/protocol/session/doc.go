// Package session owns the correlated request/response transport on top of
// the protocol wire codec.
//
// Ownership boundary:
// - correlation table (Table, Waiter)
// - requesting side (Client): serialized writes, one background reader
// - responding side (Dispatcher): read, handle, reply with a fresh id
// - retry/backoff and dialing
//
// Ids are chosen by the responder. Each side counts from zero and increments
// before every response it writes, so a Client registers its waiter under the
// value the single Dispatcher on the other end will use for that request.
// The Dispatcher answers a request it cannot decode with Failure so both
// counters stay in step.
//
// Read loops stop on a clean EOF and also on a connection that is already
// gone (closed locally, broken pipe, reset by peer); see IsExpectedCloseError.
// Retrying those would spin on a dead socket. Any other read error is logged
// and retried with backoff.
package session
