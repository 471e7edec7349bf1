package session

import "errors"

var (
	ErrSessionClosed   = errors.New("session: closed")
	ErrAbandoned       = errors.New("session: waiter abandoned")
	ErrDuplicateID     = errors.New("session: correlation id already pending")
	ErrAddressRequired = errors.New("session: address required")
	ErrNilHandler      = errors.New("session: nil handler")
)
