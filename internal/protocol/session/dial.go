package session

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/codemob-dev/mc-connect/internal/logging"
)

// Dial connects to addr over TCP and returns a Client bound to the
// connection. Failed attempts are retried with backoff up to
// MaxConnectAttempts; zero or less means retry until ctx is done.
func Dial(ctx context.Context, addr string, cfg Config) (*Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, ErrAddressRequired
	}
	cfg = cfg.WithDefaults()
	log := logging.Component("session.dial")
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	rng := newRand()

	var lastErr error
	for attempt := 1; cfg.MaxConnectAttempts <= 0 || attempt <= cfg.MaxConnectAttempts; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			log.Debug().Str("addr", addr).Int("attempt", attempt).Msg("connected")
			return NewClient(conn, cfg), nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		log.Warn().Err(err).Str("addr", addr).Int("attempt", attempt).Msg("dial failed")
		if cfg.MaxConnectAttempts > 0 && attempt == cfg.MaxConnectAttempts {
			break
		}
		if err := cfg.Backoff.sleep(ctx, attempt, rng); err != nil {
			lastErr = err
			break
		}
	}
	return nil, fmt.Errorf("session: dial %s: %w", addr, lastErr)
}
