package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/observability"
	"github.com/codemob-dev/mc-connect/internal/protocol/session"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Addr string
	// SingleConnection serves the first accepted connection and then stops
	// accepting; Serve returns once that connection ends.
	SingleConnection bool
	// MetricsAddr, when set, exposes /metrics over HTTP for the server's lifetime.
	MetricsAddr string
	Session     session.Config
}

// Server accepts connections and runs one Dispatcher per connection.
type Server struct {
	cfg     Config
	handler session.Handler
	log     zerolog.Logger

	active   atomic.Int64
	accepted atomic.Uint64
}

func New(cfg Config, handler session.Handler) (*Server, error) {
	if handler == nil {
		return nil, session.ErrNilHandler
	}
	cfg.Session = cfg.Session.WithDefaults()
	return &Server{
		cfg:     cfg,
		handler: handler,
		log:     logging.Component("server"),
	}, nil
}

// Active returns the number of connections currently being served.
func (s *Server) Active() int64 {
	return s.active.Load()
}

// Accepted returns the number of connections accepted so far.
func (s *Server) Accepted() uint64 {
	return s.accepted.Load()
}

// ListenAndServe binds cfg.Addr and serves until ctx is done, or until the
// single connection ends in single-connection mode.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := strings.TrimSpace(s.cfg.Addr)
	if addr == "" {
		return session.ErrAddressRequired
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.log.Info().Str("addr", ln.Addr().String()).Bool("single_connection", s.cfg.SingleConnection).Msg("listening")

	if strings.TrimSpace(s.cfg.MetricsAddr) == "" {
		return s.Serve(ctx, ln)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.Serve(gctx, ln)
	})
	g.Go(func() error {
		return s.serveMetrics(gctx)
	})
	return g.Wait()
}

// Serve accepts connections from ln until ctx is done. It owns ln and closes
// it on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() {
		_ = ln.Close()
	})
	defer stop()

	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if gctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				acceptErr = fmt.Errorf("server: accept: %w", err)
			}
			break
		}
		s.accepted.Add(1)
		g.Go(func() error {
			return s.serveConn(gctx, conn)
		})
		if s.cfg.SingleConnection {
			_ = ln.Close()
			break
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return acceptErr
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) error {
	remote := conn.RemoteAddr().String()
	active := s.active.Add(1)
	defer s.active.Add(-1)

	cfg := s.cfg.Session
	log := s.log.With().Str("remote", remote).Logger()
	cfg.Logger = &log
	d, err := session.NewDispatcher(conn, s.handler, cfg)
	if err != nil {
		_ = conn.Close()
		return err
	}
	log.Info().Str("session", d.ID()).Int64("active", active).Msg("client connected")
	err = d.Run(ctx)
	log.Info().Str("session", d.ID()).Uint64("responses", d.Responses()).Msg("client disconnected")
	return err
}

func (s *Server) serveMetrics(ctx context.Context) error {
	observability.RegisterMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	srv := &http.Server{
		Addr:              s.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", s.cfg.MetricsAddr).Msg("metrics listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: metrics: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
