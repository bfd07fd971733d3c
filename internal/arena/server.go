package arena

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lobotomyarena/lobotomy/internal/config"
	"github.com/lobotomyarena/lobotomy/internal/event"
)

// Server is the TCP front-end: it binds the listening socket, accepts
// connections into independent session reader tasks, and runs the turn
// engine alongside them. Shutdown is cooperative via ctx cancellation —
// the idiomatic substitute for the single boolean flag both the accept
// loop and the turn engine polled in the original design — coordinated
// with an errgroup the way niceyeti-tabular coordinates its worker
// goroutines.
type Server struct {
	Arena *Arena
	Log   *zap.SugaredLogger
	Clock TurnClock

	// DebugAdvance is non-nil only when cfg.Debug is set; cmd/lobotomy's
	// operator prompt sends on it to release the turn engine one turn at
	// a time instead of waiting out turn_duration_ms.
	DebugAdvance chan struct{}

	listen net.Listener
}

// NewServer builds a Server wired to a fresh Arena over cfg.
func NewServer(cfg config.Config, log *zap.SugaredLogger) *Server {
	emitter := &event.Emitter{}
	a := New(cfg, log, emitter)

	srv := &Server{Arena: a, Log: log, Clock: WallClock{}}
	if cfg.Debug {
		srv.DebugAdvance = make(chan struct{})
		srv.Clock = PromptClock{Advance: srv.DebugAdvance}
	}
	return srv
}

// Run binds the configured host/port, then runs the accept loop and turn
// engine until ctx is canceled or either fails fatally. In-flight session
// tasks are daemons: Run does not wait for them to finish.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Arena.Config.Host, s.Arena.Config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.listen = ln
	s.Log.Infow("listening", "addr", addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		return s.acceptLoop(gctx, ln)
	})
	g.Go(func() error {
		engine := NewTurnEngine(s.Arena, s.Clock)
		return engine.Run(gctx)
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil // cooperative shutdown, not a failure
	}
	return err
}

// acceptLoop accepts connections until ctx is canceled, spawning an
// independent, un-awaited reader goroutine per connection.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}
		sess := NewSession(conn, s.Arena)
		s.Log.Debugw("accepted", "session", sess.Name())
		go sess.Run()
	}
}
