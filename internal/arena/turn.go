package arena

import (
	"context"
	"time"
)

// TurnClock abstracts the turn engine's wait between phases. WallClock
// sleeps turn_duration_ms for real play; PromptClock gates advancement on
// an operator in debug mode instead, the Go analogue of manual_control.py's
// interactive pause without reproducing its full pdb-driven REPL.
type TurnClock interface {
	// Wait blocks until the current turn's window has elapsed or ctx is
	// canceled.
	Wait(ctx context.Context, turn int, duration time.Duration)
}

// WallClock waits the configured turn duration, the production clock.
type WallClock struct{}

// Wait sleeps for duration or until ctx is canceled.
func (WallClock) Wait(ctx context.Context, turn int, duration time.Duration) {
	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}
}

// PromptClock waits for a signal on Advance before letting the turn
// proceed, used to single-step turns under --debug. The prompt UI itself
// (reading one line from stdin per turn) lives in cmd/lobotomy;
// this type only provides the gate the turn engine blocks on.
type PromptClock struct {
	Advance <-chan struct{}
}

// Wait blocks on Advance or ctx cancellation, ignoring the wall-clock
// duration entirely.
func (p PromptClock) Wait(ctx context.Context, turn int, duration time.Duration) {
	select {
	case <-p.Advance:
	case <-ctx.Done():
	}
}

// TurnEngine drives the fixed-cadence heal/begin/window/end/resolve/cull
// cycle across every in-game session in an Arena.
type TurnEngine struct {
	arena *Arena
	clock TurnClock
}

// NewTurnEngine builds a TurnEngine over arena, advancing on clock.
func NewTurnEngine(arena *Arena, clock TurnClock) *TurnEngine {
	return &TurnEngine{arena: arena, clock: clock}
}

// Run ticks forever until ctx is canceled.
func (e *TurnEngine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e.tick(ctx)
	}
}

// tick executes exactly one turn: heal & begin, window, end, death
// counters, phase resolution (moves, fires, scans), then cull.
func (e *TurnEngine) tick(ctx context.Context) {
	a := e.arena

	a.mu.Lock()
	a.turn++
	turn := a.turn
	players := a.snapshotInGame()

	// 1. Heal & begin.
	for _, s := range players {
		if s.state == Dead {
			continue
		}
		s.energy = min(s.energy+a.Config.TurnHeal, a.Config.MaxEnergy)
		s.state = Acting
		s.intents.Clear()
		energy := s.energy
		a.deliver(s, func() error { return s.SignalBegin(turn, energy) })
	}
	a.mu.Unlock()
	a.flushPending()
	a.Events.Emit("turn_begin", map[string]any{"turn": turn})

	// 2. Window.
	duration := time.Duration(a.Config.TurnDurationMS) * time.Millisecond
	e.clock.Wait(ctx, turn, duration)

	a.mu.Lock()

	// 3. End.
	for _, s := range players {
		if s.state != Acting {
			continue
		}
		a.deliver(s, s.SignalEnd)
		s.state = Waiting
	}

	// 4. Death counters.
	for _, s := range players {
		if s.state == Dead && s.deadTurns > 0 {
			s.deadTurns--
		}
	}

	// 5. Phase resolution: moves, fires, scans, in that fixed order.
	a.resolveMoves(players)
	a.resolveFires(players)
	a.resolveScans(players)

	// 6. Cull.
	a.cull(players)

	a.mu.Unlock()
	a.flushPending()
	a.Events.Emit("turn_end", map[string]any{"turn": turn})
}
