// Package arena implements LoBotomy's game state: the session registry,
// the turn engine that drives heal/begin/window/end/resolve/cull, and the
// move/fire/scan resolution rules on a wrapped battlefield. It follows the
// locking discipline of sonpython-slether's World/GameLoop pair — one
// coarse lock guarding shared state, taken by the turn engine for the
// duration of each phase and by session readers only to mutate — rather
// than per-session locks, per the single-coarse-mutex design this game's
// scale calls for.
package arena

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/lobotomyarena/lobotomy/internal/config"
	"github.com/lobotomyarena/lobotomy/internal/event"
	"github.com/lobotomyarena/lobotomy/internal/geometry"
	"github.com/lobotomyarena/lobotomy/internal/spatial"
)

// Arena owns every piece of shared game state: the name registry, the
// in-game set, and the spatial index of living players. All of it is
// guarded by mu; the turn engine holds mu for an entire phase, session
// readers take it only to mutate a field or register/unregister.
type Arena struct {
	Config config.Config
	Log    *zap.SugaredLogger
	Events *event.Emitter

	mu       sync.Mutex
	sessions map[string]*Session
	inGame   map[*Session]struct{}
	index    *spatial.Tree
	turn     int
	pending  []pendingSend
}

// New builds an Arena over the given configuration.
func New(cfg config.Config, log *zap.SugaredLogger, emitter *event.Emitter) *Arena {
	field := geometry.Rect{X1: 0, Y1: 0, X2: cfg.Width, Y2: cfg.Height}
	return &Arena{
		Config:   cfg,
		Log:      log,
		Events:   emitter,
		sessions: make(map[string]*Session),
		inGame:   make(map[*Session]struct{}),
		index:    spatial.New(field),
	}
}

// field returns the battlefield rectangle for wrapped-geometry helpers.
func (a *Arena) field() geometry.Field {
	return geometry.Field{Width: a.Config.Width, Height: a.Config.Height}
}

// register inserts s into the name registry. Caller must hold a.mu. Fails
// with false if the name is already taken.
func (a *Arena) register(name string, s *Session) bool {
	if _, taken := a.sessions[name]; taken {
		return false
	}
	a.sessions[name] = s
	return true
}

// unregister removes s from both the registry and the in-game set. Caller
// must hold a.mu. Idempotent.
func (a *Arena) unregister(s *Session) {
	if s.name != "" {
		if cur, ok := a.sessions[s.name]; ok && cur == s {
			delete(a.sessions, s.name)
		}
	}
	delete(a.inGame, s)
}

// markInGame enters s into the in-game set. Caller must hold a.mu.
func (a *Arena) markInGame(s *Session) {
	a.inGame[s] = struct{}{}
}

// snapshotInGame returns a stable copy of the in-game set, safe to range
// over after releasing a.mu (per the iteration-snapshot discipline: deaths
// and unregisters during a phase must not perturb the phase's own
// iteration).
func (a *Arena) snapshotInGame() []*Session {
	out := make([]*Session, 0, len(a.inGame))
	for s := range a.inGame {
		out = append(out, s)
	}
	return out
}

// randomPosition returns a uniformly random point in the battlefield,
// assigned to a newly spawned player.
func (a *Arena) randomPosition() geometry.Point {
	return geometry.Point{
		X: rand.Float64() * a.Config.Width,
		Y: rand.Float64() * a.Config.Height,
	}
}
