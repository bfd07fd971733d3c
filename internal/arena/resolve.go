package arena

import (
	"github.com/lobotomyarena/lobotomy/internal/geometry"
)

// resolveMoves runs the move phase over a snapshot of in-game sessions.
// Caller must hold a.mu for the duration (the turn engine holds the lock
// for an entire phase, per the package's locking policy).
func (a *Arena) resolveMoves(players []*Session) {
	field := a.field()
	for _, s := range players {
		if s.state == Dead || s.intents.Move == nil {
			continue
		}
		mv := s.intents.Move
		s.energy -= MoveCost(mv.Distance)
		if s.energy <= 0 {
			continue // relocation withheld; Cull handles the death
		}
		s.position = geometry.MoveWrapped(s.position, mv.Angle, mv.Distance, field)
		if s.handle != nil {
			a.index.Move(s.handle, s.position.X, s.position.Y)
		}
	}
}

// candidatesInRadius turns a radius query centered on center into one or
// more in-field box queries against the spatial index (via
// GenerateWrappedBounds, so a query straddling the torus seam still finds
// everything), then filters the returned handles down to those actually
// within r of center under wrapped-radius containment.
func (a *Arena) candidatesInRadius(field geometry.Field, center geometry.Point, r float64) map[*Session]geometry.Point {
	target := geometry.Rect{X1: center.X - r, Y1: center.Y - r, X2: center.X + r, Y2: center.Y + r}
	found := make(map[*Session]geometry.Point)
	for _, box := range geometry.GenerateWrappedBounds(field, target) {
		for _, h := range a.index.FindInBox(box) {
			subject, ok := h.Data.(*Session)
			if !ok {
				continue
			}
			if _, seen := found[subject]; seen {
				continue
			}
			translate, within := geometry.WrappedRadius(field, center, subject.position, r)
			if within {
				found[subject] = translate
			}
		}
	}
	return found
}

// resolveFires runs the fire phase. Each fire computes its epicenter from
// the actor's (already moved) position, deducts its cost, then damages
// every in-game living player within radius of the epicenter across the
// torus — including the actor itself, if its own blast reaches it. The
// blast radius is first turned into a handful of box queries against the
// spatial index rather than scanning every in-game player.
func (a *Arena) resolveFires(players []*Session) {
	field := a.field()
	for _, s := range players {
		if s.state == Dead || s.intents.Fire == nil {
			continue
		}
		fi := s.intents.Fire
		epicenter := geometry.MoveWrapped(s.position, fi.Angle, fi.Distance, field)
		s.energy -= FireCost(fi.Distance, fi.Radius, fi.Charge)

		for subject, translate := range a.candidatesInRadius(field, epicenter, fi.Radius) {
			if subject.state == Dead {
				continue
			}
			subject.energy -= fi.Charge
			angle := geometry.Angle(subject.position, translate)
			attacker, charge := s.Name(), fi.Charge
			a.deliver(subject, func() error {
				return subject.SignalHit(attacker, angle, charge)
			})
		}
	}
}

// resolveScans runs the scan phase. A scanner whose own scan cost kills it
// receives no detections, per the resolved open question. Like fires,
// candidates are drawn from the spatial index rather than a full scan.
func (a *Arena) resolveScans(players []*Session) {
	field := a.field()
	for _, s := range players {
		if s.state == Dead || s.intents.Scan == nil {
			continue
		}
		sc := s.intents.Scan
		s.energy -= ScanCost(sc.Radius)
		if s.energy <= 0 {
			continue
		}

		for subject, translate := range a.candidatesInRadius(field, s.position, sc.Radius) {
			if subject == s || subject.state == Dead {
				continue
			}
			angle := geometry.Angle(s.position, translate)
			dist := geometry.Distance(s.position, translate)
			name, energy := subject.Name(), subject.energy
			a.deliver(s, func() error {
				return s.SignalDetect(name, angle, dist, energy)
			})
		}
	}
}

// cull transitions every player whose energy reached <= 0 this turn to
// DEAD: removed from the spatial index, position cleared, dead_turns set,
// and a death signal queued. Caller must hold a.mu.
func (a *Arena) cull(players []*Session) {
	for _, s := range players {
		if s.state == Dead || s.energy > 0 {
			continue
		}
		s.state = Dead
		s.deadTurns = a.Config.DeadTurnsInit
		if s.handle != nil {
			a.index.Remove(s.handle)
			s.handle = nil
		}
		s.position = geometry.Point{}
		turns := s.deadTurns
		a.deliver(s, func() error {
			return s.SignalDeath(turns)
		})
		a.Events.Emit("death", map[string]any{"name": s.Name()})
	}
}

// deliver queues an outbound send to run once the caller's lock is
// released. Sends must never happen while a.mu is held, so phase
// resolution collects them here instead of calling session.send inline.
func (a *Arena) deliver(s *Session, fn func() error) {
	a.pending = append(a.pending, pendingSend{session: s, fn: fn})
}

// pendingSend is one outbound message queued during a locked phase, to be
// flushed after the lock is released.
type pendingSend struct {
	session *Session
	fn      func() error
}

// flushPending sends every message queued by deliver during the last
// locked phase. Must be called with a.mu NOT held.
func (a *Arena) flushPending() {
	pending := a.pending
	a.pending = nil
	for _, p := range pending {
		if err := p.fn(); err != nil {
			a.Log.Debugw("send failed", "session", p.session.Name(), "error", err)
		}
	}
}
