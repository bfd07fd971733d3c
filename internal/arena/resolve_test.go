package arena

import (
	"io"
	"math"
	"net"
	"testing"

	"github.com/lobotomyarena/lobotomy/internal/geometry"
	"github.com/lobotomyarena/lobotomy/internal/spatial"
)

// spawnedSession builds an in-game, ACTING session at a fixed position
// without going through the wire protocol, for direct phase-resolution
// tests. Its connection is a pipe whose peer discards everything, so a
// turn tick can flush signals to it.
func spawnedSession(a *Arena, pos geometry.Point, energy float64) *Session {
	server, client := net.Pipe()
	go io.Copy(io.Discard, client)
	s := &Session{arena: a, conn: server, state: Acting, position: pos, energy: energy}
	a.markInGame(s)
	s.handle = &spatial.Handle{X: pos.X, Y: pos.Y, Data: s}
	a.index.Add(s.handle)
	return s
}

func TestMoveResolutionRelocatesOnSuccess(t *testing.T) {
	a := testArena()
	s := spawnedSession(a, geometry.Point{X: 0.5, Y: 0.5}, 1.0)
	s.intents.Move = &Intent{Angle: math.Pi / 2, Distance: 0.1}

	a.resolveMoves([]*Session{s})

	if !almostEqual(s.position.X, 0.6) || !almostEqual(s.position.Y, 0.5) {
		t.Fatalf("position = %+v, want (0.6, 0.5)", s.position)
	}
	if !almostEqual(s.energy, 0.8) {
		t.Fatalf("energy = %v, want 0.8", s.energy)
	}
}

func TestMoveResolutionWithLethalCostDoesNotRelocate(t *testing.T) {
	a := testArena()
	s := spawnedSession(a, geometry.Point{X: 0.5, Y: 0.5}, 0.1)
	s.intents.Move = &Intent{Angle: 0, Distance: 0.5} // cost 1.0 >= energy

	a.resolveMoves([]*Session{s})

	if s.position.X != 0.5 || s.position.Y != 0.5 {
		t.Fatalf("position should not change on lethal move cost, got %+v", s.position)
	}
	if s.energy > 0 {
		t.Fatalf("energy = %v, want <= 0", s.energy)
	}
}

func TestFireResolutionDamagesAndKillsSubject(t *testing.T) {
	a := testArena()
	attacker := spawnedSession(a, geometry.Point{X: 0, Y: 0}, 1.0)
	victim := spawnedSession(a, geometry.Point{X: 0.05, Y: 0.05}, 0.1)
	attacker.intents.Fire = &Intent{Angle: 0, Distance: 0, Radius: 0.1, Charge: 0.5}

	a.resolveFires([]*Session{attacker, victim})

	if victim.energy > 0 {
		t.Fatalf("victim.energy = %v, want <= 0", victim.energy)
	}
	// one hit for the victim, one for the attacker standing in its own blast.
	if len(a.pending) != 2 {
		t.Fatalf("expected two queued hit signals, got %d", len(a.pending))
	}
}

func TestFireResolutionCanDamageSelf(t *testing.T) {
	a := testArena()
	actor := spawnedSession(a, geometry.Point{X: 0, Y: 0}, 1.0)
	actor.intents.Fire = &Intent{Angle: 0, Distance: 0, Radius: 0.1, Charge: 0.9}

	a.resolveFires([]*Session{actor})

	if actor.energy >= 1.0 {
		t.Fatalf("actor should have taken its own blast damage, energy = %v", actor.energy)
	}
}

func TestScanResolutionDetectsOthersNotSelf(t *testing.T) {
	a := testArena()
	scanner := spawnedSession(a, geometry.Point{X: 0, Y: 0}, 1.0)
	other := spawnedSession(a, geometry.Point{X: 1.95, Y: 0}, 1.0)
	scanner.intents.Scan = &Intent{Radius: 0.3}

	a.resolveScans([]*Session{scanner, other})

	if len(a.pending) != 1 {
		t.Fatalf("expected exactly one detect message, got %d", len(a.pending))
	}
}

func TestScanResolutionNoDetectionsIfScannerDies(t *testing.T) {
	a := testArena()
	scanner := spawnedSession(a, geometry.Point{X: 0, Y: 0}, 0.1)
	other := spawnedSession(a, geometry.Point{X: 0.1, Y: 0}, 1.0)
	scanner.intents.Scan = &Intent{Radius: 0.3} // cost 0.36 > 0.1 energy

	a.resolveScans([]*Session{scanner, other})

	if len(a.pending) != 0 {
		t.Fatalf("expected no detections once the scan itself is lethal, got %d", len(a.pending))
	}
}

func TestCullTransitionsExhaustedPlayersToDead(t *testing.T) {
	a := testArena()
	s := spawnedSession(a, geometry.Point{X: 0.5, Y: 0.5}, -0.1)

	a.cull([]*Session{s})

	if s.state != Dead {
		t.Fatalf("state = %v, want Dead", s.state)
	}
	if s.deadTurns != a.Config.DeadTurnsInit {
		t.Fatalf("deadTurns = %v, want %v", s.deadTurns, a.Config.DeadTurnsInit)
	}
	if s.handle != nil {
		t.Fatalf("expected spatial handle to be cleared")
	}
}
