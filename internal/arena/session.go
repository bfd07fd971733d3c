package arena

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/lobotomyarena/lobotomy/internal/geometry"
	"github.com/lobotomyarena/lobotomy/internal/protocol"
	"github.com/lobotomyarena/lobotomy/internal/spatial"
)

// Session is one connected player: its socket, its lifecycle state and its
// per-turn mutable fields (position, energy, buffered intents). Unlike the
// original player.py, a Session does not inherit from a spatial point —
// it has a position, and hands an opaque *spatial.Handle to the index.
//
// Every field below is mutated either by this session's own reader
// goroutine or by the turn engine; both hold the owning Arena's mu while
// doing so, per the coarse-lock policy the package comment describes.
type Session struct {
	id   string // uuid assigned at accept, used for log correlation before join
	name string

	arena *Arena
	conn  net.Conn

	writeMu sync.Mutex

	state     State
	position  geometry.Point
	energy    float64
	deadTurns int
	intents   Intents
	handle    *spatial.Handle
}

// NewSession wraps conn in a fresh, unjoined Session.
func NewSession(conn net.Conn, a *Arena) *Session {
	return &Session{
		id:    uuid.NewString(),
		arena: a,
		conn:  conn,
		state: Void,
	}
}

// Name returns the session's joined name, or its connection-scoped id if
// it hasn't joined yet — used for logging.
func (s *Session) Name() string {
	if s.name != "" {
		return s.name
	}
	return s.id
}

// send writes a single protocol line to the client. It must never be
// called while the caller holds the arena's lock: a slow or stalled
// client must not be able to stall the turn engine.
func (s *Session) send(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := io.WriteString(s.conn, line+"\n")
	return err
}

// sendError formats and sends the wire error line for errno.
func (s *Session) sendError(errno int) {
	_ = s.send(protocol.ErrorLine(errno, protocol.ErrorMessage(errno)))
}

// SignalBegin sends begin(turn, energy).
func (s *Session) SignalBegin(turn int, energy float64) error {
	return s.send(protocol.Begin(turn, energy))
}

// SignalEnd sends end.
func (s *Session) SignalEnd() error {
	return s.send(protocol.End())
}

// SignalHit sends hit(attacker, angle, charge).
func (s *Session) SignalHit(attacker string, angle, charge float64) error {
	return s.send(protocol.Hit(attacker, angle, charge))
}

// SignalDeath sends death(turns).
func (s *Session) SignalDeath(turns int) error {
	return s.send(protocol.Death(turns))
}

// SignalDetect sends detect(name, angle, distance, energy).
func (s *Session) SignalDetect(name string, angle, distance, energy float64) error {
	return s.send(protocol.Detect(name, angle, distance, energy))
}

// Run reads lines from the connection until it closes or errors, dispatches
// each to its handler, and tears the session down on exit.
func (s *Session) Run() {
	defer s.teardown()

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		s.handleLine(scanner.Text())
	}
}

func (s *Session) handleLine(line string) {
	cmd, err := protocol.Parse(line)
	if err != nil {
		if perr, ok := err.(*protocol.ParseError); ok {
			s.sendError(perr.Errno)
		}
		return
	}

	switch cmd.Name {
	case "join":
		s.handleJoin(cmd.PlayerName)
	case "spawn":
		s.handleSpawn()
	case "move":
		s.handleMove(cmd.Angle, cmd.Distance)
	case "fire":
		s.handleFire(cmd.Angle, cmd.Distance, cmd.Radius, cmd.Charge)
	case "scan":
		s.handleScan(cmd.Radius)
	}
}

// handleJoin implements the VOID -> DEAD(dead_turns=0) transition.
func (s *Session) handleJoin(name string) {
	a := s.arena
	a.mu.Lock()
	if s.state != Void {
		a.mu.Unlock()
		s.sendError(protocol.ErrWrongState)
		return
	}
	if !a.register(name, s) {
		a.mu.Unlock()
		s.sendError(protocol.ErrNameTaken)
		return
	}
	s.name = name
	s.state = Dead
	s.deadTurns = 0
	a.mu.Unlock()

	a.Events.Emit("join", map[string]any{"name": name})
	_ = s.send(protocol.Welcome(a.Config.ProtocolVersion, a.Config.MaxEnergy, a.Config.TurnHeal, a.Config.TurnDurationMS, -1))
}

// handleSpawn implements the DEAD -> WAITING transition: refused while
// dead_turns > 0, otherwise initializes energy and position and enters the
// in-game set.
func (s *Session) handleSpawn() {
	a := s.arena
	a.mu.Lock()
	if s.state != Dead {
		a.mu.Unlock()
		s.sendError(protocol.ErrWrongState)
		return
	}
	if s.deadTurns > 0 {
		a.mu.Unlock()
		s.sendError(protocol.ErrAlreadyDead)
		return
	}

	s.energy = a.Config.MaxEnergy
	s.position = a.randomPosition()
	s.intents.Clear()
	s.state = Waiting
	a.markInGame(s)
	s.handle = &spatial.Handle{X: s.position.X, Y: s.position.Y, Data: s}
	a.index.Add(s.handle)
	a.mu.Unlock()

	a.Events.Emit("spawn", map[string]any{"name": s.Name()})
}

// handleMove validates and buffers a move intent. Must be in ACTING state
// and pass the static energy-feasibility check (errno 101).
func (s *Session) handleMove(angle, distance float64) {
	a := s.arena
	a.mu.Lock()
	if s.state != Acting {
		a.mu.Unlock()
		s.sendError(protocol.ErrWrongState)
		return
	}
	if MoveCost(distance) > a.Config.MaxEnergy {
		a.mu.Unlock()
		s.sendError(protocol.ErrMoveInfeasible)
		return
	}
	s.intents.Move = &Intent{Angle: angle, Distance: distance}
	a.mu.Unlock()
}

// handleFire validates and buffers a fire intent (errno 102).
func (s *Session) handleFire(angle, distance, radius, charge float64) {
	a := s.arena
	a.mu.Lock()
	if s.state != Acting {
		a.mu.Unlock()
		s.sendError(protocol.ErrWrongState)
		return
	}
	if FireCost(distance, radius, charge) > a.Config.MaxEnergy {
		a.mu.Unlock()
		s.sendError(protocol.ErrFireInfeasible)
		return
	}
	s.intents.Fire = &Intent{Angle: angle, Distance: distance, Radius: radius, Charge: charge}
	a.mu.Unlock()
}

// handleScan validates and buffers a scan intent (errno 103).
func (s *Session) handleScan(radius float64) {
	a := s.arena
	a.mu.Lock()
	if s.state != Acting {
		a.mu.Unlock()
		s.sendError(protocol.ErrWrongState)
		return
	}
	if ScanCost(radius) > a.Config.MaxEnergy {
		a.mu.Unlock()
		s.sendError(protocol.ErrScanInfeasible)
		return
	}
	s.intents.Scan = &Intent{Radius: radius}
	a.mu.Unlock()
}

// teardown runs on disconnect or fatal I/O error: closes the socket first,
// then removes the session from the spatial index, in-game set and
// registry. Order follows player.py's shutdown() (socket close, then
// unregister last), so nothing can hand the dying session a fresh write
// once it's no longer reachable as a live connection.
func (s *Session) teardown() {
	_ = s.conn.Close()

	a := s.arena
	a.mu.Lock()
	if s.handle != nil {
		a.index.Remove(s.handle)
		s.handle = nil
	}
	a.unregister(s)
	a.mu.Unlock()
}
