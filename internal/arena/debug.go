package arena

// DebugController is the seam a --debug front-end uses to single-step the
// turn engine and inspect in-game players. It deliberately does not
// reproduce manual_control.py's full cmd.Cmd operator REPL (puppeteering
// hit/death/detect/error on a chosen player) — that's an interactive
// console application, not arena behavior — but gives a caller enough to
// build one.
type DebugController struct {
	server *Server
}

// NewDebugController wraps a Server that was built with cfg.Debug set.
func NewDebugController(s *Server) *DebugController {
	return &DebugController{server: s}
}

// Advance releases the turn engine from its current PromptClock wait,
// letting exactly one turn proceed. No-op if the server wasn't built in
// debug mode.
func (d *DebugController) Advance() {
	if d.server.DebugAdvance == nil {
		return
	}
	d.server.DebugAdvance <- struct{}{}
}

// Names reports the names of every currently in-game session, for a
// --debug_names front-end to print as the in-game roster.
func (d *DebugController) Names() []string {
	a := d.server.Arena
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.inGame))
	for s := range a.inGame {
		names = append(names, s.Name())
	}
	return names
}
