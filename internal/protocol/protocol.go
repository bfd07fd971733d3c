// Package protocol implements LoBotomy's wire format: ASCII lines,
// fields separated by a single space, floats formatted to round-trip
// exactly. It mirrors the original lobotomy/protocol.py command table —
// a name mapped to a fixed sequence of argument types — but expressed as
// typed Go structs decoded by a small arity-checked tokenizer instead of
// Python's *args coercion.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Error codes, wire-visible via the error command.
const (
	ErrMoveInfeasible  = 101
	ErrFireInfeasible  = 102
	ErrScanInfeasible  = 103
	ErrAlreadyDead     = 104
	ErrNameTaken       = 201
	ErrWrongState      = 202
	ErrUnknownCommand  = 301
	ErrMalformed       = 302
)

// Messages reported back to the client, matching §7's explanatory text.
var errMessages = map[int]string{
	ErrMoveInfeasible: "move infeasible, cost exceeds max energy",
	ErrFireInfeasible: "fire infeasible, cost exceeds max energy",
	ErrScanInfeasible: "scan infeasible, cost exceeds max energy",
	ErrAlreadyDead:    "action impossible, you are dead",
	ErrNameTaken:      "name taken, choose another one",
	ErrWrongState:     "command not valid in current state",
	ErrUnknownCommand: "unknown command",
	ErrMalformed:      "malformed command",
}

// ErrorMessage returns the canonical explanation for a wire errno, or a
// generic fallback for an unrecognized one.
func ErrorMessage(errno int) string {
	if m, ok := errMessages[errno]; ok {
		return m
	}
	return "unspecified error"
}

// ParseError is returned by Parse when a line fails to decode; Errno is
// always ErrUnknownCommand or ErrMalformed, ready to send straight back to
// the client.
type ParseError struct {
	Errno   int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d: %s", e.Errno, e.Message)
}

// Command is a decoded client-to-server line.
type Command struct {
	Name string

	// Join
	PlayerName string

	// Move, Fire
	Angle    float64
	Distance float64

	// Fire, Scan
	Radius float64
	Charge float64
}

// field describes one positional argument of a command, naming how to
// parse it.
type field struct {
	kind string // "string" or "float"
}

var commandFields = map[string][]field{
	"join":  {{"string"}},
	"spawn": {},
	"move":  {{"float"}, {"float"}},
	"fire":  {{"float"}, {"float"}, {"float"}, {"float"}},
	"scan":  {{"float"}},
}

// Parse decodes a single client line (without its trailing newline) into a
// Command. An unrecognized command name fails with ErrUnknownCommand;
// wrong arity or an unparsable token fails with ErrMalformed.
func Parse(line string) (Command, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{}, &ParseError{Errno: ErrUnknownCommand, Message: ErrorMessage(ErrUnknownCommand)}
	}

	name := tokens[0]
	fields, ok := commandFields[name]
	if !ok {
		return Command{}, &ParseError{Errno: ErrUnknownCommand, Message: ErrorMessage(ErrUnknownCommand)}
	}

	args := tokens[1:]
	if len(args) != len(fields) {
		return Command{}, &ParseError{Errno: ErrMalformed, Message: ErrorMessage(ErrMalformed)}
	}

	cmd := Command{Name: name}
	parsed := make([]float64, 0, len(fields))
	for i, f := range fields {
		switch f.kind {
		case "string":
			if name == "join" {
				cmd.PlayerName = args[i]
			}
		case "float":
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return Command{}, &ParseError{Errno: ErrMalformed, Message: ErrorMessage(ErrMalformed)}
			}
			parsed = append(parsed, v)
		}
	}

	switch name {
	case "move":
		cmd.Angle, cmd.Distance = parsed[0], parsed[1]
	case "fire":
		cmd.Angle, cmd.Distance, cmd.Radius, cmd.Charge = parsed[0], parsed[1], parsed[2], parsed[3]
	case "scan":
		cmd.Radius = parsed[0]
	}

	return cmd, nil
}

// formatFloat renders f with the minimum digits that round-trip exactly,
// satisfying the wire contract's >= 9 significant digit requirement.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Welcome builds the line sent once after a successful join.
func Welcome(version int, maxEnergy, turnHeal float64, turnDurationMS, turnsLeft int) string {
	return fmt.Sprintf("welcome %d %s %s %d %d", version, formatFloat(maxEnergy), formatFloat(turnHeal), turnDurationMS, turnsLeft)
}

// Begin builds the line sent at the start of a player's acting phase.
func Begin(turn int, energy float64) string {
	return fmt.Sprintf("begin %d %s", turn, formatFloat(energy))
}

// End builds the line sent when a player's acting phase closes.
func End() string {
	return "end"
}

// Hit builds the line sent to a player who took blast damage.
func Hit(attacker string, angle, charge float64) string {
	return fmt.Sprintf("hit %s %s %s", attacker, formatFloat(angle), formatFloat(charge))
}

// Death builds the line sent when a player's energy reaches zero.
func Death(turns int) string {
	return fmt.Sprintf("death %d", turns)
}

// Detect builds the line sent to a scanning player for each subject found.
func Detect(name string, angle, distance, energy float64) string {
	return fmt.Sprintf("detect %s %s %s %s", name, formatFloat(angle), formatFloat(distance), formatFloat(energy))
}

// ErrorLine builds the line sent when a command is rejected.
func ErrorLine(errno int, message string) string {
	return fmt.Sprintf("error %d %s", errno, message)
}
