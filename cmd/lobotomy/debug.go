package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/lobotomyarena/lobotomy/internal/arena"
)

// runDebugPrompt is the operator console for --debug: it single-steps the
// turn engine instead of letting it run on the wall clock. It is the Go
// analogue of manual_control.py's cmd.Cmd loop, scaled down to the one
// thing that loop actually gated: advancing time. Puppeteering a single
// player's hit/death/detect/error signals, which manual_control.py also
// offered, is out of scope here.
func runDebugPrompt(ctx context.Context, ctl *arena.DebugController, showNames bool, log *zap.SugaredLogger) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("lobotomy debug prompt: press enter to advance one turn, 'q' to stop watching")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if showNames {
			fmt.Printf("in-game: %s\n", strings.Join(ctl.Names(), ", "))
		}
		fmt.Print("> ")

		if !scanner.Scan() {
			return
		}
		if strings.TrimSpace(scanner.Text()) == "q" {
			log.Info("debug prompt stopped watching; turns now require manual advance with no further UI")
			return
		}
		ctl.Advance()
	}
}
