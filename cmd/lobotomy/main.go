package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lobotomyarena/lobotomy/internal/arena"
	"github.com/lobotomyarena/lobotomy/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:   "lobotomy",
		Short: "LoBotomy turn-synchronous combat arena server",
		RunE:  run,
	}

	root.Flags().String("config", "", "path to a config file")
	root.Flags().BoolP("debug", "d", false, "single-step turns, waiting for an operator prompt instead of the wall clock")
	root.Flags().Bool("debug_names", false, "list in-game player names at each debug prompt")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	debugNames, _ := cmd.Flags().GetBool("debug_names")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.DebugNames = debugNames
	// --debug_names implies --debug: the roster it turns on is printed only
	// by the single-step debug prompt.
	cfg.Debug = debug || debugNames

	logger, err := buildLogger(debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	srv := arena.NewServer(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Debug {
		go runDebugPrompt(ctx, arena.NewDebugController(srv), cfg.DebugNames, log)
	}

	if err := srv.Run(ctx); err != nil {
		log.Errorw("server exited with error", "error", err)
		return err
	}
	log.Info("shut down gracefully")
	return nil
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
