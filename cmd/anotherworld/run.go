package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anotherworld-go/engine/internal/backend"
	"github.com/anotherworld-go/engine/internal/engine"
	"github.com/anotherworld-go/engine/internal/logging"
)

// runCmd is kept as an explicit alias of the root command (§6.7 names
// no subcommand, only flags), the way the teacher's own CLI also
// exposes its behavior as both the default action and a named verb.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the interpreter",
	RunE:  runAnotherWorld,
}

var (
	flagDataDir         string
	flagPart            int
	flagSkipProtection  bool
	flagQuiet           bool
	flagDebugEngine     bool
	flagDebugVM         bool
	flagDebugVideo      bool
	flagDebugAudio      bool
	flagDebugResources  bool
	flagDebugBackend    bool
	flagScale           int
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagDataDir, "data", "", "path to the game's data directory (default ./share/another-world)")
	cmd.Flags().IntVar(&flagPart, "part", 0, "part index to boot into (default 1)")
	cmd.Flags().BoolVar(&flagSkipProtection, "skip-protection", false, "skip the copy-protection code entry screen")
	cmd.Flags().IntVar(&flagScale, "scale", 0, "window scale factor (default 3)")
	cmd.Flags().BoolVar(&flagQuiet, "quiet", false, "log errors only")
	cmd.Flags().BoolVar(&flagDebugEngine, "debug-engine", false, "enable debug logging for the engine")
	cmd.Flags().BoolVar(&flagDebugVM, "debug-vm", false, "enable debug logging for the bytecode VM")
	cmd.Flags().BoolVar(&flagDebugVideo, "debug-video", false, "enable debug logging for the video/rasterizer")
	cmd.Flags().BoolVar(&flagDebugAudio, "debug-audio", false, "enable debug logging for the audio mixer/sequencer")
	cmd.Flags().BoolVar(&flagDebugResources, "debug-resources", false, "enable debug logging for the resource manager")
	cmd.Flags().BoolVar(&flagDebugBackend, "debug-backend", false, "enable debug logging for the ebiten backend")
}

func init() {
	addRunFlags(runCmd)
}

// runAnotherWorld wires the CLI flags into engine.Config/backend.Config,
// then follows §2's corrected "Process shape": Engine.Run(ctx) starts
// on a background goroutine while backend.Run blocks the main
// goroutine, since ebiten requires its run loop to own it.
func runAnotherWorld(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	engineCfg := engine.Config{
		DataDir:        flagDataDir,
		InitialPart:    flagPart,
		SkipProtection: flagSkipProtection,
	}
	backendCfg := backend.Config{
		Scale: flagScale,
	}

	be := backend.New(backendCfg)

	eng, err := engine.New(engineCfg, be)
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErrC := make(chan error, 1)
	go func() {
		runErrC <- eng.Run(ctx)
	}()

	if err := be.Run(ctx); err != nil {
		stop()
		<-runErrC
		return fmt.Errorf("running backend: %w", err)
	}

	stop()
	if err := <-runErrC; err != nil {
		return fmt.Errorf("running engine: %w", err)
	}
	return nil
}

func applyLogFlags() {
	if flagQuiet {
		logging.SetQuiet()
	}
	if flagDebugEngine {
		logging.SetDebug(logging.Engine)
	}
	if flagDebugVM {
		logging.SetDebug(logging.VM)
	}
	if flagDebugVideo {
		logging.SetDebug(logging.Video)
	}
	if flagDebugAudio {
		logging.SetDebug(logging.Audio)
	}
	if flagDebugResources {
		logging.SetDebug(logging.Resources)
	}
	if flagDebugBackend {
		logging.SetDebug(logging.Backend)
	}
}
