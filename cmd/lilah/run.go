package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/milk9111/lilah/config"
	"github.com/milk9111/lilah/engine"
	"github.com/milk9111/lilah/platform/ebitenplat"
	"github.com/milk9111/lilah/platform/headless"
	"github.com/milk9111/lilah/prefabs"
	"github.com/milk9111/lilah/savedata"
	"github.com/milk9111/lilah/scripting"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var (
	flagProfile  string
	flagHeadless bool
	flagFrames   int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the project",
	Long: `Open the project window and run until it is closed.

Controls:
  Esc   - Pause menu
  F3    - Toggle collider outlines and the FPS line
  F9    - Copy a YAML snapshot of the world to the clipboard
  F11   - Toggle fullscreen

Examples:
  lilah run
  lilah run --config ./mygame/lilah.yaml
  lilah run --headless --frames 600
  lilah run --profile cpu`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagProfile, "profile", "", "Write a cpu or mem profile to the working directory")
	runCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Run without a window")
	runCmd.Flags().IntVar(&flagFrames, "frames", 0, "Stop after this many frames (headless only, 0 = forever)")
}

func runRun(cmd *cobra.Command, args []string) error {
	switch flagProfile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile %q", flagProfile)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	var opts []engine.Option
	if cfg.HotReload {
		w, err := openWatcher(cfg)
		if err != nil {
			return err
		}
		if w != nil {
			defer w.Close()
			opts = append(opts, engine.WithWatcher(w))
		}
	}

	if flagHeadless {
		return runHeadless(cmd.Context(), cfg, storage, opts)
	}

	audio := ebitenplat.NewAudio()
	e, err := engine.Open(cfg, storage, append(opts, engine.WithAudio(audio))...)
	if err != nil {
		return err
	}
	return ebitenplat.Run(e, audio)
}

func runHeadless(ctx context.Context, cfg *config.Config, storage scripting.Storage, opts []engine.Option) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	e, err := engine.Open(cfg, storage, append(opts, engine.WithAudio(headless.NewAudio()))...)
	if err != nil {
		return err
	}
	p := headless.New(cfg.Window.Width, cfg.Window.Height, cfg.FPS, flagFrames)
	if err := e.Run(ctx, p, engine.NopRenderer{}); err != nil && ctx.Err() == nil {
		return err
	}
	for _, line := range e.MetricsSummary() {
		fmt.Println(line)
	}
	return nil
}

// openStorage opens the save database. Projects without a savedata path
// run without persistence.
func openStorage(cfg *config.Config) (scripting.Storage, func(), error) {
	if cfg.SaveData == "" {
		return nil, func() {}, nil
	}
	store, err := savedata.Open(cfg.SaveData)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

// openWatcher watches the project directory. Embedded projects have none.
func openWatcher(cfg *config.Config) (*prefabs.Watcher, error) {
	if cfg.Dir == "" {
		return nil, nil
	}
	return prefabs.NewWatcher(cfg.Dir)
}
