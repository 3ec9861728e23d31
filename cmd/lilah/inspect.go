package main

import (
	"context"
	"fmt"

	"github.com/milk9111/lilah/engine"
	"github.com/milk9111/lilah/platform/headless"
	"github.com/milk9111/lilah/prefabs"
	"github.com/spf13/cobra"
)

var (
	flagInspectFrames int
	flagMetrics       bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the world after a few headless frames",
	Long: `Run the project without a window and print every game object as
prefab YAML. Nothing is saved.

Examples:
  lilah inspect
  lilah inspect --frames 120 --metrics`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&flagInspectFrames, "frames", 1, "Frames to run before printing")
	inspectCmd.Flags().BoolVar(&flagMetrics, "metrics", false, "Also print frame timings")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := engine.Open(cfg, nil, engine.WithFixedStep(1/float64(cfg.FPS)), engine.WithAudio(headless.NewAudio()))
	if err != nil {
		return err
	}
	p := headless.New(cfg.Window.Width, cfg.Window.Height, 0, flagInspectFrames)
	if err := e.Run(context.Background(), p, engine.NopRenderer{}); err != nil {
		return err
	}
	data, err := prefabs.Snapshot(e.State)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	out.Write(data)
	if flagMetrics {
		for _, line := range e.MetricsSummary() {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}
