package main

import (
	"fmt"

	"github.com/milk9111/lilah/engine"
	"github.com/milk9111/lilah/prefabs"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the project loads",
	Long: `Load the config, every asset, every script module and every prefab.
The first failure is printed and the exit status is non-zero.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := engine.Open(cfg, nil)
	if err != nil {
		return err
	}
	for _, p := range cfg.Prefabs {
		if _, err := prefabs.BuildFile(cfg.FS, p); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d modules, %d prefabs, %d textures, %d scenes)\n",
		cfg.Title, len(e.Bridge.Modules()), len(cfg.Prefabs), len(e.State.Textures), len(e.State.Scenes))
	return nil
}
