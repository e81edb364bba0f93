package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/isnet/config"
	"github.com/kilianp07/isnet/infra/logger"
)

type rootOptions struct {
	cfgPath string
	cfg     *config.Config
}

// NewRootCmd builds the isnet command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "isnet",
		Short:         "Industrial symbiosis greenhouse network planner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
				return err
			}
			o.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&o.cfgPath, "config", "c", "", "configuration file (defaults apply when empty)")
	root.AddCommand(newSolveCmd(o), newExportCmd(o), newTemplateCmd(o))
	return root
}

// Execute runs the CLI.
func Execute() error { return NewRootCmd().Execute() }
