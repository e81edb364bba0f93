package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/isnet/app"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	var workbookPath, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the allocation model in LP format without solving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workbookPath != "" {
				o.cfg.Input.Path = workbookPath
			}
			if out == "-" {
				return app.Export(o.cfg, cmd.OutOrStdout())
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := app.Export(o.cfg, f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&workbookPath, "workbook", "", "input workbook, overrides input.path")
	cmd.Flags().StringVarP(&out, "output", "o", "model.lp", "output file, - for stdout")
	return cmd
}
