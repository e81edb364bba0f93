package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/isnet/app"
	"github.com/kilianp07/isnet/infra/logger"
)

func newTemplateCmd(o *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a zero-filled input workbook with the configured dimensions and layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Template(o.cfg, out); err != nil {
				return err
			}
			logger.New("main").Infof("wrote template %s", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "input.xlsx", "output workbook")
	return cmd
}
