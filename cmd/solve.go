package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/isnet/app"
	"github.com/kilianp07/isnet/core/report"
	"github.com/kilianp07/isnet/infra/logger"
)

func newSolveCmd(o *rootOptions) *cobra.Command {
	var (
		workbookPath string
		indicators   bool
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Build and solve the allocation model, then print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			if workbookPath != "" {
				o.cfg.Input.Path = workbookPath
			}
			return solve(ctx, o, cmd, report.Options{Indicators: indicators})
		},
	}
	cmd.Flags().StringVar(&workbookPath, "workbook", "", "input workbook, overrides input.path")
	cmd.Flags().BoolVar(&indicators, "indicators", false, "also print active pathway indicators")
	return cmd
}

// signalContext is cancelled by SIGINT or SIGTERM. The first signal also
// restores the default handlers, so a second one terminates the process.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

func solve(ctx context.Context, o *rootOptions, cmd *cobra.Command, opts report.Options) error {
	svc, err := app.New(o.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	res, err := svc.Solve(ctx)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), res, opts)
}
