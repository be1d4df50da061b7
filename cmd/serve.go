package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstudent/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trainer over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			e.cfg.HTTP.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e.logger.Info("starting mathstudent api", "addr", e.cfg.HTTP.Addr, "backend", e.cfg.Backend, "mode", e.trainer.Mode())
		return api.NewServer(e.cfg.HTTP, e.trainer, e.logger).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides MATHSTUDENT_HTTP_ADDR)")
}
