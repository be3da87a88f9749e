package main

import (
	"github.com/spf13/cobra"

	"github.com/tandemkit/tandem/internal/serve"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow behind the hosted prediction surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}

			runner, cleanup, err := buildRunner(cmd.Context(), cfg)
			if err != nil {
				cleanup()
				return err
			}
			defer cleanup()

			return serve.NewServer(runner).ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
