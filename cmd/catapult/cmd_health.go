package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/libcatapult/catapult/component"
	"github.com/libcatapult/catapult/storage"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Connect to the configured backend and report its health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg := a.cfg.Storage
			cfg.Enabled = true
			sc := storage.NewComponent(cfg, a.cfg.ProviderConfig(), a.log)

			reg := component.NewRegistry(a.log)
			if err := reg.Register(sc); err != nil {
				return err
			}
			startErr := reg.StartAll(ctx)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", sc.Describe().Details)
			unhealthy := false
			for _, h := range reg.HealthAll(ctx) {
				fmt.Fprintf(out, "%s: %s", h.Name, h.Status)
				if h.Message != "" {
					fmt.Fprintf(out, " (%s)", h.Message)
				}
				fmt.Fprintln(out)
				if h.Status != component.StatusHealthy {
					unhealthy = true
				}
			}

			err := errors.Join(startErr, reg.StopAll(ctx))
			if err == nil && unhealthy {
				err = errors.New("storage is unhealthy")
			}
			return err
		},
	}
}
