package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "catapult",
		Short: "Move files between local disk and object storage",
		Long: `catapult talks to one storage backend (s3, azblob or local) chosen in
config, and can publish messages to a NATS server.

Configuration is read from config.yml, an optional .env file and the
environment, e.g. STORAGE_PROVIDER=s3 S3_BUCKET=reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "path to config.yml (searched for when empty)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "path to a .env file (searched for when empty)")

	root.AddCommand(
		newCountCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newPutCmd(a),
		newCatCmd(a),
		newPublishCmd(a),
		newHealthCmd(a),
		newVersionCmd(),
	)
	return root
}

// execute runs root and then flushes telemetry. cobra skips post-run hooks
// when a command fails, so teardown happens here to keep the spans and
// metrics of the failed operation.
func execute(ctx context.Context, a *app, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.teardown(context.WithoutCancel(ctx)))
}
