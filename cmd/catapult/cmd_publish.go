package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <channel> <message>",
		Short: "Publish a message to a NATS subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			q, err := a.openQueue(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, q.Close()) }()
			return q.Publish(cmd.Context(), args[0], []byte(args[1]))
		},
	}
}
