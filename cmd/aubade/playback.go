package main

import (
	"github.com/spf13/cobra"
)

func playCommand() *cobra.Command {
	var playlistID string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start playback of a playlist (default: the alarm playlist)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.Play(ctx, playlistID); err != nil {
				return err
			}
			return app.ack()
		},
	}
	cmd.Flags().StringVarP(&playlistID, "playlist", "p", "", "playlist id")

	return cmd
}

func stopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop playback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.Stop(ctx); err != nil {
				return err
			}
			return app.ack()
		},
	}
}

func confirmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a manual start after blocked autoplay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.Confirm(ctx); err != nil {
				return err
			}
			return app.ack()
		},
	}
}
