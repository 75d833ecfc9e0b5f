package main

import (
	"github.com/spf13/cobra"
)

func alarmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alarm",
		Short: "Manage the wake-up alarm",
	}
	cmd.AddCommand(alarmSetCommand())
	cmd.AddCommand(alarmOnCommand())
	cmd.AddCommand(alarmOffCommand())

	return cmd
}

func alarmSetCommand() *cobra.Command {
	var (
		playlistID string
		memo       string
	)

	cmd := &cobra.Command{
		Use:   "set <HH:MM>",
		Short: "Set the alarm time, playlist and memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.AlarmSet(ctx, args[0], playlistID, memo); err != nil {
				return err
			}
			return app.ack()
		},
	}
	cmd.Flags().StringVarP(&playlistID, "playlist", "p", "", "playlist id to wake up to")
	cmd.Flags().StringVarP(&memo, "memo", "m", "", "note shown with the alarm")

	return cmd
}

func alarmOnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "on",
		Short: "Arm the alarm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.AlarmEnable(ctx); err != nil {
				return err
			}
			return app.ack()
		},
	}
}

func alarmOffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "off",
		Short: "Disarm the alarm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.AlarmDisable(ctx); err != nil {
				return err
			}
			return app.ack()
		},
	}
}
