package main

import (
	"context"

	"github.com/spf13/cobra"

	"aubade/internal/core"
)

func lsCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List nodes on the broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			result, err := app.service.ListNodes(ctx, kind)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "filter by node kind")

	return cmd
}

func statusCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show alarm and playback status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			if watch {
				return watchStatus(app)
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			result, err := app.service.Status(ctx)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "watch status updates")

	return cmd
}

func watchStatus(app *app) error {
	ctx := context.Background()
	initial, err := app.service.Status(ctx)
	if err != nil {
		return err
	}
	if err := app.printer.Print(initial); err != nil {
		return err
	}

	states, errs := app.service.WatchStatus(ctx)
	for {
		select {
		case state, ok := <-states:
			if !ok {
				return nil
			}
			result := core.StatusResult{NodeID: initial.NodeID, State: state}
			if err := app.printer.Print(result); err != nil {
				return err
			}
		case err := <-errs:
			if err != nil {
				return err
			}
		}
	}
}
