package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func playlistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "playlist",
		Aliases: []string{"pl"},
		Short:   "Manage wake-up playlists",
	}
	cmd.AddCommand(playlistCreateCommand())
	cmd.AddCommand(playlistListCommand())
	cmd.AddCommand(playlistShowCommand())
	cmd.AddCommand(playlistAddCommand())
	cmd.AddCommand(playlistRemoveCommand())
	cmd.AddCommand(playlistMoveCommand())
	cmd.AddCommand(playlistRenameCommand())
	cmd.AddCommand(playlistDeleteCommand())

	return cmd
}

func playlistCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			id, err := app.service.PlaylistCreate(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, id)
			return err
		},
	}
}

func playlistListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List playlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			result, err := app.service.PlaylistList(ctx)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func playlistShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <playlist-id>",
		Short: "Show a playlist's tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			result, err := app.service.PlaylistShow(ctx, args[0])
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func playlistAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <playlist-id> <media-id>...",
		Short: "Append tracks to a playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.PlaylistAddTracks(ctx, args[0], args[1:]); err != nil {
				return err
			}
			return app.ack()
		},
	}
}

func playlistRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <playlist-id> <index>",
		Short: "Remove the track at an index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.PlaylistRemoveTrack(ctx, args[0], index); err != nil {
				return err
			}
			return app.ack()
		},
	}
}

func playlistMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <playlist-id> <from> <to>",
		Short: "Move a track to a new position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("from must be a number: %w", err)
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("to must be a number: %w", err)
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.PlaylistMoveTrack(ctx, args[0], from, to); err != nil {
				return err
			}
			return app.ack()
		},
	}
}

func playlistRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <playlist-id> <name>",
		Short: "Rename a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.PlaylistRename(ctx, args[0], args[1]); err != nil {
				return err
			}
			return app.ack()
		},
	}
}

func playlistDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <playlist-id>",
		Short: "Delete a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.PlaylistDelete(ctx, args[0]); err != nil {
				return err
			}
			return app.ack()
		},
	}
}
