package main

import (
	"time"

	"github.com/spf13/cobra"
)

func mediaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Manage stored wake-up media",
	}
	cmd.AddCommand(mediaAddCommand())
	cmd.AddCommand(mediaImportFeedCommand())
	cmd.AddCommand(mediaListCommand())
	cmd.AddCommand(mediaRenameCommand())
	cmd.AddCommand(mediaRemoveCommand())

	return cmd
}

func mediaAddCommand() *cobra.Command {
	var (
		name     string
		mimeType string
		kind     string
	)

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Upload a local media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			// Uploads carry the whole file; give them more room
			// than the default command timeout.
			timeout := app.timeout
			if timeout < 60*time.Second {
				timeout = 60 * time.Second
			}
			ctx, cancel := withTimeout(timeout)
			defer cancel()
			result, err := app.service.MediaAdd(ctx, args[0], name, mimeType, kind)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the file name)")
	cmd.Flags().StringVar(&mimeType, "mime", "", "MIME type (defaults from the extension)")
	cmd.Flags().StringVar(&kind, "kind", "", "audio or video")

	return cmd
}

func mediaImportFeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-feed <url>",
		Short: "Import the newest episode of a podcast feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			timeout := app.timeout
			if timeout < 2*time.Minute {
				timeout = 2 * time.Minute
			}
			ctx, cancel := withTimeout(timeout)
			defer cancel()
			result, err := app.service.MediaImportFeed(ctx, args[0])
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func mediaListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List stored media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			result, err := app.service.MediaList(ctx)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}
}

func mediaRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <media-id> <name>",
		Short: "Rename a media entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.MediaRename(ctx, args[0], args[1]); err != nil {
				return err
			}
			return app.ack()
		},
	}
}

func mediaRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <media-id>",
		Short: "Remove a media entry and its stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := fromContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(app.timeout)
			defer cancel()
			if err := app.service.MediaRemove(ctx, args[0]); err != nil {
				return err
			}
			return app.ack()
		},
	}
}
