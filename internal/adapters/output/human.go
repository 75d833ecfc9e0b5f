package output

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"aubade/internal/core"
)

// HumanPrinter prints human-readable output.
type HumanPrinter struct{}

// Print renders human output.
func (HumanPrinter) Print(v any) error {
	switch data := v.(type) {
	case core.NodesResult:
		return printNodes(data)
	case core.StatusResult:
		return printStatus(data)
	case core.MediaAddResult:
		_, err := fmt.Fprintf(os.Stdout, "added %s (%s)\n", data.Name, data.MediaID)
		return err
	case core.MediaListResult:
		return printMedia(data)
	case core.PlaylistListResult:
		return printPlaylists(data)
	case core.PlaylistShowResult:
		return printPlaylistShow(data)
	case core.RawResult:
		return JSONPrinter{}.Print(data.Data)
	default:
		_, err := fmt.Fprintln(os.Stdout, "ok")
		return err
	}
}

func printNodes(result core.NodesResult) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "NAME\tKIND\tNODE_ID"); err != nil {
		return err
	}
	for _, node := range result.Nodes {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", node.Name, node.Kind, node.NodeID); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printStatus(result core.StatusResult) error {
	if result.State.Alarm != nil {
		alarm := result.State.Alarm
		armed := "off"
		if alarm.IsOn {
			armed = "on"
		}
		line := fmt.Sprintf("alarm %s [%s]", alarm.Time, armed)
		if alarm.NextTrigger > 0 {
			line += "  next " + time.Unix(alarm.NextTrigger, 0).Format("Mon 15:04")
		}
		if alarm.Memo != "" {
			line += fmt.Sprintf("  %q", alarm.Memo)
		}
		if _, err := fmt.Fprintln(os.Stdout, line); err != nil {
			return err
		}
	}
	if result.State.Playback != nil {
		pb := result.State.Playback
		line := fmt.Sprintf("playback [%s]", pb.Status)
		if pb.TrackName != "" {
			line += fmt.Sprintf("  %s (track %d)", pb.TrackName, pb.Index+1)
		}
		if pb.Progress != nil && pb.Progress.TotalSeconds > 0 {
			line += fmt.Sprintf("  %s left (%d%%)",
				formatSeconds(pb.Progress.RemainingSeconds), pb.Progress.Percent)
		}
		if pb.NeedsManualStart {
			line += "  (run `aubade confirm` to start)"
		}
		if pb.Message != "" {
			line += "  " + pb.Message
		}
		if _, err := fmt.Fprintln(os.Stdout, strings.TrimSpace(line)); err != nil {
			return err
		}
	}
	return nil
}

func printMedia(result core.MediaListResult) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "NAME\tKIND\tLEN\tMEDIA_ID"); err != nil {
		return err
	}
	for _, entry := range result.Entries {
		name := entry.Name
		if !entry.HasBlob {
			name += " (missing)"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			name, entry.Kind, formatSeconds(entry.DurationSeconds), entry.MediaID); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printPlaylists(result core.PlaylistListResult) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "NAME\tTRACKS\tPLAYLIST_ID"); err != nil {
		return err
	}
	for _, pl := range result.Playlists {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\n", pl.Name, pl.TrackCount, pl.PlaylistID); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printPlaylistShow(result core.PlaylistShowResult) error {
	if _, err := fmt.Fprintf(os.Stdout, "%s (%s)\n", result.Playlist.Name, result.Playlist.PlaylistID); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "INDEX\tNAME\tLEN\tMEDIA_ID"); err != nil {
		return err
	}
	for i, track := range result.Playlist.Tracks {
		name := track.Name
		if !track.HasBlob {
			name += " (missing)"
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			i, name, formatSeconds(track.DurationSeconds), track.MediaID); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	minutes := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
