package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/connector"
	"github.com/dgnsrekt/notifications-monitor/internal/feed"
)

func pullCmd() *cobra.Command {
	var (
		since    string
		lookback time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Run a single polling cycle and print the notifications",
		Long: `Run one polling cycle, draining every available page, and print each
notification as a JSON line on stdout. Configured sinks are not used.

Since format: RFC 3339 timestamp or YYYY-MM-DD (UTC midnight).

Examples:
  # Everything from the last 10 minutes
  notifications-monitor pull --lookback 10m

  # Everything since a given instant
  notifications-monitor pull --since 2024-01-01T09:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseSince(since, lookback, time.Now())
			if err != nil {
				return err
			}
			return pullOnce(cmd.Context(), feed.NewCursor(start), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "start of the pull (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().DurationVar(&lookback, "lookback", 5*time.Minute, "start the pull this far in the past when --since is not set")

	return cmd
}

// parseSince resolves the start of a one-shot pull.
func parseSince(since string, lookback time.Duration, now time.Time) (time.Time, error) {
	if since == "" {
		return now.Add(-lookback), nil
	}
	if t, err := time.Parse(time.RFC3339, since); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", since)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q (use RFC 3339 or YYYY-MM-DD)", since)
	}
	return t, nil
}

// stdoutSink prints dated entries as JSON lines.
type stdoutSink struct {
	enc *json.Encoder
}

func (s *stdoutSink) Name() string { return "stdout" }

func (s *stdoutSink) Deliver(_ context.Context, entry feed.DatedEntry) {
	if err := s.enc.Encode(entry); err != nil {
		logger.Warn("writing entry", zap.Error(err))
	}
}

func pullOnce(ctx context.Context, cursor feed.Cursor, out io.Writer) error {
	conn := connector.New(newAPIClient(), []connector.Sink{&stdoutSink{enc: json.NewEncoder(out)}},
		logger.Named("connector"), connector.WithCursor(cursor))

	result, err := conn.Cycle(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "pages: %d, notifications: %d, next cursor: %s\n",
		result.Pages, result.Entries, result.Cursor.Encode())
	return nil
}
