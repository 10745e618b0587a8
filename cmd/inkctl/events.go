package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/platform/config"
	"inkwell/internal/platform/kafka"
	"inkwell/internal/post/events"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the post event stream",
	}
	cmd.AddCommand(newEventsTailCmd())
	return cmd
}

func newEventsTailCmd() *cobra.Command {
	var (
		brokers []string
		topic   string
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print post events from the start of the topic until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv().Kafka
			if len(brokers) == 0 {
				brokers = cfg.Brokers
			}
			if topic == "" {
				topic = cfg.Topic
			}
			if len(brokers) == 0 {
				return errors.New("no brokers configured: set KAFKA_BROKERS or --brokers")
			}
			return kafka.Tail(cmd.Context(), brokers, topic, printEvent(cmd.OutOrStdout()))
		},
	}
	cmd.Flags().StringSliceVar(&brokers, "brokers", nil, "Kafka seed brokers (default $KAFKA_BROKERS)")
	cmd.Flags().StringVar(&topic, "topic", "", "Event topic (default $KAFKA_TOPIC)")
	return cmd
}

// printEvent writes one line per record. Records that do not decode are
// reported and skipped.
func printEvent(w io.Writer) kafka.Handler {
	return func(_ context.Context, msg *kafka.Message) error {
		evt, err := events.Decode(msg.Value)
		if err != nil {
			_, werr := fmt.Fprintf(w, "%s  undecodable record key=%s: %v\n",
				msg.Timestamp.UTC().Format(time.RFC3339), msg.Key, err)
			return werr
		}
		line := fmt.Sprintf("%s  %-15s post=%s slug=%s author=%s",
			evt.OccurredAt.UTC().Format(time.RFC3339), evt.Type, evt.PostID, evt.Slug, evt.AuthorID)
		if evt.CommentID != nil {
			line += " comment=" + evt.CommentID.String()
		}
		if evt.RequestID != "" {
			line += " request=" + evt.RequestID
		}
		_, err = fmt.Fprintln(w, line)
		return err
	}
}
