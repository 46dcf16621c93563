package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhonnyo88/devteam-sub001/internal/printer"
)

var watchOutputFormat string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream pipeline events in real time",
	Long: `Subscribe to the instance's pipeline event channel and stream work
lifecycle events (delegated, started, completed, failed, cancelled, retried)
as they happen.

Output Formats:
  default - Human-readable colored lines
  json    - Line-delimited JSON for programmatic processing

Examples:
  # Watch the default instance
  devteam watch

  # Export events as JSON
  devteam watch --output=json > events.jsonl`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchOutputFormat != "default" && watchOutputFormat != "json" {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	client, err := newStoreClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscription, err := client.SubscribeEvents(ctx)
	if err != nil {
		return printer.Error(
			"failed to subscribe to pipeline events",
			err.Error(),
			[]string{"Check that Redis is reachable"},
		)
	}
	defer subscription.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	printer.Step("watching pipeline events (ctrl-c to stop)\n")
	for {
		select {
		case <-sigCh:
			return nil
		case err, ok := <-subscription.Errors():
			if !ok {
				return nil
			}
			printer.Warning("skipped event: %v\n", err)
		case event, ok := <-subscription.Events():
			if !ok {
				return nil
			}
			if watchOutputFormat == "json" {
				line, err := json.Marshal(event)
				if err != nil {
					printer.Warning("unencodable event: %v\n", err)
					continue
				}
				fmt.Println(string(line))
				continue
			}
			printer.Event(event)
		}
	}
}
