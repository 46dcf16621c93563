package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhonnyo88/devteam-sub001/internal/printer"
	"github.com/jhonnyo88/devteam-sub001/internal/store"
)

var statusStoryID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue status and story history",
	Long: `Show the coordinator's last persisted queue snapshot: pending and
active work, and registered agents by type.

With --story, also lists the archived pipeline handoffs for that story in
finish order.

Examples:
  # Queue overview
  devteam status

  # One story's pipeline history
  devteam status --story STORY-GH-123`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusStoryID, "story", "", "Show archived handoffs for a story")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := newStoreClient()
	if err != nil {
		return err
	}
	defer client.Close()

	snapshot, err := client.GetQueueStatus(ctx)
	switch {
	case store.IsNotFound(err):
		printer.Warning("no queue snapshot yet; is the coordinator running?\n")
	case err != nil:
		return printer.Error(
			"failed to read queue status",
			err.Error(),
			[]string{"Check that Redis is reachable"},
		)
	default:
		printer.QueueStatus(snapshot)
	}

	if statusStoryID == "" {
		return nil
	}

	workIDs, err := client.StoryHistory(ctx, statusStoryID)
	if err != nil {
		return printer.Error(
			"failed to read story history",
			err.Error(),
			[]string{"Check that Redis is reachable"},
		)
	}
	if len(workIDs) == 0 {
		printer.Info("no archived work for %s\n", statusStoryID)
		return nil
	}

	printer.Step("history for %s\n", statusStoryID)
	for _, workID := range workIDs {
		record, err := client.GetWork(ctx, workID)
		if err != nil {
			printer.Warning("work %s unreadable: %v\n", workID, err)
			continue
		}
		line := fmt.Sprintf("  %-10s %s -> %s", record.Status, record.SourceAgent, record.TargetAgent)
		if record.Error != "" {
			line += fmt.Sprintf("  (%s)", record.Error)
		}
		printer.Println(line)
	}
	return nil
}
