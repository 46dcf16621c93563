package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jhonnyo88/devteam-sub001/internal/originator"
	"github.com/jhonnyo88/devteam-sub001/internal/printer"
	"github.com/jhonnyo88/devteam-sub001/internal/store"
	"github.com/jhonnyo88/devteam-sub001/pkg/contract"
)

var submitCmd = &cobra.Command{
	Use:   "submit <issue.json>",
	Short: "Submit a GitHub issue to the pipeline",
	Long: `Read a GitHub issue from a JSON file, synthesize the initial
project-manager contract, and push it onto the instance inbox for the
coordinator to pick up.

The issue body must contain a task list ("- [ ] ..."); the items become the
story's acceptance criteria. Priority is mapped from the issue labels.

Example:
  devteam submit issue-123.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return printer.Error(
			"failed to read issue file",
			err.Error(),
			[]string{"Pass the path to a GitHub issue JSON export"},
		)
	}

	var issue originator.GitHubIssue
	if err := json.Unmarshal(raw, &issue); err != nil {
		return printer.Error(
			"failed to parse issue file",
			err.Error(),
			[]string{"The file must be a single GitHub issue JSON object"},
		)
	}

	seed, err := originator.Contract(&issue)
	if err != nil {
		return printer.Error(
			"issue is not actionable",
			err.Error(),
			[]string{"Add a task list of acceptance criteria to the issue body"},
		)
	}

	contractJSON, err := json.Marshal(seed)
	if err != nil {
		return fmt.Errorf("failed to serialize contract: %w", err)
	}

	client, err := newStoreClient()
	if err != nil {
		return err
	}
	defer client.Close()

	submission := &store.Submission{
		ContractJSON:  contractJSON,
		Priority:      string(issue.Priority()),
		SubmittedAtMs: time.Now().UnixMilli(),
	}
	if err := client.SubmitWork(context.Background(), submission); err != nil {
		return printer.Error(
			"failed to submit story",
			err.Error(),
			[]string{"Check that Redis is reachable"},
		)
	}

	if err := client.PublishEvent(context.Background(), &store.PipelineEvent{
		Type:        store.EventWorkDelegated,
		WorkID:      uuid.New().String(),
		StoryID:     seed.StoryID,
		TargetAgent: string(contract.AgentProjectManager),
		Status:      "submitted",
		TimestampMs: submission.SubmittedAtMs,
	}); err != nil {
		printer.Warning("story queued but event publish failed: %v\n", err)
	}

	printer.Success("submitted %s at %s priority\n", seed.StoryID, submission.Priority)
	return nil
}
