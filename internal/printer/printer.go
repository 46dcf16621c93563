package printer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/jhonnyo88/devteam-sub001/internal/store"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	// Color definitions
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Printf("✓ %s", msg)
	} else {
		green.Print(msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Warning prints a warning message in yellow with a warning emoji prefix
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Printf("⚠️  %s", msg)
	} else {
		yellow.Print(msg)
	}
}

// Event prints one pipeline event line, colored by outcome, in the form
//
//	12:04:05 STORY-GH-123  work_completed  developer  (detail)
func Event(ev *store.PipelineEvent) {
	ts := time.UnixMilli(ev.TimestampMs).Format("15:04:05")
	line := fmt.Sprintf("%s %-14s %-16s %s", ts, ev.StoryID, ev.Type, ev.TargetAgent)
	if ev.Detail != "" {
		line += fmt.Sprintf("  (%s)", ev.Detail)
	}

	switch ev.Type {
	case store.EventWorkCompleted:
		green.Println(line)
	case store.EventWorkFailed:
		red.Println(line)
	case store.EventWorkCancelled, store.EventWorkRetried:
		yellow.Println(line)
	default:
		cyan.Println(line)
	}
}

// QueueStatus prints the scheduler snapshot as a short colored summary.
func QueueStatus(snap *store.QueueSnapshot) {
	cyan.Printf("→ queue: %d pending, %d in progress, %d completed\n",
		snap.QueuedItems, snap.ActiveItems, snap.CompletedItems)
	for agentType, count := range snap.RegisteredBy {
		Info("  %-16s %d registered\n", agentType, count)
	}
	Info("  agents: %d available, %d busy, %d offline\n",
		snap.AvailableAgents, snap.BusyAgents, snap.OfflineAgents)
	if snap.UpdatedAtMs > 0 {
		Info("  as of %s\n", time.UnixMilli(snap.UpdatedAtMs).Format(time.RFC3339))
	}
}

// Error creates a formatted error message with title, explanation, and suggestions
// Prints the formatted error to stderr with colors and returns a simple error for Cobra
func Error(title string, explanation string, suggestions []string) error {
	// Print title in red to stderr
	red.Fprintf(os.Stderr, "%s\n\n", title)

	// Print explanation
	fmt.Fprintf(os.Stderr, "%s\n", explanation)

	// Print suggestions
	if len(suggestions) > 0 {
		fmt.Fprintf(os.Stderr, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(os.Stderr, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(os.Stderr, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	// Return simple error for Cobra (won't be printed due to SilenceErrors)
	return fmt.Errorf("%s", title)
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Printf("→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring)
func Println(a ...any) {
	fmt.Println(a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring)
func Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}
