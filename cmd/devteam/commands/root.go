package commands

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jhonnyo88/devteam-sub001/internal/printer"
	"github.com/jhonnyo88/devteam-sub001/internal/store"
)

var (
	version string
	commit  string
	date    string
)

var (
	instanceName string
	redisURL     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devteam",
	Short: "DevTeam - Contract-driven multi-agent pipeline",
	Long: `DevTeam coordinates a pipeline of specialized agents that turn
feature requests into validated, quality-gated deliverables.

Every handoff between agents is a strict contract, scored against the
project's nine design and architecture principles before it may proceed.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, show help
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&instanceName, "instance", "n", "",
		"Target instance name (default: DEVTEAM_INSTANCE_NAME)")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis-url", "",
		"Redis connection URL (default: REDIS_URL or redis://localhost:6379)")
}

// newStoreClient resolves the instance and Redis flags and connects.
func newStoreClient() (*store.Client, error) {
	name := instanceName
	if name == "" {
		name = os.Getenv("DEVTEAM_INSTANCE_NAME")
	}
	if name == "" {
		return nil, printer.Error(
			"no instance specified",
			"The target instance could not be determined.",
			[]string{
				"Pass --instance <name>",
				"Set DEVTEAM_INSTANCE_NAME in the environment",
			},
		)
	}

	url := redisURL
	if url == "" {
		url = os.Getenv("REDIS_URL")
	}
	if url == "" {
		url = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, printer.Error(
			"invalid Redis URL",
			fmt.Sprintf("Could not parse %q: %v", url, err),
			[]string{"Use the form redis://host:port"},
		)
	}

	return store.NewClient(opts, name)
}
