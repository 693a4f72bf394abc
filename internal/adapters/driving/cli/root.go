// Package cli implements the cobra command tree for repovet.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/repovet-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repovet-cli/internal/adapters/driven/github"
	"github.com/custodia-labs/repovet-cli/internal/adapters/driven/storage/sqlite"
	searchgoogle "github.com/custodia-labs/repovet-cli/internal/adapters/driven/websearch/google"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driven"
	"github.com/custodia-labs/repovet-cli/internal/core/ports/driving"
	"github.com/custodia-labs/repovet-cli/internal/core/services"
	"github.com/custodia-labs/repovet-cli/internal/logger"
	"github.com/custodia-labs/repovet-cli/internal/stages"
)

// Wired services, set once in initServices.
var (
	configStore *configfile.ConfigStore
	evalStore   driven.EvaluationStore
	evaluator   driving.Evaluator
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "repovet",
	Short: "Evaluate third-party repositories for security and reliability risk",
	Long: `repovet runs a staged evaluation pipeline against a repository:
metadata, purpose, alternatives, code review, community feedback, risk and
usability. Findings are scored into five dimensions and rendered as a report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		// The version command needs no services, and auth commands only
		// need the config store.
		switch {
		case cmd.Name() == "version":
			return nil
		case cmd.Parent() != nil && cmd.Parent().Name() == "auth":
			return initConfig()
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initConfig opens the config store if it is not already open.
func initConfig() error {
	if configStore != nil {
		return nil
	}
	var err error
	configStore, err = configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	return nil
}

// initServices wires adapters and services from configuration. Idempotent:
// commands invoked under tests may call it repeatedly.
func initServices() error {
	if evaluator != nil {
		return nil
	}

	if err := initConfig(); err != nil {
		return err
	}
	cfg := configStore.Config()

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	evalStore = store

	readers := github.NewFactory(cfg.GitHub.Token)

	var search driven.WebSearch
	if cfg.Search.APIKey != "" && cfg.Search.EngineID != "" {
		search, err = searchgoogle.NewSearch(context.Background(), cfg.Search.APIKey, cfg.Search.EngineID)
		if err != nil {
			return fmt.Errorf("init web search: %w", err)
		}
	} else {
		logger.Warn("Web search not configured; alternatives and community stages will be degraded")
	}

	rubric := cfg.Rubric.Apply(services.DefaultRubric())
	evaluator = services.NewOrchestrator(
		readers,
		search,
		evalStore,
		stages.DefaultHandlers(),
		services.NewScoringEngine(rubric),
		services.NewRenderer(),
	)
	return nil
}
