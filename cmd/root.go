package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"localchat/internal"
)

var (
	verbose  bool
	endpoint string
	dataDir  string
	version  string = "dev"
	commit   string = "unknown"
	date     string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "localchat",
	Short: "Chat with local language models across persistent sessions",
	Long: `A CLI for holding multiple conversations with a local LLM endpoint
(Ollama-compatible), each with its own model, generation options, tags,
notes and bookmarks, durable across restarts.

Features:
  • Streaming chat with per-session model and options
  • Automatic session naming, tagging and summarizing
  • Search with operators (tag:, name:, in:, type:bookmarked, ...)
  • Export in multiple formats (json, jsonl, md, yaml) and full backup/import

Quick Start:
  localchat chat                  # Chat in the current session
  localchat list                  # List all sessions
  localchat list "tag:work"       # Search sessions
  localchat show <session-id>     # View a conversation`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Inference endpoint base URL (default http://localhost:11434)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Custom data directory for session storage")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// appEnv bundles the wired application components for a command invocation.
type appEnv struct {
	cfg       internal.Config
	db        *sql.DB
	transport internal.Transport
	registry  *internal.ModelRegistry
	store     *internal.Store
	metadata  *internal.MetadataGenerator
	runner    *internal.TurnRunner
}

// openApp resolves configuration, opens storage, refreshes the model registry
// once and rehydrates the store.
func openApp(ctx context.Context) (*appEnv, error) {
	cfg, err := internal.ResolveConfig(endpoint, dataDir)
	if err != nil {
		return nil, err
	}

	db, err := internal.OpenDatabase(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	transport := internal.NewOllamaClient(cfg.Endpoint)
	registry := internal.NewModelRegistry(transport)
	registry.Refresh(ctx)

	store := internal.NewStore(internal.NewPersister(db), registry)
	metadata := internal.NewMetadataGenerator(store, transport)
	runner := internal.NewTurnRunner(store, transport, metadata)

	return &appEnv{
		cfg:       cfg,
		db:        db,
		transport: transport,
		registry:  registry,
		store:     store,
		metadata:  metadata,
		runner:    runner,
	}, nil
}

func (a *appEnv) Close() {
	_ = a.db.Close()
}

// resolveSessionID expands a possibly-shortened session id to a full one.
// Exact matches win; otherwise a unique prefix is accepted.
func resolveSessionID(store *internal.Store, arg string) (string, error) {
	sessions := store.Sessions()
	var matches []string
	for _, s := range sessions {
		if s.ID == arg {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, arg) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("session not found: %s (use 'localchat list' to see available sessions)", arg)
	default:
		return "", fmt.Errorf("session id %s is ambiguous (%d matches)", arg, len(matches))
	}
}
