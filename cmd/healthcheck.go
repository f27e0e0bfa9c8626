package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"localchat/internal"
)

var (
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check storage and inference endpoint health",
	Long: `Check the health of localchat by verifying:
  • Data directory and session storage accessibility
  • Session count
  • Inference endpoint reachability and available models`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 localchat Health Check"))
		fmt.Println()

		// Step 1: Storage
		fmt.Println(infoStyle.Render("Step 1: Checking session storage..."))
		cfg, err := internal.ResolveConfig(endpoint, dataDir)
		if err != nil {
			fmt.Println(failStyle.Render("❌ Failed to resolve data directory:"), err)
			os.Exit(1)
		}
		db, err := internal.OpenDatabase(cfg.DatabasePath())
		if err != nil {
			fmt.Println(failStyle.Render("❌ Failed to open session storage:"), err)
			os.Exit(1)
		}
		defer db.Close()
		sessions, _ := internal.NewPersister(db).Load()
		fmt.Println(okStyle.Render("✅ Storage accessible"))
		fmt.Printf("   Database: %s\n", cfg.DatabasePath())
		fmt.Printf("   Sessions: %d\n", len(sessions))
		fmt.Println()

		// Step 2: Endpoint
		fmt.Println(infoStyle.Render("Step 2: Checking inference endpoint..."))
		transport := internal.NewOllamaClient(cfg.Endpoint)
		models, err := transport.ListModels(context.Background())
		if err != nil {
			fmt.Println(warnStyle.Render("⚠️  Endpoint unreachable:"), err)
			fmt.Printf("   Endpoint: %s\n", cfg.Endpoint)
			fmt.Println()
			fmt.Println(warnStyle.Render("Chatting will not work until the endpoint is up."))
			return nil
		}
		fmt.Println(okStyle.Render("✅ Endpoint reachable"))
		fmt.Printf("   Endpoint: %s\n", cfg.Endpoint)
		fmt.Printf("   Models:   %d\n", len(models))
		if len(models) == 0 {
			fmt.Println(warnStyle.Render("⚠️  No models installed; pull one first (e.g. `ollama pull llama3.2`)"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
