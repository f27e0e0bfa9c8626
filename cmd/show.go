package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"localchat/internal"
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session's conversation and metadata",
	Long:  `Display the full conversation and metadata of one chat session.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer env.Close()

		id, err := resolveSessionID(env.store, args[0])
		if err != nil {
			return err
		}
		sess := env.store.Get(id)

		fmt.Println(sessionHeaderStyle.Render("💬 " + sess.Name))

		meta := []string{
			"ID: " + sess.ID,
			"Model: " + orDash(sess.Model),
			fmt.Sprintf("Messages: %d", len(sess.Messages)),
			"Created: " + sess.CreatedAt.Format("2006-01-02 15:04"),
			"Updated: " + sess.UpdatedAt.Format("2006-01-02 15:04"),
		}
		if len(sess.Tags) > 0 {
			meta = append(meta, "Tags: "+strings.Join(sess.Tags, ", "))
		}
		if sess.IsBookmarked {
			meta = append(meta, "🔖 Bookmarked")
		}
		if sess.IsFavorite {
			meta = append(meta, "★ Favorite")
		}
		fmt.Println(sessionMetaStyle.Render(strings.Join(meta, "  ·  ")))

		if sess.SystemPrompt != "" {
			fmt.Println(sessionMetaStyle.Render("System prompt: " + sess.SystemPrompt))
		}
		if sess.Notes != "" {
			fmt.Println(sessionMetaStyle.Render("Notes: " + sess.Notes))
		}
		fmt.Println()

		for _, msg := range sess.Messages {
			style := assistantMessageStyle
			if msg.Role == internal.RoleUser {
				style = userMessageStyle
			}
			fmt.Println(style.Render(msg.Role + ":"))
			fmt.Println(messageContentStyle.Render(msg.Content))
		}
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func init() {
	rootCmd.AddCommand(showCmd)
}
