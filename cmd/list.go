package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"localchat/internal"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List sessions, optionally filtered by a search query",
	Long: `List all chat sessions, newest activity first shown as stored.

An optional query filters the list. Free text matches name, tags, notes and
message content; operators constrain specific fields:

  system:VALUE    system prompt contains VALUE
  name:VALUE      session name contains VALUE
  tag:VALUE       any tag contains VALUE
  note:VALUE      notes contain VALUE
  in:VALUE        any message contains VALUE
  type:bookmarked only bookmarked sessions
  type:favorite   only favorite sessions

Quote multi-word values: in:"python code". All matching is case-insensitive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer env.Close()

		sessions := env.store.Sessions()
		query := strings.Join(args, " ")
		sessions = internal.FilterSessions(sessions, query)

		displaySessions(sessions, env.store.CurrentID())
		return nil
	},
}

func displaySessions(sessions []*internal.Session, currentID string) {
	if len(sessions) == 0 {
		fmt.Println(headerStyle.Render("📋 No sessions found"))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions)))
	fmt.Println(header)
	fmt.Println()

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', tabwriter.AlignRight)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Model")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Tags")+"\t"+titleStyle.Render("Updated")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 110))

	for _, sess := range sessions {
		name := truncate(sess.Name, 40)
		marks := ""
		if sess.IsBookmarked {
			marks += " 🔖"
		}
		if sess.IsFavorite {
			marks += " ★"
		}
		if sess.ID == currentID {
			name = "• " + name
		}
		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
		name = nameStyle.Render(name) + marks

		model := sess.Model
		if model == "" {
			model = "—"
		}
		model = truncate(model, 20)

		msgCount := countStyle.Render(strconv.Itoa(len(sess.Messages)))

		tags := "—"
		if len(sess.Tags) > 0 {
			tags = truncate(strings.Join(sess.Tags, ", "), 25)
		}

		shortID := sess.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID), name, dateStyle.Render(model), msgCount,
			tagStyle.Render(tags), dateStyle.Render(relativeDate(sess.UpdatedAt)))
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("💡 Tip: Use an ID prefix with `localchat show <id>` or `localchat chat <id>`"))
}

// truncate shortens s to at most max runes, replacing the tail with an
// ellipsis when it cuts. Counting runes keeps multibyte names intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// relativeDate renders recent timestamps compactly, older ones as dates.
func relativeDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := time.Since(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
