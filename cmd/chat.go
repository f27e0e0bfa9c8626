package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"localchat/internal"
)

var chatNew bool

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var chatCmd = &cobra.Command{
	Use:   "chat [session-id]",
	Short: "Chat interactively in a session",
	Long: `Start an interactive chat in the given session (default: the current one).

Responses stream as they are generated; press Ctrl-C during a response to
stop it and keep what has arrived so far.

In-chat commands:
  /regen          regenerate the last assistant response
  /model <name>   switch the session's model
  /name <name>    rename the session
  /quit           leave the chat`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer env.Close()

		var id string
		switch {
		case chatNew:
			id = env.store.AddSession()
		case len(args) == 1:
			id, err = resolveSessionID(env.store, args[0])
			if err != nil {
				return err
			}
			env.store.SelectSession(id)
		default:
			id = env.store.CurrentID()
		}

		sess := env.store.Get(id)
		fmt.Println(bannerStyle.Render(fmt.Sprintf("💬 %s", sess.Name)))
		fmt.Println(hintStyle.Render(fmt.Sprintf("model: %s · %d message(s) · /quit to leave", orDash(sess.Model), len(sess.Messages))))
		if sess.Model == "" {
			internal.PrintWarning("No model configured and none available from the endpoint")
		}
		fmt.Println()

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(promptStyle.Render("you> "))
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			if strings.HasPrefix(input, "/") {
				if quit := runChatCommand(env, id, input); quit {
					break
				}
				continue
			}

			runTurn(env, func(ctx context.Context) error {
				return env.runner.SendMessage(ctx, id, input, printChunk)
			})
		}

		// Let in-flight auto-naming/tagging finish before the process exits.
		env.metadata.Wait()
		return scanner.Err()
	},
}

// runChatCommand handles /-prefixed REPL commands. Returns true to quit.
func runChatCommand(env *appEnv, id, input string) bool {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/regen":
		runTurn(env, func(ctx context.Context) error {
			return env.runner.Regenerate(ctx, id, printChunk)
		})
	case "/model":
		if rest == "" {
			internal.PrintWarning("Usage: /model <name>")
			return false
		}
		env.store.UpdateModel(id, rest)
		internal.PrintSuccess("Model set to " + rest)
	case "/name":
		if rest == "" {
			internal.PrintWarning("Usage: /name <name>")
			return false
		}
		env.store.RenameSession(id, rest)
		internal.PrintSuccess("Session renamed")
	default:
		internal.PrintWarning("Unknown command: " + cmd)
	}
	return false
}

// runTurn executes one send/regenerate with Ctrl-C wired to cancellation of
// just that turn.
func runTurn(env *appEnv, fn func(context.Context) error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fn(ctx); err != nil {
		fmt.Println()
		internal.PrintError(err.Error())
		return
	}
	fmt.Println()
	fmt.Println()
}

func printChunk(fragment string) {
	fmt.Print(fragment)
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatNew, "new", false, "Start the chat in a fresh session")
}
