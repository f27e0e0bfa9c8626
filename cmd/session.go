package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"localchat/internal"
)

var (
	newName   string
	newModel  string
	newSystem string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new session and make it current",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer env.Close()

		id := env.store.AddSession()
		if newName != "" {
			env.store.RenameSession(id, newName)
		}
		if newModel != "" {
			env.store.UpdateModel(id, newModel)
		}
		if newSystem != "" {
			env.store.UpdateSystemPrompt(id, newSystem)
		}

		sess := env.store.Get(id)
		internal.PrintSuccess(fmt.Sprintf("Created session %s (%s)", sess.ID[:8], sess.Name))
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <session-id> <name>",
	Short: "Rename a session",
	Args:  cobra.MinimumNArgs(2),
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
		env.store.RenameSession(id, strings.Join(args[1:], " "))
		internal.PrintSuccess("Session renamed")
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Long: `Delete a session permanently. Deleting the last remaining session
replaces it with a fresh empty one.`,
	Args: cobra.ExactArgs(1),
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
		env.store.DeleteSession(id)
		internal.PrintSuccess("Session deleted")
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <session-id>",
	Short: "Make a session the current one",
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
		env.store.SelectSession(id)
		sess := env.store.Get(id)
		internal.PrintSuccess("Current session: " + sess.Name)
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag <session-id> [tags...]",
	Short: "Set a session's tags (comma- or space-separated; none clears)",
	Args:  cobra.MinimumNArgs(1),
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

		var tags []string
		for _, arg := range args[1:] {
			for _, t := range strings.Split(arg, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
		}
		env.store.SetTags(id, tags)
		if len(tags) == 0 {
			internal.PrintSuccess("Tags cleared")
		} else {
			internal.PrintSuccess("Tags set: " + strings.Join(tags, ", "))
		}
		return nil
	},
}

var noteCmd = &cobra.Command{
	Use:   "note <session-id> [text...]",
	Short: "Set a session's notes (no text clears them)",
	Args:  cobra.MinimumNArgs(1),
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
		env.store.SetNotes(id, strings.Join(args[1:], " "))
		internal.PrintSuccess("Notes updated")
		return nil
	},
}

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <session-id>",
	Short: "Toggle a session's bookmark flag",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleFlag(func(s *internal.Store, id string) { s.ToggleBookmark(id) }, "Bookmark"),
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <session-id>",
	Short: "Toggle a session's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleFlag(func(s *internal.Store, id string) { s.ToggleFavorite(id) }, "Favorite"),
}

func toggleFlag(toggle func(*internal.Store, string), label string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer env.Close()

		id, err := resolveSessionID(env.store, args[0])
		if err != nil {
			return err
		}
		toggle(env.store, id)
		internal.PrintSuccess(label + " toggled")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(newCmd, renameCmd, deleteCmd, useCmd, tagCmd, noteCmd, bookmarkCmd, favoriteCmd)
	newCmd.Flags().StringVar(&newName, "name", "", "Session name")
	newCmd.Flags().StringVar(&newModel, "model", "", "Model identifier")
	newCmd.Flags().StringVar(&newSystem, "system", "", "System prompt")
}
