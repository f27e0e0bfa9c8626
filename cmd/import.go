package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"localchat/internal"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import sessions from a backup file, replacing all existing ones",
	Long: `Import a session backup (a JSON array of session records, as produced by
'localchat export'). The whole collection is replaced; there is no merge.
Records missing optional fields are upgraded with defaults. Invalid input
aborts the import without changing anything.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer env.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}

		if err := env.store.ImportAll(data); err != nil {
			var verr *internal.ValidationError
			if errors.As(err, &verr) {
				internal.PrintError(verr.Error())
				return fmt.Errorf("import aborted")
			}
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Imported %d session(s)", len(env.store.Sessions())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
