package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"localchat/internal"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available at the inference endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer env.Close()

		models := env.registry.Models()
		if len(models) == 0 {
			internal.PrintWarning("No models available (is the endpoint running?)")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("🧠 %d model(s) available", len(models))))
		for _, m := range models {
			fmt.Println("  " + m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
