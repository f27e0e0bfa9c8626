package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"localchat/internal"
	"localchat/internal/export"
)

var (
	format    string
	outputDir string
	sessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to file",
	Long: `Export chat sessions.

Without --format, all sessions are written as a single importable backup
(chat-sessions-backup-<date>.json). With --format, each session is written to
its own file in the chosen format (jsonl, md, yaml, json). Use --session-id
to export a single session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openApp(context.Background())
		if err != nil {
			return err
		}
		defer env.Close()

		sessions := env.store.ExportAll()

		// Filter by session ID if specified
		if sessionID != "" {
			id, err := resolveSessionID(env.store, sessionID)
			if err != nil {
				return err
			}
			for _, sess := range sessions {
				if sess.ID == id {
					sessions = []*internal.Session{sess}
					break
				}
			}
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		// Backup mode: one importable JSON array.
		if format == "" {
			data, err := internal.EncodeSessions(sessions)
			if err != nil {
				return fmt.Errorf("failed to encode sessions: %w", err)
			}
			path := filepath.Join(outputDir, internal.BackupFilename(time.Now()))
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}
			internal.PrintSuccess(fmt.Sprintf("Exported %d session(s) to %s", len(sessions), path))
			return nil
		}

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		for _, sess := range sessions {
			filename := fmt.Sprintf("session_%s.%s", sess.ID, exporter.Extension())
			path := filepath.Join(outputDir, filename)

			file, err := os.Create(path)
			if err != nil {
				internal.LogError("Failed to create file %s: %v", path, err)
				continue
			}
			if err := exporter.Export(sess, file); err != nil {
				_ = file.Close()
				internal.LogError("Failed to export session %s: %v", sess.ID, err)
				continue
			}
			if err := file.Close(); err != nil {
				internal.LogWarn("Failed to close file %s: %v", path, err)
			}
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d session(s) exported to %s", len(sessions), outputDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "", "Per-session export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
}
