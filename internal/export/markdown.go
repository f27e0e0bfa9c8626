package export

import (
	"fmt"
	"io"
	"strings"

	"localchat/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.Session, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", session.Name)

	_, _ = fmt.Fprintf(w, "**Model:** %s  \n", session.Model)
	if len(session.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "**Tags:** %s  \n", strings.Join(session.Tags, ", "))
	}
	if session.Notes != "" {
		_, _ = fmt.Fprintf(w, "**Notes:** %s  \n", session.Notes)
	}
	if session.SystemPrompt != "" {
		_, _ = fmt.Fprintf(w, "**System prompt:** %s  \n", session.SystemPrompt)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	// Messages
	for i, msg := range session.Messages {
		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", msg.Role, msg.Content)

		// Add horizontal rule after each message (except the last one)
		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
