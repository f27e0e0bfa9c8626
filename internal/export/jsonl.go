package export

import (
	"encoding/json"
	"io"

	"localchat/internal"
)

// JSONLExporter exports sessions in JSON Lines format: one record per line,
// a session header first, then each message.
type JSONLExporter struct{}

type jsonlHeader struct {
	Type         string   `json:"type"`
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Tags         []string `json:"tags,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	MessageCount int      `json:"message_count"`
}

type jsonlMessage struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	header := jsonlHeader{
		Type:         "session",
		ID:           session.ID,
		Name:         session.Name,
		Model:        session.Model,
		Tags:         session.Tags,
		Notes:        session.Notes,
		MessageCount: len(session.Messages),
	}
	if err := enc.Encode(header); err != nil {
		return err
	}

	for _, msg := range session.Messages {
		record := jsonlMessage{
			Type:    "message",
			Role:    msg.Role,
			Content: msg.Content,
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
