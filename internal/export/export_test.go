package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"localchat/internal"
)

func exportFixture() *internal.Session {
	return &internal.Session{
		ID:           "test-session-1",
		Name:         "Go Channels",
		SystemPrompt: "You are terse.",
		Model:        "llama3.2:latest",
		Tags:         []string{"go", "concurrency"},
		Notes:        "Channel patterns discussion",
		Messages: []internal.Message{
			{Role: internal.RoleUser, Content: "How do channels work?"},
			{Role: internal.RoleAssistant, Content: "A channel is a typed conduit."},
		},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format    string
		extension string
	}{
		{"json", "json"},
		{"jsonl", "jsonl"},
		{"md", "md"},
		{"markdown", "md"},
		{"yaml", "yaml"},
	}
	for _, tt := range tests {
		exp, err := NewExporter(tt.format)
		if err != nil {
			t.Errorf("NewExporter(%q) failed: %v", tt.format, err)
			continue
		}
		if exp.Extension() != tt.extension {
			t.Errorf("NewExporter(%q).Extension() = %q, want %q", tt.format, exp.Extension(), tt.extension)
		}
	}
}

func TestNewExporterUnsupportedFormat(t *testing.T) {
	if _, err := NewExporter("xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(exportFixture(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var got internal.Session
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if got.ID != "test-session-1" || got.Name != "Go Channels" {
		t.Errorf("Unexpected session fields: %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(got.Messages))
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("Expected pretty-printed output")
	}
}

func TestJSONLExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(exportFixture(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines []map[string]interface{}
	for scanner.Scan() {
		var record map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("Line is not valid JSON: %v", err)
		}
		lines = append(lines, record)
	}

	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 message lines, got %d", len(lines))
	}
	if lines[0]["type"] != "session" || lines[0]["message_count"] != float64(2) {
		t.Errorf("Unexpected header: %v", lines[0])
	}
	if lines[1]["type"] != "message" || lines[1]["role"] != internal.RoleUser {
		t.Errorf("Unexpected first message line: %v", lines[1])
	}
	if lines[2]["role"] != internal.RoleAssistant {
		t.Errorf("Unexpected second message line: %v", lines[2])
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(exportFixture(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Go Channels",
		"**Model:** llama3.2:latest",
		"**Tags:** go, concurrency",
		"**Notes:** Channel patterns discussion",
		"**System prompt:** You are terse.",
		"**user:**",
		"**assistant:**",
		"A channel is a typed conduit.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestMarkdownExportOmitsEmptySections(t *testing.T) {
	sess := exportFixture()
	sess.Tags = nil
	sess.Notes = ""
	sess.SystemPrompt = ""

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sess, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "**Tags:**") || strings.Contains(out, "**Notes:**") || strings.Contains(out, "**System prompt:**") {
		t.Error("Expected empty metadata sections to be omitted")
	}
}

func TestYAMLExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(exportFixture(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var got map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Output is not valid YAML: %v", err)
	}
	if got["id"] != "test-session-1" {
		t.Errorf("Unexpected id: %v", got["id"])
	}
}
