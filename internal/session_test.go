package internal

import (
	"testing"
	"time"
)

func TestNewSessionDefaults(t *testing.T) {
	sess := NewSession([]string{"llama3.2:latest", "qwen2.5:7b"})

	if sess.ID == "" {
		t.Error("Expected a generated session id")
	}
	if sess.Name != DefaultSessionName {
		t.Errorf("Expected name %q, got %q", DefaultSessionName, sess.Name)
	}
	if sess.Model != "llama3.2:latest" {
		t.Errorf("Expected first available model, got %q", sess.Model)
	}
	if sess.Messages == nil || len(sess.Messages) != 0 {
		t.Errorf("Expected empty message list, got %v", sess.Messages)
	}
	if sess.Tags == nil || len(sess.Tags) != 0 {
		t.Errorf("Expected empty tag list, got %v", sess.Tags)
	}
	if sess.CreatedAt.IsZero() || sess.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestNewSessionNoModels(t *testing.T) {
	sess := NewSession(nil)
	if sess.Model != "" {
		t.Errorf("Expected empty model with no models available, got %q", sess.Model)
	}
}

func TestNewSessionUniqueIDs(t *testing.T) {
	a := NewSession(nil)
	b := NewSession(nil)
	if a.ID == b.ID {
		t.Errorf("Expected distinct ids, both were %q", a.ID)
	}
}

func TestSessionClone(t *testing.T) {
	temp := 0.7
	orig := CreateTestSession("clone-test")
	orig.Tags = []string{"go", "testing"}
	orig.Options = &ChatOptions{Temperature: &temp, Stop: []string{"END"}}

	clone := orig.Clone()
	clone.Messages[0].Content = "mutated"
	clone.Tags[0] = "mutated"
	*clone.Options.Temperature = 0.1
	clone.Options.Stop[0] = "mutated"

	if orig.Messages[0].Content == "mutated" {
		t.Error("Clone shares the message slice with the original")
	}
	if orig.Tags[0] == "mutated" {
		t.Error("Clone shares the tag slice with the original")
	}
	if orig.Options.Stop[0] == "mutated" {
		t.Error("Clone shares the stop slice with the original")
	}
	// Pointer option fields are shared scalars; replacing, not mutating, is
	// the supported way to change them.
}

func TestLastAssistantIndex(t *testing.T) {
	sess := &Session{Messages: []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "more"},
		{Role: RoleAssistant, Content: "sure"},
	}}
	if got := sess.LastAssistantIndex(); got != 3 {
		t.Errorf("Expected index 3, got %d", got)
	}

	sess = &Session{Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	if got := sess.LastAssistantIndex(); got != -1 {
		t.Errorf("Expected -1 with no assistant messages, got %d", got)
	}
}

func TestNormalizeUpgradesLegacyRecord(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	sess := &Session{ID: "legacy-1"}
	sess.Normalize(now)

	if sess.Name != DefaultSessionName {
		t.Errorf("Expected default name, got %q", sess.Name)
	}
	if sess.Messages == nil {
		t.Error("Expected messages to be initialized")
	}
	if sess.Tags == nil {
		t.Error("Expected tags to be initialized")
	}
	if sess.Notes != "" {
		t.Errorf("Expected empty notes, got %q", sess.Notes)
	}
	if sess.IsBookmarked || sess.IsFavorite {
		t.Error("Expected flags to default to false")
	}
	if !sess.CreatedAt.Equal(now) || !sess.UpdatedAt.Equal(now) {
		t.Errorf("Expected timestamps to default to now, got %v / %v", sess.CreatedAt, sess.UpdatedAt)
	}
}

func TestNormalizeCollapsesEmptyOptions(t *testing.T) {
	sess := &Session{ID: "opts", Options: &ChatOptions{}}
	sess.Normalize(time.Now())
	if sess.Options != nil {
		t.Error("Expected empty options to collapse to nil")
	}
}

func TestNormalizeKeepsExistingValues(t *testing.T) {
	created := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	sess := &Session{
		ID:        "keep",
		Name:      "Existing Name",
		Tags:      []string{"keep"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	sess.Normalize(time.Now())

	if sess.Name != "Existing Name" {
		t.Errorf("Expected name to be preserved, got %q", sess.Name)
	}
	if !sess.CreatedAt.Equal(created) {
		t.Errorf("Expected createdAt to be preserved, got %v", sess.CreatedAt)
	}
}

func TestChatOptionsIsEmpty(t *testing.T) {
	var nilOpts *ChatOptions
	if !nilOpts.IsEmpty() {
		t.Error("Expected nil options to be empty")
	}
	if !(&ChatOptions{}).IsEmpty() {
		t.Error("Expected zero options to be empty")
	}
	temp := 0.5
	if (&ChatOptions{Temperature: &temp}).IsEmpty() {
		t.Error("Expected options with temperature to be non-empty")
	}
}

func TestChatOptionsMerge(t *testing.T) {
	temp := 0.7
	topK := 40
	newTemp := 0.2

	base := &ChatOptions{Temperature: &temp, TopK: &topK}
	merged := base.Merge(&ChatOptions{Temperature: &newTemp})

	if merged.Temperature == nil || *merged.Temperature != 0.2 {
		t.Errorf("Expected override temperature 0.2, got %v", merged.Temperature)
	}
	if merged.TopK == nil || *merged.TopK != 40 {
		t.Errorf("Expected top_k preserved, got %v", merged.TopK)
	}
	if base.Temperature == nil || *base.Temperature != 0.7 {
		t.Error("Merge mutated the receiver")
	}
}

func TestChatOptionsMergeNilReceiver(t *testing.T) {
	temp := 0.3
	var base *ChatOptions
	merged := base.Merge(&ChatOptions{Temperature: &temp})
	if merged == nil || merged.Temperature == nil || *merged.Temperature != 0.3 {
		t.Errorf("Expected merge onto nil to carry the override, got %+v", merged)
	}
}

func TestChatOptionsMergeCollapsesToNil(t *testing.T) {
	var base *ChatOptions
	if merged := base.Merge(&ChatOptions{}); merged != nil {
		t.Errorf("Expected empty merge result to collapse to nil, got %+v", merged)
	}
}

func TestChatOptionsStreamEnabled(t *testing.T) {
	var nilOpts *ChatOptions
	if !nilOpts.StreamEnabled() {
		t.Error("Expected streaming on by default with nil options")
	}
	off := false
	if (&ChatOptions{Stream: &off}).StreamEnabled() {
		t.Error("Expected streaming off when explicitly disabled")
	}
	on := true
	if !(&ChatOptions{Stream: &on}).StreamEnabled() {
		t.Error("Expected streaming on when explicitly enabled")
	}
}

func TestRepairSessions(t *testing.T) {
	sessions := []*Session{
		{ID: "a", Model: "llama3.2:latest"},
		{ID: "b", Model: "gone:1b"},
		{ID: "c", Model: ""},
	}
	models := []string{"llama3.2:latest", "qwen2.5:7b"}

	repaired, changed := RepairSessions(sessions, models)
	if !changed {
		t.Fatal("Expected repair to report changes")
	}
	if repaired[0].Model != "llama3.2:latest" {
		t.Errorf("Expected valid model untouched, got %q", repaired[0].Model)
	}
	if repaired[1].Model != "llama3.2:latest" {
		t.Errorf("Expected stale model repaired to first available, got %q", repaired[1].Model)
	}
	if repaired[2].Model != "llama3.2:latest" {
		t.Errorf("Expected empty model repaired to first available, got %q", repaired[2].Model)
	}
	// Input must not be mutated.
	if sessions[1].Model != "gone:1b" {
		t.Error("RepairSessions mutated its input")
	}
}

func TestRepairSessionsNoModels(t *testing.T) {
	sessions := []*Session{{ID: "a", Model: "anything"}}
	repaired, changed := RepairSessions(sessions, nil)
	if changed {
		t.Error("Expected no changes with an empty model list")
	}
	if repaired[0].Model != "anything" {
		t.Errorf("Expected model untouched, got %q", repaired[0].Model)
	}
}

func TestRepairSessionsNoChanges(t *testing.T) {
	sessions := []*Session{{ID: "a", Model: "llama3.2:latest"}}
	_, changed := RepairSessions(sessions, []string{"llama3.2:latest"})
	if changed {
		t.Error("Expected no changes when every model is valid")
	}
}

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Python Code Review", "python code") {
		t.Error("Expected case-insensitive substring match")
	}
	if ContainsFold("short", "much longer needle") {
		t.Error("Expected no match")
	}
	if !ContainsFold("anything", "") {
		t.Error("Expected empty needle to match")
	}
}
