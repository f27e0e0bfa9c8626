package internal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionName is the placeholder name assigned to new sessions. It also
// acts as the trigger for automatic metadata generation: once a turn completes
// and the session is still named this, name/tags/notes are derived from the
// conversation.
const DefaultSessionName = "New Chat"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single entry in a session's conversation. Ordering within a
// session is significant; messages are only appended, replaced by index, or
// removed by index - never reordered.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions holds optional generation parameters for a session. Nil fields
// fall through to the inference endpoint's defaults. An options object with
// every field unset is normalized to an absent (nil) options value.
type ChatOptions struct {
	Temperature   *float64 `json:"temperature,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	TopP          *float64 `json:"top_p,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
	Stop          []string `json:"stop,omitempty"`
	Stream        *bool    `json:"stream,omitempty"`
}

// IsEmpty reports whether no field is set.
func (o *ChatOptions) IsEmpty() bool {
	if o == nil {
		return true
	}
	return o.Temperature == nil && o.TopK == nil && o.TopP == nil &&
		o.RepeatPenalty == nil && o.Stop == nil && o.Stream == nil
}

// Merge returns a copy of o with every set field of override applied on top.
// Unset override fields keep the existing value (shallow merge). A result with
// no set fields collapses to nil.
func (o *ChatOptions) Merge(override *ChatOptions) *ChatOptions {
	merged := ChatOptions{}
	if o != nil {
		merged = *o
	}
	if override != nil {
		if override.Temperature != nil {
			merged.Temperature = override.Temperature
		}
		if override.TopK != nil {
			merged.TopK = override.TopK
		}
		if override.TopP != nil {
			merged.TopP = override.TopP
		}
		if override.RepeatPenalty != nil {
			merged.RepeatPenalty = override.RepeatPenalty
		}
		if override.Stop != nil {
			merged.Stop = override.Stop
		}
		if override.Stream != nil {
			merged.Stream = override.Stream
		}
	}
	if merged.IsEmpty() {
		return nil
	}
	return &merged
}

// StreamEnabled reports whether streaming is requested. Streaming is the
// default when the option is unset.
func (o *ChatOptions) StreamEnabled() bool {
	if o == nil || o.Stream == nil {
		return true
	}
	return *o.Stream
}

// Session is one independent conversation with its own model, prompt,
// generation options and user metadata. Sessions are owned exclusively by the
// Store; everything else only reads snapshots.
type Session struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	SystemPrompt string       `json:"systemPrompt"`
	Messages     []Message    `json:"messages"`
	Model        string       `json:"model"`
	Options      *ChatOptions `json:"options,omitempty"`
	Tags         []string     `json:"tags"`
	Notes        string       `json:"notes"`
	IsBookmarked bool         `json:"isBookmarked"`
	IsFavorite   bool         `json:"isFavorite"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// NewSession creates a session with defaults. The model is the first entry of
// the available model list, or empty when no models are known yet.
func NewSession(models []string) *Session {
	model := ""
	if len(models) > 0 {
		model = models[0]
	}
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Name:      DefaultSessionName,
		Messages:  []Message{},
		Model:     model,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	c.Tags = append([]string(nil), s.Tags...)
	if s.Options != nil {
		opts := *s.Options
		opts.Stop = append([]string(nil), s.Options.Stop...)
		c.Options = &opts
	}
	return &c
}

// LastAssistantIndex returns the index of the most recent assistant message,
// scanning from the end, or -1 when there is none.
func (s *Session) LastAssistantIndex() int {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return i
		}
	}
	return -1
}

// Normalize upgrades a partial or legacy record in place so that every field
// the application relies on is present: missing tags become an empty set,
// missing notes stay an empty string, missing flags false, missing or zero
// timestamps "now". Returns the session for chaining.
func (s *Session) Normalize(now time.Time) *Session {
	if s.Name == "" {
		s.Name = DefaultSessionName
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.Options.IsEmpty() {
		s.Options = nil
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	return s
}

// RepairSessions returns a copy of sessions where every session whose model is
// empty or not in the available list points at the first available model. The
// second return value reports whether anything changed. With no models
// available the input is returned unchanged.
func RepairSessions(sessions []*Session, models []string) ([]*Session, bool) {
	if len(models) == 0 {
		return sessions, false
	}
	known := make(map[string]bool, len(models))
	for _, m := range models {
		known[m] = true
	}
	changed := false
	out := make([]*Session, len(sessions))
	for i, s := range sessions {
		if s.Model == "" || !known[s.Model] {
			repaired := s.Clone()
			repaired.Model = models[0]
			out[i] = repaired
			changed = true
			continue
		}
		out[i] = s
	}
	return out, changed
}

// ContainsFold reports whether substr occurs in s, case-insensitively.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
