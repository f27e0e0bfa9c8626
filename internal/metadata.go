package internal

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// metadataTurnLimit is how many leading messages feed a generation call.
	metadataTurnLimit = 4
	// metadataContentLimit caps the content prefix taken from each message.
	metadataContentLimit = 500
	// metadataTemperature keeps the auxiliary calls low-moderate in
	// creativity.
	metadataTemperature = 0.3
)

const (
	namePrompt  = "Generate a short, descriptive title (3-6 words) for this conversation. Respond with only the title, no quotes."
	tagsPrompt  = "Suggest up to 5 short topic tags for this conversation. Respond with only the tags, comma-separated."
	notesPrompt = "Write a brief one-paragraph summary of this conversation. Respond with only the summary."
)

// MetadataGenerator derives a session's name, tags and notes from its early
// messages via auxiliary inference calls. The three kinds are independent and
// may run concurrently for the same session, but each kind holds a single
// "session id or none" in-flight marker: a second request of the same kind
// for the same session is a no-op while the first is outstanding.
type MetadataGenerator struct {
	mu        sync.Mutex
	store     *Store
	transport Transport
	wg        sync.WaitGroup

	nameFor  string
	tagsFor  string
	notesFor string
}

// NewMetadataGenerator wires a generator to the store and transport.
func NewMetadataGenerator(store *Store, transport Transport) *MetadataGenerator {
	return &MetadataGenerator{store: store, transport: transport}
}

// GenerateAll requests all three kinds concurrently for a session. A failure
// in one kind does not affect the others.
func (g *MetadataGenerator) GenerateAll(sessionID string) {
	g.wg.Add(3)
	go func() {
		defer g.wg.Done()
		g.GenerateName(context.Background(), sessionID)
	}()
	go func() {
		defer g.wg.Done()
		g.GenerateTags(context.Background(), sessionID)
	}()
	go func() {
		defer g.wg.Done()
		g.GenerateNotes(context.Background(), sessionID)
	}()
}

// Wait blocks until all generation requests started by GenerateAll finish.
func (g *MetadataGenerator) Wait() {
	g.wg.Wait()
}

// GenerateName derives and applies a session name.
func (g *MetadataGenerator) GenerateName(ctx context.Context, sessionID string) {
	g.generate(ctx, sessionID, &g.nameFor, namePrompt, func(result string) {
		name := cleanGeneratedName(result)
		if name != "" {
			g.store.RenameSession(sessionID, name)
		}
	})
}

// GenerateTags derives and applies session tags.
func (g *MetadataGenerator) GenerateTags(ctx context.Context, sessionID string) {
	g.generate(ctx, sessionID, &g.tagsFor, tagsPrompt, func(result string) {
		tags := splitTags(result)
		if len(tags) > 0 {
			g.store.SetTags(sessionID, tags)
		}
	})
}

// GenerateNotes derives and applies session notes.
func (g *MetadataGenerator) GenerateNotes(ctx context.Context, sessionID string) {
	g.generate(ctx, sessionID, &g.notesFor, notesPrompt, func(result string) {
		notes := strings.TrimSpace(result)
		if notes != "" {
			g.store.SetNotes(sessionID, notes)
		}
	})
}

// generate runs one metadata call guarded by the kind's in-flight marker.
// The marker is cleared in a deferred step regardless of outcome; failures
// are logged and leave the prior value untouched.
func (g *MetadataGenerator) generate(ctx context.Context, sessionID string, marker *string, instruction string, apply func(string)) {
	sess := g.store.Get(sessionID)
	if sess == nil || len(sess.Messages) == 0 || sess.Model == "" {
		return
	}

	g.mu.Lock()
	if *marker == sessionID {
		g.mu.Unlock()
		return
	}
	*marker = sessionID
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		if *marker == sessionID {
			*marker = ""
		}
		g.mu.Unlock()
	}()

	temp := metadataTemperature
	result, err := g.transport.Chat(ctx, ChatRequest{
		Model: sess.Model,
		Messages: []Message{
			{Role: RoleUser, Content: conversationDigest(sess.Messages) + "\n\n" + instruction},
		},
		Temperature: &temp,
	})
	if err != nil {
		LogWarn("Metadata generation failed for session %s: %v", sessionID, err)
		return
	}
	apply(result)
}

// conversationDigest renders the first few turns as "role: prefix" lines.
func conversationDigest(messages []Message) string {
	var b strings.Builder
	b.WriteString("Conversation:\n")
	limit := len(messages)
	if limit > metadataTurnLimit {
		limit = metadataTurnLimit
	}
	for _, m := range messages[:limit] {
		content := m.Content
		if len(content) > metadataContentLimit {
			// Back up to a rune boundary so the digest stays valid UTF-8.
			cut := metadataContentLimit
			for cut > 0 && !utf8.RuneStart(content[cut]) {
				cut--
			}
			content = content[:cut]
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String()
}

// cleanGeneratedName strips surrounding quotes and trailing punctuation from
// a model-produced title.
func cleanGeneratedName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.Trim(name, `"'`)
	name = strings.TrimRight(name, ".,!:;")
	return strings.TrimSpace(name)
}

// splitTags splits a comma-separated tag list, trimming each entry.
func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.Trim(strings.TrimSpace(p), `"'.`)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
