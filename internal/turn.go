package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TurnState is the phase of the streaming turn state machine.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnSending
	TurnStreaming
	TurnFinalizing
)

// ErrorMarker replaces the assistant placeholder when a turn fails for any
// reason other than cancellation.
const ErrorMarker = "Error: failed to generate a response. Please try again."

// ErrTurnInProgress is returned when a send or regenerate is attempted while
// another turn is active anywhere in the application.
var ErrTurnInProgress = errors.New("a turn is already in progress")

// TurnRunner drives one inference turn: append the user message and an empty
// assistant placeholder, stream the completion into the placeholder one chunk
// at a time, then finalize and conditionally trigger metadata generation.
//
// Exactly one turn may be active across the whole application at a time; the
// runner's single busy gate serializes turns across all sessions. This is a
// deliberate capacity constraint, not an accident of implementation.
type TurnRunner struct {
	mu        sync.Mutex
	store     *Store
	transport Transport
	metadata  *MetadataGenerator
	state     TurnState
	cancel    context.CancelFunc
}

// NewTurnRunner wires a runner to the store and transport. metadata may be
// nil to disable auto-generation.
func NewTurnRunner(store *Store, transport Transport, metadata *MetadataGenerator) *TurnRunner {
	return &TurnRunner{store: store, transport: transport, metadata: metadata}
}

// State returns the current phase.
func (r *TurnRunner) State() TurnState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Busy reports whether a turn is active.
func (r *TurnRunner) Busy() bool {
	return r.State() != TurnIdle
}

// Stop aborts the in-flight turn, if any. Content already streamed is
// retained; the machine returns to idle without metadata generation.
func (r *TurnRunner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *TurnRunner) begin(ctx context.Context) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != TurnIdle {
		return nil, ErrTurnInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	r.state = TurnSending
	r.cancel = cancel
	return ctx, nil
}

func (r *TurnRunner) setState(state TurnState) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

func (r *TurnRunner) end() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.state = TurnIdle
	r.mu.Unlock()
}

// SendMessage appends input as a user message and runs one turn against the
// session's model. onChunk, when non-nil, observes each committed fragment
// (for live display); commits happen regardless. The returned error is nil on
// success and on cancellation.
func (r *TurnRunner) SendMessage(ctx context.Context, sessionID, input string, onChunk func(string)) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return errors.New("message is empty")
	}

	sess := r.store.Get(sessionID)
	if sess == nil {
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	if sess.Model == "" {
		return errors.New("session has no model configured")
	}

	ctx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer r.end()

	messages := append(sess.Messages, Message{Role: RoleUser, Content: input})
	history := append([]Message(nil), messages...)
	messages = append(messages, Message{Role: RoleAssistant})
	r.store.UpdateMessages(sessionID, messages)

	return r.run(ctx, sess, messages, history, len(messages)-1, onChunk)
}

// Regenerate re-runs the turn that produced the most recent assistant
// message, replacing it in place. The inference history is truncated to
// everything before that message.
func (r *TurnRunner) Regenerate(ctx context.Context, sessionID string, onChunk func(string)) error {
	sess := r.store.Get(sessionID)
	if sess == nil {
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	if sess.Model == "" {
		return errors.New("session has no model configured")
	}
	target := sess.LastAssistantIndex()
	if target < 0 {
		return errors.New("nothing to regenerate")
	}

	ctx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer r.end()

	messages := append([]Message(nil), sess.Messages...)
	history := append([]Message(nil), messages[:target]...)
	messages[target] = Message{Role: RoleAssistant}
	r.store.UpdateMessages(sessionID, messages)

	return r.run(ctx, sess, messages, history, target, onChunk)
}

// run executes the Sending -> Streaming -> Finalizing legs. messages is the
// committed slice containing the placeholder at index target; history is what
// the model sees.
func (r *TurnRunner) run(ctx context.Context, sess *Session, messages, history []Message, target int, onChunk func(string)) error {
	req := ChatRequest{
		Model:    sess.Model,
		Messages: withSystemPrompt(sess.SystemPrompt, history),
		Options:  sess.Options,
	}

	var content string
	var err error
	if sess.Options.StreamEnabled() {
		r.setState(TurnStreaming)
		var accumulated strings.Builder
		content, err = r.transport.ChatStream(ctx, req, func(fragment string) error {
			accumulated.WriteString(fragment)
			messages[target].Content = accumulated.String()
			r.store.UpdateMessages(sess.ID, messages)
			if onChunk != nil {
				onChunk(fragment)
			}
			return nil
		})
	} else {
		content, err = r.transport.Chat(ctx, req)
		if err == nil && onChunk != nil {
			onChunk(content)
		}
	}

	if err != nil {
		if IsCancellation(err) {
			// Partial content stays as committed; no error surfaced.
			LogDebug("Turn cancelled for session %s", sess.ID)
			return nil
		}
		LogError("Turn failed for session %s: %v", sess.ID, err)
		messages[target].Content = ErrorMarker
		r.store.UpdateMessages(sess.ID, messages)
		return err
	}

	r.setState(TurnFinalizing)
	messages[target].Content = content
	r.store.UpdateMessages(sess.ID, messages)

	// Auto-metadata fires only while the session still carries the default
	// name at turn completion; renaming mid-turn suppresses it.
	if r.metadata != nil {
		if current := r.store.Get(sess.ID); current != nil && current.Name == DefaultSessionName {
			r.metadata.GenerateAll(sess.ID)
		}
	}
	return nil
}

// withSystemPrompt prefixes the session's system prompt to the history sent
// to the model.
func withSystemPrompt(prompt string, history []Message) []Message {
	if strings.TrimSpace(prompt) == "" {
		return history
	}
	out := make([]Message, 0, len(history)+1)
	out = append(out, Message{Role: RoleSystem, Content: prompt})
	return append(out, history...)
}
