package internal

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CreateTestSession creates a test session with sample data
func CreateTestSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:   id,
		Name: "Test Conversation",
		Messages: []Message{
			{Role: RoleUser, Content: "Hello, how are you?"},
			{Role: RoleAssistant, Content: "I'm doing well, thank you!"},
		},
		Model:     "llama3.2:latest",
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FakeTransport is an in-memory Transport for tests. Streaming calls deliver
// Chunks in order; blocking calls return Response. Err, when set, fails every
// call.
type FakeTransport struct {
	mu sync.Mutex

	ModelList []string
	Response  string
	Chunks    []string
	Err       error

	// ChatFunc, when set, overrides Response/Err for blocking calls.
	ChatFunc func(ChatRequest) (string, error)

	// CancelAfter, when > 0, cancels the stream (via the hook below) after
	// that many chunks have been delivered.
	CancelAfter int
	OnCancel    func()

	ChatCalls   []ChatRequest
	ModelCalls  int
	StreamCalls int
}

// ListModels implements Transport.
func (f *FakeTransport) ListModels(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ModelCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]string(nil), f.ModelList...), nil
}

// Chat implements Transport.
func (f *FakeTransport) Chat(ctx context.Context, req ChatRequest) (string, error) {
	f.mu.Lock()
	f.ChatCalls = append(f.ChatCalls, req)
	err := f.Err
	resp := f.Response
	fn := f.ChatFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return resp, nil
}

// ChatStream implements Transport.
func (f *FakeTransport) ChatStream(ctx context.Context, req ChatRequest, onChunk func(string) error) (string, error) {
	f.mu.Lock()
	f.StreamCalls++
	f.ChatCalls = append(f.ChatCalls, req)
	err := f.Err
	chunks := append([]string(nil), f.Chunks...)
	cancelAfter := f.CancelAfter
	onCancel := f.OnCancel
	f.mu.Unlock()

	if err != nil {
		return "", err
	}

	var accumulated strings.Builder
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return accumulated.String(), ctx.Err()
		}
		accumulated.WriteString(chunk)
		if err := onChunk(chunk); err != nil {
			return accumulated.String(), err
		}
		if cancelAfter > 0 && i+1 == cancelAfter && onCancel != nil {
			onCancel()
		}
	}
	if ctx.Err() != nil {
		return accumulated.String(), ctx.Err()
	}
	return accumulated.String(), nil
}
