package internal

import (
	"strings"
	"sync"
	"time"
)

// SessionUpdate is a partial set of session fields for Store.UpdateSession.
// Nil fields are left unchanged.
type SessionUpdate struct {
	Name         *string
	SystemPrompt *string
	Messages     []Message
	Model        *string
	Options      *ChatOptions
	Tags         []string
	Notes        *string
}

// Store owns the session collection and the current session id. Every
// mutation is committed under a single lock and persisted to the durable slot
// before the call returns; external readers only ever receive deep copies.
//
// The collection is never left empty: deleting the last session synthesizes a
// fresh default one.
type Store struct {
	mu        sync.Mutex
	sessions  []*Session
	currentID string
	registry  *ModelRegistry
	persister *Persister
}

// NewStore rehydrates the collection from the persister and wires the store
// to the model registry: when the registry becomes ready, sessions with a
// stale or empty model are repaired to the first available model.
func NewStore(persister *Persister, registry *ModelRegistry) *Store {
	s := &Store{registry: registry, persister: persister}

	sessions, currentID := persister.Load()
	if len(sessions) == 0 {
		fresh := s.newSession()
		sessions = []*Session{fresh}
		currentID = fresh.ID
	} else if findSession(sessions, currentID) == nil {
		currentID = sessions[0].ID
	}
	s.sessions = sessions
	s.currentID = currentID
	s.persist()

	if registry != nil {
		registry.OnReady(func(models []string) {
			s.repairModels(models)
		})
	}
	return s
}

func findSession(sessions []*Session, id string) *Session {
	for _, sess := range sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func (s *Store) newSession() *Session {
	var models []string
	if s.registry != nil {
		models = s.registry.Models()
	}
	return NewSession(models)
}

// persist writes the committed state. Must be called with the lock held (or
// during construction before the store is shared). Save failures are not
// user-recoverable and are only logged.
func (s *Store) persist() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.sessions, s.currentID); err != nil {
		LogError("Failed to persist sessions: %v", err)
	}
}

func (s *Store) repairModels(models []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	repaired, changed := RepairSessions(s.sessions, models)
	if !changed {
		return
	}
	s.sessions = repaired
	s.persist()
	LogDebug("Repaired session models against %d available model(s)", len(models))
}

// CreateSession returns a new detached session with defaults applied. The
// model defaults to the first registry entry when the registry has loaded.
func (s *Store) CreateSession() *Session {
	return s.newSession()
}

// AddSession creates a session, appends it to the collection and makes it
// current. The new session's id is returned.
func (s *Store) AddSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.newSession()
	s.sessions = append(s.sessions, sess)
	s.currentID = sess.ID
	s.persist()
	return sess.ID
}

// SelectSession sets the current session id. Unknown ids are ignored.
func (s *Store) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if findSession(s.sessions, id) == nil {
		return
	}
	s.currentID = id
	s.persist()
}

// DeleteSession removes a session. Deleting the last session synthesizes a
// replacement; deleting the current session moves current to the first
// remaining one.
func (s *Store) DeleteSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.sessions[:0]
	removed := false
	for _, sess := range s.sessions {
		if sess.ID == id {
			removed = true
			continue
		}
		kept = append(kept, sess)
	}
	if !removed {
		return
	}
	s.sessions = kept

	if len(s.sessions) == 0 {
		fresh := s.newSession()
		s.sessions = []*Session{fresh}
		s.currentID = fresh.ID
	} else if s.currentID == id {
		s.currentID = s.sessions[0].ID
	}
	s.persist()
}

// UpdateSession merges the given fields into a session and refreshes
// updatedAt. A model not present in the registry is a warning, not an error:
// the mutation still applies.
func (s *Store) UpdateSession(id string, update SessionUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := findSession(s.sessions, id)
	if sess == nil {
		return
	}
	if update.Name != nil {
		sess.Name = *update.Name
	}
	if update.SystemPrompt != nil {
		sess.SystemPrompt = *update.SystemPrompt
	}
	if update.Messages != nil {
		sess.Messages = append([]Message(nil), update.Messages...)
	}
	if update.Model != nil {
		if s.registry != nil && s.registry.Ready() && !s.registry.Has(*update.Model) {
			LogWarn("Model %q is not in the available model list", *update.Model)
		}
		sess.Model = *update.Model
	}
	if update.Options != nil {
		opts := *update.Options
		sess.Options = &opts
		if sess.Options.IsEmpty() {
			sess.Options = nil
		}
	}
	if update.Tags != nil {
		sess.Tags = append([]string(nil), update.Tags...)
	}
	if update.Notes != nil {
		sess.Notes = *update.Notes
	}
	sess.UpdatedAt = time.Now()
	s.persist()
}

// RenameSession sets the session name. Empty or whitespace-only names are
// ignored.
func (s *Store) RenameSession(id, name string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	s.UpdateSession(id, SessionUpdate{Name: &trimmed})
}

// SetTags replaces the session's tag set.
func (s *Store) SetTags(id string, tags []string) {
	s.UpdateSession(id, SessionUpdate{Tags: tags})
}

// SetNotes replaces the session's notes.
func (s *Store) SetNotes(id, notes string) {
	s.UpdateSession(id, SessionUpdate{Notes: &notes})
}

// UpdateMessages replaces the session's message list.
func (s *Store) UpdateMessages(id string, messages []Message) {
	if messages == nil {
		messages = []Message{}
	}
	s.UpdateSession(id, SessionUpdate{Messages: messages})
}

// UpdateSystemPrompt replaces the session's system prompt.
func (s *Store) UpdateSystemPrompt(id, prompt string) {
	s.UpdateSession(id, SessionUpdate{SystemPrompt: &prompt})
}

// UpdateModel points the session at a different model.
func (s *Store) UpdateModel(id, model string) {
	s.UpdateSession(id, SessionUpdate{Model: &model})
}

// UpdateOptions shallow-merges the given options into the session's existing
// options. Set fields override, unset fields are kept.
func (s *Store) UpdateOptions(id string, options *ChatOptions) {
	s.mu.Lock()
	sess := findSession(s.sessions, id)
	var merged *ChatOptions
	if sess != nil {
		merged = sess.Options.Merge(options)
	}
	s.mu.Unlock()
	if sess == nil {
		return
	}
	if merged == nil {
		merged = &ChatOptions{}
	}
	s.UpdateSession(id, SessionUpdate{Options: merged})
}

// ToggleBookmark flips the bookmark flag. Bookmark and favorite are
// independent; toggling one never changes the other.
func (s *Store) ToggleBookmark(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := findSession(s.sessions, id)
	if sess == nil {
		return
	}
	sess.IsBookmarked = !sess.IsBookmarked
	sess.UpdatedAt = time.Now()
	s.persist()
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := findSession(s.sessions, id)
	if sess == nil {
		return
	}
	sess.IsFavorite = !sess.IsFavorite
	sess.UpdatedAt = time.Now()
	s.persist()
}

// Sessions returns a deep-copied snapshot of the whole collection in order.
func (s *Store) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// Get returns a deep copy of one session, or nil when the id is unknown.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := findSession(s.sessions, id)
	if sess == nil {
		return nil
	}
	return sess.Clone()
}

// CurrentID returns the current session id.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Current returns a deep copy of the current session, or nil when the
// collection is empty.
func (s *Store) Current() *Session {
	s.mu.Lock()
	id := s.currentID
	s.mu.Unlock()
	return s.Get(id)
}

// ExportAll returns a serializable snapshot of all sessions.
func (s *Store) ExportAll() []*Session {
	return s.Sessions()
}

// ImportAll validates and imports a full session collection, replacing the
// existing one atomically. The current session becomes the first imported one
// (or none when the import is empty). Malformed input yields a
// ValidationError and leaves the store untouched.
func (s *Store) ImportAll(data []byte) error {
	sessions, err := DecodeImport(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
	if len(sessions) > 0 {
		s.currentID = sessions[0].ID
	} else {
		s.currentID = ""
	}
	s.persist()
	return nil
}
