package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// stateKey is the fixed slot in appStateKV holding the whole session
// collection.
const stateKey = "chat-sessions-state"

// storedState is the on-disk shape of the durable slot. Timestamps inside
// sessions serialize as RFC 3339 strings via encoding/json.
type storedState struct {
	Sessions         []*Session `json:"sessions"`
	CurrentSessionID string     `json:"currentSessionId"`
}

// Persister loads and saves the session collection to the durable slot.
type Persister struct {
	db *sql.DB
}

// NewPersister creates a persister over an open state database.
func NewPersister(db *sql.DB) *Persister {
	return &Persister{db: db}
}

// Save serializes the full session collection and current id into the slot.
func (p *Persister) Save(sessions []*Session, currentID string) error {
	state := storedState{Sessions: sessions, CurrentSessionID: currentID}
	data, err := json.Marshal(state)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return SetStateValue(p.db, stateKey, string(data))
}

// Load returns the stored collection with every record normalized. It fails
// softly: on any read or parse error the problem is logged and an empty
// collection is returned, so the caller falls back to a synthesized default
// session.
func (p *Persister) Load() ([]*Session, string) {
	value, ok, err := GetStateValue(p.db, stateKey)
	if err != nil {
		LogWarn("Failed to read stored sessions, starting fresh: %v", err)
		return nil, ""
	}
	if !ok {
		return nil, ""
	}

	var state storedState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		LogWarn("Stored sessions are unreadable, starting fresh: %v", err)
		return nil, ""
	}

	now := time.Now()
	sessions := make([]*Session, 0, len(state.Sessions))
	for _, s := range state.Sessions {
		if s == nil || s.ID == "" {
			continue
		}
		sessions = append(sessions, s.Normalize(now))
	}
	return sessions, state.CurrentSessionID
}

// EncodeSessions renders a standalone export of the session collection: a
// pretty-printed JSON array of session records with RFC 3339 timestamps.
func EncodeSessions(sessions []*Session) ([]byte, error) {
	return json.MarshalIndent(sessions, "", "  ")
}

// BackupFilename returns the export filename for the given day, e.g.
// chat-sessions-backup-2026-08-28.json.
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("chat-sessions-backup-%s.json", t.Format("2006-01-02"))
}

// importProbe is the minimal shape every imported record must satisfy.
type importProbe struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

// DecodeImport parses and validates an import payload. The payload must be a
// JSON array of objects each carrying at least a non-empty id and a name.
// Anything else yields a ValidationError naming the offending record indexes;
// nothing is partially applied. Valid records are normalized per the legacy
// upgrade rules.
func DecodeImport(data []byte) ([]*Session, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Reason: "input is not a JSON array of session objects"}
	}

	var bad []int
	for i, r := range raw {
		var probe importProbe
		if err := json.Unmarshal(r, &probe); err != nil {
			bad = append(bad, i)
			continue
		}
		if probe.ID == nil || *probe.ID == "" || probe.Name == nil {
			bad = append(bad, i)
		}
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Reason: "records must be objects with id and name", Records: bad}
	}

	now := time.Now()
	sessions := make([]*Session, 0, len(raw))
	for i, r := range raw {
		var s Session
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, &ValidationError{Reason: "record is not a valid session object", Records: []int{i}}
		}
		sessions = append(sessions, s.Normalize(now))
	}
	return sessions, nil
}
