package internal

import (
	"regexp"
	"strings"
)

// Search operators. `type` only accepts the literal values "bookmarked" and
// "favorite" (case-insensitive); anything else for it is silently discarded.
const (
	opSystem = "system"
	opName   = "name"
	opTag    = "tag"
	opNote   = "note"
	opIn     = "in"
	opType   = "type"
)

// operatorPattern matches operator:value and operator:"quoted value" tokens.
// A token only counts at the start of a word: an operator name embedded in a
// longer word (hostname:server1, login:failed) is plain free text.
var operatorPattern = regexp.MustCompile(`(?:^|\s)(system|name|tag|note|in|type):(?:"([^"]*)"|(\S+))`)

// SearchQuery is the parsed form of a raw query string: explicit operator
// constraints plus residual free text.
type SearchQuery struct {
	System   string
	Name     string
	Tag      string
	Note     string
	In       string
	Type     string // "bookmarked", "favorite" or empty
	FreeText string
}

// IsEmpty reports whether the query constrains anything at all.
func (q SearchQuery) IsEmpty() bool {
	return q == SearchQuery{}
}

// ParseSearchQuery scans a raw query for operator tokens and strips them from
// the text; the trimmed residue is the free-text term. When an operator
// occurs more than once, the last occurrence wins.
func ParseSearchQuery(raw string) SearchQuery {
	var q SearchQuery

	matches := operatorPattern.FindAllStringSubmatch(raw, -1)
	for _, m := range matches {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		switch m[1] {
		case opSystem:
			q.System = value
		case opName:
			q.Name = value
		case opTag:
			q.Tag = value
		case opNote:
			q.Note = value
		case opIn:
			q.In = value
		case opType:
			switch strings.ToLower(value) {
			case "bookmarked", "favorite":
				q.Type = strings.ToLower(value)
			default:
				// Invalid type values are dropped entirely, not demoted
				// to free text.
			}
		}
	}

	q.FreeText = strings.TrimSpace(operatorPattern.ReplaceAllString(raw, ""))
	return q
}

// Matches reports whether a session satisfies every constraint of the query.
// All matching is case-insensitive substring containment. An empty query
// matches everything.
func (q SearchQuery) Matches(s *Session) bool {
	if q.System != "" && !ContainsFold(s.SystemPrompt, q.System) {
		return false
	}
	if q.Name != "" && !ContainsFold(s.Name, q.Name) {
		return false
	}
	if q.Tag != "" && !anyTagContains(s.Tags, q.Tag) {
		return false
	}
	if q.Note != "" && !ContainsFold(s.Notes, q.Note) {
		return false
	}
	if q.In != "" && !anyMessageContains(s.Messages, q.In) {
		return false
	}
	switch q.Type {
	case "bookmarked":
		if !s.IsBookmarked {
			return false
		}
	case "favorite":
		if !s.IsFavorite {
			return false
		}
	}
	if q.FreeText != "" {
		return ContainsFold(s.Name, q.FreeText) ||
			anyTagContains(s.Tags, q.FreeText) ||
			ContainsFold(s.Notes, q.FreeText) ||
			anyMessageContains(s.Messages, q.FreeText)
	}
	return true
}

// FilterSessions returns the sessions matching the raw query, preserving
// order. An empty query returns the input unchanged.
func FilterSessions(sessions []*Session, raw string) []*Session {
	if strings.TrimSpace(raw) == "" {
		return sessions
	}
	q := ParseSearchQuery(raw)
	if q.IsEmpty() {
		return sessions
	}
	out := make([]*Session, 0, len(sessions))
	for _, s := range sessions {
		if q.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

func anyTagContains(tags []string, substr string) bool {
	for _, t := range tags {
		if ContainsFold(t, substr) {
			return true
		}
	}
	return false
}

func anyMessageContains(messages []Message, substr string) bool {
	for _, m := range messages {
		if ContainsFold(m.Content, substr) {
			return true
		}
	}
	return false
}
