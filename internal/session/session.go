package session

import (
	"context"
	"maps"
	"time"
)

// State names a conversation step. The conversation package owns the values.
type State string

// Meta keys collected during a conversation.
const (
	KeyGrade         = "grade"
	KeySubject       = "subject"
	KeyChapter       = "chapter"
	KeyChapterTitle  = "chapter_title"
	KeyTeacher       = "teacher"
	KeyDate          = "date"
	KeyTextCandidate = "text_candidate"
)

// Session is the per-chat conversation record.
type Session struct {
	State       State             `json:"state"`
	Meta        map[string]string `json:"meta,omitempty"`
	TemplateRef string            `json:"template_ref,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Clone returns a copy that shares no map with s.
func (s Session) Clone() Session {
	out := s
	out.Meta = maps.Clone(s.Meta)
	if out.Meta == nil {
		out.Meta = map[string]string{}
	}
	return out
}

// ResetMeta clears collected metadata but keeps the template override.
func (s *Session) ResetMeta() {
	s.Meta = map[string]string{}
}

// Store persists sessions keyed by chat id and the admin broadcast target.
// Get on an unknown chat returns a fresh session in the zero state.
type Store interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Put(ctx context.Context, chatID int64, s Session) error
	Target(ctx context.Context) (int64, bool, error)
	SetTarget(ctx context.Context, chatID int64) error
}
