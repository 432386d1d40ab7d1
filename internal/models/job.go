// Package models defines the domain types shared across services.
package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// validation errors
var (
	ErrNoSourceChats = errors.New("job must have at least one source chat")
	ErrNoDestination = errors.New("job must have a destination chat")
)

// Job is a routing rule: forward messages from the source chats to the
// destination chat when they match the keyword filter. Jobs are immutable
// once loaded; a reload replaces them wholesale.
type Job struct {
	ID                uuid.UUID `json:"id" yaml:"-"`
	SourceChatIDs     []int64   `json:"source_chat_ids" yaml:"source_chat_ids"`
	DestinationChatID int64     `json:"destination_chat_id" yaml:"destination_chat_id"`
	// Keywords are stored lowercase. An empty set matches every message,
	// including pure media with no caption.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Validate checks structural requirements of a job.
func (j *Job) Validate() error {
	if len(j.SourceChatIDs) == 0 {
		return ErrNoSourceChats
	}
	if j.DestinationChatID == 0 {
		return ErrNoDestination
	}
	return nil
}

// Normalize lowercases keywords, drops empty ones and assigns an ID if unset.
func (j *Job) Normalize() {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	kws := j.Keywords[:0]
	for _, kw := range j.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			kws = append(kws, kw)
		}
	}
	j.Keywords = kws
}

// MatchesText reports whether text passes the keyword filter:
// true when no keywords are configured, otherwise true when any keyword
// is a case-insensitive substring of text.
func (j *Job) MatchesText(text string) bool {
	if len(j.Keywords) == 0 {
		return true
	}
	text = strings.ToLower(text)
	for _, kw := range j.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ListensTo reports whether chatID is one of the job's source chats.
func (j *Job) ListensTo(chatID int64) bool {
	for _, id := range j.SourceChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
