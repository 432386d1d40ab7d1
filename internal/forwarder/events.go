// Package forwarder implements the forward-routing engine: per-job album
// and message handlers, the shared dedup cache, the forward executor with
// rate-limit backoff, and the listener registry lifecycle.
package forwarder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageEvent is an individual incoming message notification.
type MessageEvent struct {
	SourceChatID int64
	ID           int
	Text         string
	// GroupedID is non-zero when the message is part of an album.
	// It is informational only: the dedup cache, not this field, decides
	// whether the message was already handled by the album path.
	GroupedID int64
}

// AlbumMessage is one member of a grouped-message notification.
type AlbumMessage struct {
	ID   int
	Text string
}

// AlbumEvent is a grouped-message notification covering a whole album.
type AlbumEvent struct {
	SourceChatID int64
	GroupedID    int64
	Messages     []AlbumMessage
}

// Caption returns the album's textual content: the first non-empty member
// text in delivery order, or "" when the album has no caption.
func (ev *AlbumEvent) Caption() string {
	for _, m := range ev.Messages {
		if m.Text != "" {
			return m.Text
		}
	}
	return ""
}

// MessageIDs returns the member message ids in delivery order.
func (ev *AlbumEvent) MessageIDs() []int {
	ids := make([]int, len(ev.Messages))
	for i, m := range ev.Messages {
		ids[i] = m.ID
	}
	return ids
}

// Transport is the event/session layer the registry runs on.
// internal/telegram provides the production implementation.
type Transport interface {
	// Connect establishes the underlying session if not yet connected.
	Connect(ctx context.Context) error
	// Connected reports whether the session is usable.
	Connected() bool
	// ResetHandlers drops all handler bindings registered so far.
	ResetHandlers()
	// OnNewMessage registers fn for individual messages from the given chats.
	OnNewMessage(sourceChats []int64, fn func(context.Context, MessageEvent))
	// OnAlbum registers fn for grouped-message notifications from the given chats.
	OnAlbum(sourceChats []int64, fn func(context.Context, AlbumEvent))
	// Run serves events until the context is cancelled or the connection
	// terminates, then returns the terminal error (nil on clean stop).
	Run(ctx context.Context) error
	// Disconnect terminates the connection, unblocking Run.
	Disconnect()
}

// MessageForwarder performs the platform forward call.
type MessageForwarder interface {
	ForwardMessages(ctx context.Context, fromChatID, toChatID int64, ids []int) (int, error)
}

// ForwardEvent describes one completed forward, for external consumers.
type ForwardEvent struct {
	ID                uuid.UUID `json:"id"`
	SourceChatID      int64     `json:"source_chat_id"`
	DestinationChatID int64     `json:"destination_chat_id"`
	MessageIDs        []int     `json:"message_ids"`
	Keywords          []string  `json:"keywords"`
	Batch             bool      `json:"batch"`
	ForwardedAt       time.Time `json:"forwarded_at"`
}

// EventPublisher publishes completed-forward events. Implementations must
// tolerate being nil-checked by callers; publishing is best effort.
type EventPublisher interface {
	PublishForward(ctx context.Context, event ForwardEvent) error
}
