package telegram

// Status represents the Telegram client status.
type Status string

// Status constants define the possible states of the Telegram client.
const (
	StatusInitializing Status = "INITIALIZING"
	StatusReady        Status = "READY"
	StatusUnauthorized Status = "UNAUTHORIZED"
	StatusError        Status = "ERROR"
)

// Message is an incoming message as seen by the listener.
type Message struct {
	ID        int    // message id (unique within chat)
	ChatID    int64  // source chat id
	Text      string // text or media caption, may be empty
	GroupedID int64  // album grouping id, 0 for standalone messages
}

// Dialog is one entry of the account's chat list.
type Dialog struct {
	ID    int64  // chat id as used in job configuration
	Title string // chat/channel title or user display name
	Kind  string // "user", "chat" or "channel"
}
