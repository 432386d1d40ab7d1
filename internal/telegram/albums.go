package telegram

import (
	"sort"
	"sync"
	"time"
)

// DefaultAlbumWindow is how long the aggregator waits for more album
// members after the last one seen before emitting the album.
const DefaultAlbumWindow = 600 * time.Millisecond

type albumKey struct {
	chatID    int64
	groupedID int64
}

type pendingAlbum struct {
	messages []Message
	timer    *time.Timer
}

// albumAggregator synthesizes grouped-message notifications. Telegram
// delivers album members as individual updates sharing a grouped id, with
// no end-of-album marker; buffering for a short window after the last
// member is the conventional way to reassemble them.
type albumAggregator struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[albumKey]*pendingAlbum
	emit    func(chatID, groupedID int64, messages []Message)
}

func newAlbumAggregator(window time.Duration, emit func(chatID, groupedID int64, messages []Message)) *albumAggregator {
	if window <= 0 {
		window = DefaultAlbumWindow
	}
	return &albumAggregator{
		window:  window,
		pending: make(map[albumKey]*pendingAlbum),
		emit:    emit,
	}
}

// Add buffers one album member. The flush timer restarts on every member,
// so an album is emitted one window after its last message arrived.
func (a *albumAggregator) Add(msg Message) {
	key := albumKey{chatID: msg.ChatID, groupedID: msg.GroupedID}

	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[key]
	if !ok {
		p = &pendingAlbum{}
		a.pending[key] = p
	}
	p.messages = append(p.messages, msg)

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(a.window, func() {
		a.flush(key)
	})
}

func (a *albumAggregator) flush(key albumKey) {
	a.mu.Lock()
	p, ok := a.pending[key]
	if ok {
		delete(a.pending, key)
	}
	a.mu.Unlock()

	if !ok || len(p.messages) == 0 {
		return
	}

	sort.Slice(p.messages, func(i, j int) bool {
		return p.messages[i].ID < p.messages[j].ID
	})
	a.emit(key.chatID, key.groupedID, p.messages)
}

// FlushAll emits every pending album immediately. Called on disconnect so
// buffered members are not silently dropped.
func (a *albumAggregator) FlushAll() {
	a.mu.Lock()
	keys := make([]albumKey, 0, len(a.pending))
	for key, p := range a.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		keys = append(keys, key)
	}
	a.mu.Unlock()

	for _, key := range keys {
		a.flush(key)
	}
}
