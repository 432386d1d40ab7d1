package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/ext"
	"github.com/celestix/gotgproto/dispatcher/handlers"
	"github.com/celestix/gotgproto/dispatcher/handlers/filters"

	"github.com/blockedby/forwarder-os/internal/forwarder"
	"github.com/blockedby/forwarder-os/internal/logger"
)

// binding routes events from a set of source chats to one job's handlers.
type binding struct {
	sources   map[int64]struct{}
	onMessage func(context.Context, forwarder.MessageEvent)
	onAlbum   func(context.Context, forwarder.AlbumEvent)
}

func (b *binding) listensTo(chatID int64) bool {
	_, ok := b.sources[chatID]
	return ok
}

func newBinding(sourceChats []int64) *binding {
	sources := make(map[int64]struct{}, len(sourceChats))
	for _, id := range sourceChats {
		sources[id] = struct{}{}
	}
	return &binding{sources: sources}
}

// Listener implements forwarder.Transport on top of the gotgproto update
// dispatcher. One dispatcher handler is installed per protocol client; job
// bindings live in the listener's own table, which makes ResetHandlers
// cheap and keeps repeated start/stop cycles from stacking handlers.
type Listener struct {
	manager *Manager
	albums  *albumAggregator
	log     *logger.Logger

	mu          sync.Mutex
	bindings    []*binding
	installedOn *gotgproto.Client
	runCtx      context.Context
}

// NewListener creates a listener over the manager. albumWindow <= 0 uses
// DefaultAlbumWindow.
func NewListener(manager *Manager, albumWindow time.Duration) *Listener {
	l := &Listener{
		manager: manager,
		log:     logger.Get(),
	}
	l.albums = newAlbumAggregator(albumWindow, l.emitAlbum)
	return l
}

// Connect establishes the session if not yet connected.
func (l *Listener) Connect(ctx context.Context) error {
	if l.manager.Ready() {
		return nil
	}
	return l.manager.Init(ctx)
}

// Connected reports whether the session is usable.
func (l *Listener) Connected() bool {
	return l.manager.Ready()
}

// ResetHandlers drops all job bindings.
func (l *Listener) ResetHandlers() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bindings = nil
}

// OnNewMessage registers fn for individual messages from the given chats.
func (l *Listener) OnNewMessage(sourceChats []int64, fn func(context.Context, forwarder.MessageEvent)) {
	b := newBinding(sourceChats)
	b.onMessage = fn
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bindings = append(l.bindings, b)
}

// OnAlbum registers fn for grouped-message notifications from the given chats.
func (l *Listener) OnAlbum(sourceChats []int64, fn func(context.Context, forwarder.AlbumEvent)) {
	b := newBinding(sourceChats)
	b.onAlbum = fn
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bindings = append(l.bindings, b)
}

// Run serves updates until the context is cancelled or the connection
// terminates.
func (l *Listener) Run(ctx context.Context) error {
	proto := l.manager.GetClient()
	if proto == nil {
		return ErrUnauthorized
	}

	l.mu.Lock()
	l.runCtx = ctx
	if l.installedOn != proto {
		proto.Dispatcher.AddHandler(handlers.NewMessage(filters.Message.All, l.onUpdate))
		l.installedOn = proto
	}
	l.mu.Unlock()

	idleErr := make(chan error, 1)
	go func() {
		idleErr <- proto.Idle()
	}()

	select {
	case <-ctx.Done():
		l.Disconnect()
		<-idleErr
		return nil
	case err := <-idleErr:
		l.albums.FlushAll()
		return err
	}
}

// Disconnect terminates the connection, unblocking Run.
func (l *Listener) Disconnect() {
	l.albums.FlushAll()
	l.manager.Stop()
}

// onUpdate is the single dispatcher handler feeding all job bindings.
func (l *Listener) onUpdate(_ *ext.Context, update *ext.Update) error {
	m := update.EffectiveMessage
	if m == nil || m.Out {
		return nil
	}

	chat := update.EffectiveChat()
	if chat == nil {
		return nil
	}

	msg := Message{
		ID:        m.ID,
		ChatID:    chat.GetID(),
		Text:      m.Text,
		GroupedID: m.GroupedID,
	}

	if msg.GroupedID != 0 {
		// Album members are buffered; the synthesized album event fires
		// first on flush, then the members are delivered individually.
		l.albums.Add(msg)
		return nil
	}

	l.dispatchMessage(msg)
	return nil
}

// emitAlbum delivers a flushed album: the album notification first, then
// each member as an individual message. Both notification kinds always
// reach the handlers; the dedup cache decides who forwards.
func (l *Listener) emitAlbum(chatID, groupedID int64, messages []Message) {
	members := make([]forwarder.AlbumMessage, len(messages))
	for i, m := range messages {
		members[i] = forwarder.AlbumMessage{ID: m.ID, Text: m.Text}
	}
	ev := forwarder.AlbumEvent{
		SourceChatID: chatID,
		GroupedID:    groupedID,
		Messages:     members,
	}

	ctx, bindings := l.snapshot()
	for _, b := range bindings {
		if b.onAlbum != nil && b.listensTo(chatID) {
			b.onAlbum(ctx, ev)
		}
	}

	for _, m := range messages {
		l.dispatchMessage(m)
	}
}

func (l *Listener) dispatchMessage(msg Message) {
	ev := forwarder.MessageEvent{
		SourceChatID: msg.ChatID,
		ID:           msg.ID,
		Text:         msg.Text,
		GroupedID:    msg.GroupedID,
	}

	ctx, bindings := l.snapshot()
	for _, b := range bindings {
		if b.onMessage != nil && b.listensTo(msg.ChatID) {
			b.onMessage(ctx, ev)
		}
	}
}

// snapshot returns the run context and a stable copy of the bindings.
func (l *Listener) snapshot() (context.Context, []*binding) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx := l.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	bindings := make([]*binding, len(l.bindings))
	copy(bindings, l.bindings)
	return ctx, bindings
}
