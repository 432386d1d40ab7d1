package telegram

import (
	"sync"
	"testing"
	"time"
)

type emittedAlbum struct {
	chatID    int64
	groupedID int64
	messages  []Message
}

type albumCollector struct {
	mu     sync.Mutex
	albums []emittedAlbum
}

func (c *albumCollector) emit(chatID, groupedID int64, messages []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.albums = append(c.albums, emittedAlbum{chatID: chatID, groupedID: groupedID, messages: messages})
}

func (c *albumCollector) all() []emittedAlbum {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]emittedAlbum, len(c.albums))
	copy(out, c.albums)
	return out
}

func (c *albumCollector) waitFor(t *testing.T, n int) []emittedAlbum {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if albums := c.all(); len(albums) >= n {
			return albums
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d albums, have %d", n, len(c.all()))
	return nil
}

func TestAlbumAggregator(t *testing.T) {
	t.Run("emits members together sorted by id", func(t *testing.T) {
		coll := &albumCollector{}
		agg := newAlbumAggregator(20*time.Millisecond, coll.emit)

		agg.Add(Message{ID: 3, ChatID: 100, GroupedID: 777, Text: ""})
		agg.Add(Message{ID: 1, ChatID: 100, GroupedID: 777, Text: "caption"})
		agg.Add(Message{ID: 2, ChatID: 100, GroupedID: 777})

		albums := coll.waitFor(t, 1)
		album := albums[0]
		if album.chatID != 100 || album.groupedID != 777 {
			t.Errorf("album key = (%d, %d), want (100, 777)", album.chatID, album.groupedID)
		}
		if len(album.messages) != 3 {
			t.Fatalf("album has %d messages, want 3", len(album.messages))
		}
		for i, want := range []int{1, 2, 3} {
			if album.messages[i].ID != want {
				t.Errorf("messages[%d].ID = %d, want %d", i, album.messages[i].ID, want)
			}
		}
	})

	t.Run("window restarts on each member", func(t *testing.T) {
		coll := &albumCollector{}
		agg := newAlbumAggregator(50*time.Millisecond, coll.emit)

		agg.Add(Message{ID: 1, ChatID: 100, GroupedID: 777})
		time.Sleep(30 * time.Millisecond)
		if len(coll.all()) != 0 {
			t.Fatal("album emitted before the window elapsed")
		}
		agg.Add(Message{ID: 2, ChatID: 100, GroupedID: 777})
		time.Sleep(30 * time.Millisecond)
		if len(coll.all()) != 0 {
			t.Fatal("album emitted although a member restarted the window")
		}

		albums := coll.waitFor(t, 1)
		if len(albums[0].messages) != 2 {
			t.Errorf("album has %d messages, want 2", len(albums[0].messages))
		}
	})

	t.Run("distinct groups emit separately", func(t *testing.T) {
		coll := &albumCollector{}
		agg := newAlbumAggregator(20*time.Millisecond, coll.emit)

		agg.Add(Message{ID: 1, ChatID: 100, GroupedID: 777})
		agg.Add(Message{ID: 2, ChatID: 100, GroupedID: 888})
		agg.Add(Message{ID: 3, ChatID: 200, GroupedID: 777})

		albums := coll.waitFor(t, 3)
		if len(albums) != 3 {
			t.Fatalf("emitted %d albums, want 3", len(albums))
		}
		for _, album := range albums {
			if len(album.messages) != 1 {
				t.Errorf("album (%d, %d) has %d messages, want 1",
					album.chatID, album.groupedID, len(album.messages))
			}
		}
	})

	t.Run("flush all emits pending immediately", func(t *testing.T) {
		coll := &albumCollector{}
		agg := newAlbumAggregator(10*time.Second, coll.emit)

		agg.Add(Message{ID: 1, ChatID: 100, GroupedID: 777})
		agg.Add(Message{ID: 2, ChatID: 100, GroupedID: 777})
		agg.FlushAll()

		albums := coll.all()
		if len(albums) != 1 {
			t.Fatalf("emitted %d albums, want 1", len(albums))
		}
		if len(albums[0].messages) != 2 {
			t.Errorf("album has %d messages, want 2", len(albums[0].messages))
		}

		// nothing left to flush
		agg.FlushAll()
		if len(coll.all()) != 1 {
			t.Error("second FlushAll emitted extra albums")
		}
	})
}
