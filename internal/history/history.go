// Package history maintains the append-only record of completed forwards.
//
// The file is a side artifact, not load-bearing for correctness: one
// tab-separated line per forward, never mutated or deleted by the process.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// timeLayout matches the timestamp format of the history file.
const timeLayout = "2006-01-02 15:04:05"

// Record describes one completed forward.
type Record struct {
	Time              time.Time
	SourceChatIDs     []int64
	DestinationChatID int64
	MessageIDs        []int
	Keywords          []string
	Batch             bool
}

// Line renders the record as a single history file line (without newline):
//
//	timestamp TAB SRC:<ids> TAB DEST:<id> TAB IDS:<comma-list> TAB KWS:<comma-list-or-ANY> TAB [BATCH|SINGLE]
func (r Record) Line() string {
	srcs := make([]string, len(r.SourceChatIDs))
	for i, id := range r.SourceChatIDs {
		srcs[i] = strconv.FormatInt(id, 10)
	}

	ids := make([]string, len(r.MessageIDs))
	for i, id := range r.MessageIDs {
		ids[i] = strconv.Itoa(id)
	}

	kws := "ANY"
	if len(r.Keywords) > 0 {
		kws = strings.Join(r.Keywords, ",")
	}

	kind := "SINGLE"
	if r.Batch {
		kind = "BATCH"
	}

	return fmt.Sprintf("%s\tSRC:%s\tDEST:%d\tIDS:%s\tKWS:%s\t%s",
		r.Time.Format(timeLayout),
		strings.Join(srcs, ","),
		r.DestinationChatID,
		strings.Join(ids, ","),
		kws,
		kind,
	)
}

// Log appends forward records to a file. Appends are serialized with a
// mutex; the file is opened once in append mode.
type Log struct {
	mu   sync.Mutex
	file *os.File
}

// NewLog opens (creating if needed) the history file at path.
func NewLog(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	return &Log{file: file}, nil
}

// Append writes one record line. Records with a zero Time are stamped now.
func (l *Log) Append(rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.WriteString(rec.Line() + "\n"); err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
