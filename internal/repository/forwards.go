// Package repository provides the sqlite-backed store of completed
// forwards: a queryable mirror of the history file, serving the control
// API. It is not load-bearing for deduplication.
package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/blockedby/forwarder-os/internal/history"
)

// ForwardRecord is one completed forward as stored in the database.
type ForwardRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SourceChatID      int64     `gorm:"index" json:"source_chat_id"`
	DestinationChatID int64     `gorm:"index" json:"destination_chat_id"`
	MessageIDs        string    `json:"message_ids"` // comma-separated
	Keywords          string    `json:"keywords"`    // comma-separated, empty = ANY
	Batch             bool      `json:"batch"`
	ForwardedAt       time.Time `gorm:"index" json:"forwarded_at"`
}

// TableName implements the gorm tabler interface.
func (ForwardRecord) TableName() string { return "forward_records" }

// ForwardsRepository stores forward records.
type ForwardsRepository struct {
	db *gorm.DB
}

// NewForwardsRepository creates the repository and migrates its schema.
func NewForwardsRepository(db *gorm.DB) (*ForwardsRepository, error) {
	if err := db.AutoMigrate(&ForwardRecord{}); err != nil {
		return nil, fmt.Errorf("migrate forward_records: %w", err)
	}
	return &ForwardsRepository{db: db}, nil
}

// Save persists one history record.
func (r *ForwardsRepository) Save(ctx context.Context, rec history.Record) error {
	ids := make([]string, len(rec.MessageIDs))
	for i, id := range rec.MessageIDs {
		ids[i] = strconv.Itoa(id)
	}

	var source int64
	if len(rec.SourceChatIDs) > 0 {
		source = rec.SourceChatIDs[0]
	}

	record := ForwardRecord{
		SourceChatID:      source,
		DestinationChatID: rec.DestinationChatID,
		MessageIDs:        strings.Join(ids, ","),
		Keywords:          strings.Join(rec.Keywords, ","),
		Batch:             rec.Batch,
		ForwardedAt:       rec.Time,
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("save forward record: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first.
func (r *ForwardsRepository) Recent(ctx context.Context, limit int) ([]ForwardRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []ForwardRecord
	err := r.db.WithContext(ctx).
		Order("forwarded_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query forward records: %w", err)
	}
	return records, nil
}

// CountSince returns how many forwards completed at or after the cutoff.
func (r *ForwardsRepository) CountSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ForwardRecord{}).
		Where("forwarded_at >= ?", cutoff).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count forward records: %w", err)
	}
	return count, nil
}
