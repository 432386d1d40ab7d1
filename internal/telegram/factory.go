package telegram

import (
	"fmt"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"gorm.io/gorm"

	"github.com/blockedby/forwarder-os/internal/config"
)

// NewPersistentClient creates a telegram client that stores its session and
// peer cache in the database, so auth key refreshes survive restarts.
func NewPersistentClient(cfg *config.Config, db *gorm.DB) (*gotgproto.Client, error) {
	clientOpts := &gotgproto.ClientOpts{
		Session:          sessionMaker.SqlSession(db.Dialector),
		DisableCopyright: true,
		InMemory:         false,
	}

	client, err := gotgproto.NewClient(
		cfg.TGApiID,
		cfg.TGApiHash,
		gotgproto.ClientTypePhone(""), // empty = use stored session
		clientOpts,
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	return client, nil
}
