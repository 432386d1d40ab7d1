// Package telegram provides the MTProto transport: client lifecycle,
// rate-limited API calls and the update listener feeding the forwarder.
package telegram

import (
	"context"
	"sync"

	"github.com/celestix/gotgproto"
	"gorm.io/gorm"

	"github.com/blockedby/forwarder-os/internal/config"
	"github.com/blockedby/forwarder-os/internal/logger"
)

// ClientFactory creates the underlying protocol client. Overridable for tests.
type ClientFactory func(cfg *config.Config, db *gorm.DB) (*gotgproto.Client, error)

// Manager handles the Telegram client lifecycle.
//
// It never drives an interactive login: when the database holds no session
// the manager reports StatusUnauthorized and stays idle.
type Manager struct {
	cfg *config.Config
	db  *gorm.DB
	log *logger.Logger

	mu     sync.RWMutex
	client *gotgproto.Client
	status Status

	clientFactory ClientFactory
}

// NewManager creates a Telegram manager over the given session database.
func NewManager(cfg *config.Config, db *gorm.DB) *Manager {
	return &Manager{
		cfg:           cfg,
		db:            db,
		log:           logger.Get(),
		status:        StatusInitializing,
		clientFactory: NewPersistentClient,
	}
}

// SetClientFactory overrides client creation (used by tests).
func (m *Manager) SetClientFactory(f ClientFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientFactory = f
}

// GetStatus returns the current client status.
func (m *Manager) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// GetClient returns the underlying protocol client, nil when not ready.
func (m *Manager) GetClient() *gotgproto.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// Ready reports whether an authorized client is available.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil && m.status == StatusReady
}

// Init restores the session from the database and connects.
// Already-connected managers return immediately.
func (m *Manager) Init(_ context.Context) error {
	m.mu.Lock()
	if m.client != nil && m.status == StatusReady {
		m.mu.Unlock()
		return nil
	}
	m.status = StatusInitializing
	factory := m.clientFactory
	m.mu.Unlock()

	var count int64
	if err := m.db.Table("sessions").Count(&count).Error; err != nil {
		m.log.Warn().Err(err).Msg("telegram: failed to check sessions table")
	}
	if count == 0 {
		m.log.Info().Msg("telegram: no session in database, run an authorized session import first")
		m.mu.Lock()
		m.status = StatusUnauthorized
		m.mu.Unlock()
		return ErrUnauthorized
	}

	client, err := factory(m.cfg, m.db)
	if err != nil {
		m.mu.Lock()
		m.status = StatusError
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.client = client
	m.status = StatusReady
	m.mu.Unlock()

	m.log.Info().Msg("telegram: client is ready")
	return nil
}

// Stop stops the protocol client and resets the manager state.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		m.client.Stop()
		m.client = nil
	}
	m.status = StatusInitializing
}
