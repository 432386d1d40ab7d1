// Package api exposes the control surface of the forwarder over HTTP:
// lifecycle, job listing, chat listing and forward history.
package api

import (
	"context"

	"github.com/blockedby/forwarder-os/internal/models"
	"github.com/blockedby/forwarder-os/internal/repository"
	"github.com/blockedby/forwarder-os/internal/telegram"
)

// ForwarderControl is the registry lifecycle as seen by the API.
type ForwarderControl interface {
	Start(ctx context.Context, jobs []models.Job) error
	Stop()
	Running() bool
	Jobs() []models.Job
}

// JobsLoader reloads the job configuration.
type JobsLoader func() ([]models.Job, error)

// ChatLister is the "list known chats" pass-through.
type ChatLister interface {
	ListDialogs(ctx context.Context) ([]telegram.Dialog, error)
	GetStatus() telegram.Status
}

// ForwardsStore serves the forward history endpoint. May be nil.
type ForwardsStore interface {
	Recent(ctx context.Context, limit int) ([]repository.ForwardRecord, error)
}
