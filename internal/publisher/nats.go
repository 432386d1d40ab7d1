// Package publisher emits completed-forward events to NATS for external
// consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/blockedby/forwarder-os/internal/forwarder"
)

// SubjectForwardCompleted is the subject forward events are published to.
const SubjectForwardCompleted = "forwards.completed"

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher implements forwarder.EventPublisher.
type NATSPublisher struct {
	nc NATSClient
}

// NewNATSPublisher creates a new publisher over a nats connection.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: conn}
}

// PublishForward publishes one completed-forward event.
func (p *NATSPublisher) PublishForward(_ context.Context, event forwarder.ForwardEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.nc.Publish(SubjectForwardCompleted, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
