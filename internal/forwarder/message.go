package forwarder

import (
	"context"
	"time"

	"github.com/blockedby/forwarder-os/internal/history"
	"github.com/blockedby/forwarder-os/internal/models"
)

// MessageHandler reacts to individual message notifications for one job.
type MessageHandler struct {
	job  models.Job
	deps HandlerDeps
}

// NewMessageHandler binds a message handler to a job's destination and keywords.
func NewMessageHandler(job models.Job, deps HandlerDeps) *MessageHandler {
	return &MessageHandler{job: job, deps: deps}
}

// Handle processes one individual message notification.
//
// Album members are not skipped by their group id: album and single
// notifications arrive in no fixed order, so the dedup cache check is the
// single authoritative exclusion. A message that carries a group id but is
// absent from the cache falls through to keyword-based single delivery.
func (h *MessageHandler) Handle(ctx context.Context, ev MessageEvent) error {
	log := h.deps.Log

	if h.deps.Cache.Contains(ev.ID) {
		log.Debug().
			Int64("chat", ev.SourceChatID).
			Int("id", ev.ID).
			Msg("message already claimed by album forward, skipping")
		return nil
	}

	if ev.GroupedID != 0 {
		// Race-tolerance fallback: the album notification either failed,
		// expired out of the cache, or has not fired yet.
		log.Warn().
			Int64("chat", ev.SourceChatID).
			Int("id", ev.ID).
			Int64("grouped_id", ev.GroupedID).
			Msg("album member not in dedup cache, handling as single message")
	}

	if !h.job.MatchesText(ev.Text) {
		log.Debug().
			Int64("chat", ev.SourceChatID).
			Int("id", ev.ID).
			Msg("message did not match keywords, skipping")
		return nil
	}

	count, err := h.deps.Executor.Forward(ctx, []int{ev.ID}, ev.SourceChatID, h.job.DestinationChatID)
	if err != nil {
		// No further retries and no cache re-insert: a dropped single
		// message is reported via logs and history absence only.
		log.Error().Err(err).
			Int64("chat", ev.SourceChatID).
			Int64("dest", h.job.DestinationChatID).
			Int("id", ev.ID).
			Msg("message forward failed")
		return err
	}

	log.Info().
		Int64("chat", ev.SourceChatID).
		Int64("dest", h.job.DestinationChatID).
		Int("id", ev.ID).
		Int("forwarded", count).
		Msg("message forwarded")

	rec := history.Record{
		Time:              time.Now(),
		SourceChatIDs:     []int64{ev.SourceChatID},
		DestinationChatID: h.job.DestinationChatID,
		MessageIDs:        []int{ev.ID},
		Keywords:          h.job.Keywords,
		Batch:             false,
	}
	recordForward(ctx, h.deps, rec)
	return nil
}
