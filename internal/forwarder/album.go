package forwarder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/forwarder-os/internal/history"
	"github.com/blockedby/forwarder-os/internal/logger"
	"github.com/blockedby/forwarder-os/internal/models"
)

// HistoryRecorder appends completed forwards to the history log.
type HistoryRecorder interface {
	Append(rec history.Record) error
}

// ForwardStore persists completed forwards in a queryable store.
type ForwardStore interface {
	Save(ctx context.Context, rec history.Record) error
}

// HandlerDeps bundles the shared collaborators handed to every job's
// handler pair. Store and Publisher may be nil.
type HandlerDeps struct {
	Cache     *DedupCache
	Executor  *Executor
	History   HistoryRecorder
	Store     ForwardStore
	Publisher EventPublisher
	Log       *logger.Logger
}

// AlbumHandler reacts to grouped-message notifications for one job.
// It is stateless across invocations except through the shared dedup cache.
type AlbumHandler struct {
	job  models.Job
	deps HandlerDeps
}

// NewAlbumHandler binds an album handler to a job's destination and keywords.
func NewAlbumHandler(job models.Job, deps HandlerDeps) *AlbumHandler {
	return &AlbumHandler{job: job, deps: deps}
}

// Handle processes one grouped-message notification:
// keyword filter on the group caption, pre-claim of all member ids, one
// executor call for the whole group, then a BATCH record on success or an
// immediate release of this invocation's claims on failure so the members
// can still be delivered individually.
func (h *AlbumHandler) Handle(ctx context.Context, ev AlbumEvent) error {
	log := h.deps.Log

	if len(ev.Messages) == 0 {
		log.Debug().
			Int64("chat", ev.SourceChatID).
			Int64("grouped_id", ev.GroupedID).
			Msg("album notification with no messages, nothing to forward")
		return nil
	}

	if !h.job.MatchesText(ev.Caption()) {
		log.Debug().
			Int64("chat", ev.SourceChatID).
			Int64("grouped_id", ev.GroupedID).
			Msg("album caption did not match keywords, skipping")
		return nil
	}

	ids := ev.MessageIDs()

	// Claim before forwarding: this closes the race window against the
	// single-message path, which may see the members at any point.
	claimedNow := h.deps.Cache.Claim(ids)

	count, err := h.deps.Executor.Forward(ctx, ids, ev.SourceChatID, h.job.DestinationChatID)
	if err != nil {
		// Release only what this invocation claimed, and do it before
		// returning, so a later single-message notification for these ids
		// is not incorrectly suppressed.
		h.deps.Cache.Release(claimedNow)
		log.Error().Err(err).
			Int64("chat", ev.SourceChatID).
			Int64("dest", h.job.DestinationChatID).
			Ints("ids", ids).
			Msg("album forward failed, released claims")
		return err
	}

	log.Info().
		Int64("chat", ev.SourceChatID).
		Int64("dest", h.job.DestinationChatID).
		Int("forwarded", count).
		Ints("ids", ids).
		Msg("album forwarded")

	h.record(ctx, ids, ev.SourceChatID)
	return nil
}

func (h *AlbumHandler) record(ctx context.Context, ids []int, source int64) {
	rec := history.Record{
		Time:              time.Now(),
		SourceChatIDs:     []int64{source},
		DestinationChatID: h.job.DestinationChatID,
		MessageIDs:        ids,
		Keywords:          h.job.Keywords,
		Batch:             true,
	}
	recordForward(ctx, h.deps, rec)
}

// recordForward fans a completed forward out to the history file, the
// optional store and the optional publisher. Failures are logged, never
// propagated: the forward itself already happened.
func recordForward(ctx context.Context, deps HandlerDeps, rec history.Record) {
	if err := deps.History.Append(rec); err != nil {
		deps.Log.Error().Err(err).Msg("failed to append history record")
	}

	if deps.Store != nil {
		if err := deps.Store.Save(ctx, rec); err != nil {
			deps.Log.Warn().Err(err).Msg("failed to save forward record")
		}
	}

	if deps.Publisher != nil {
		event := ForwardEvent{
			ID:                uuid.New(),
			SourceChatID:      rec.SourceChatIDs[0],
			DestinationChatID: rec.DestinationChatID,
			MessageIDs:        rec.MessageIDs,
			Keywords:          rec.Keywords,
			Batch:             rec.Batch,
			ForwardedAt:       rec.Time,
		}
		if err := deps.Publisher.PublishForward(ctx, event); err != nil {
			deps.Log.Warn().Err(err).Msg("failed to publish forward event")
		}
	}
}
