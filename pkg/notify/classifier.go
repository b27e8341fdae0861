package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/marker"
	"github.com/contenthub/postnotify/pkg/metrics"
)

// UpdatedWindow is how long repeat "published post updated" notifications for
// the same entity are suppressed after one fires.
const UpdatedWindow = time.Hour

// Classifier maps a status transition to at most one notification kind.
type Classifier struct {
	seen marker.Store
	log  *zap.SugaredLogger
}

// NewClassifier creates a Classifier. seen backs the Updated rate limit.
func NewClassifier(seen marker.Store, log *zap.SugaredLogger) *Classifier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Classifier{seen: seen, log: log.Named("classifier")}
}

// Classify evaluates the transition against the enabled-kind toggles and
// returns the matched kind, or ok=false when no notification should fire.
//
// Rules run in fixed priority order; the first match wins. The entity-type
// gate runs before any rule. The only side effect is the rate-limit marker
// write for a non-suppressed Updated classification; suppressed calls never
// write.
func (c *Classifier) Classify(ctx context.Context, tr Transition, s Settings) (Kind, bool) {
	metrics.TransitionsReceived.WithLabelValues(tr.Entity.Type).Inc()

	if !s.TypeEnabled(tr.Entity.Type) {
		metrics.NotificationsSuppressed.WithLabelValues("entity_type_disabled").Inc()
		return "", false
	}

	oldStatus, newStatus := tr.OldStatus, tr.NewStatus

	var kind Kind
	switch {
	case oldStatus != StatusPending && newStatus == StatusPending && s.KindEnabled(KindPending):
		kind = KindPending
	case oldStatus != StatusPublish && newStatus == StatusPublish && s.KindEnabled(KindPublished):
		kind = KindPublished
	case newStatus == StatusDraft && oldStatus != StatusDraft && oldStatus != StatusAutoDraft && s.KindEnabled(KindDraft):
		kind = KindDraft
	case newStatus == StatusFuture && oldStatus != StatusFuture && s.KindEnabled(KindScheduled):
		kind = KindScheduled
	case oldStatus == StatusPublish && newStatus == StatusPublish && s.KindEnabled(KindUpdated):
		if c.updatedSuppressed(ctx, tr.Entity.ID) {
			metrics.NotificationsSuppressed.WithLabelValues("rate_limited").Inc()
			return "", false
		}
		kind = KindUpdated
	case newStatus == StatusTrash && s.KindEnabled(KindTrashed):
		kind = KindTrashed
	default:
		metrics.NotificationsSuppressed.WithLabelValues("no_rule").Inc()
		return "", false
	}

	metrics.NotificationsClassified.WithLabelValues(kind.String()).Inc()
	return kind, true
}

// updatedSuppressed atomically checks and marks the per-entity window. A
// marker store failure fails open: better a duplicate notification than a
// silently dropped one.
func (c *Classifier) updatedSuppressed(ctx context.Context, entityID int64) bool {
	seen, err := c.seen.CheckAndMark(ctx, fmt.Sprintf("entity:%d", entityID), UpdatedWindow)
	if err != nil {
		c.log.Warnw("Rate-limit marker store unavailable, not suppressing", "entityID", entityID, "error", err)
		return false
	}
	if seen {
		c.log.Debugw("Updated notification suppressed inside rate-limit window", "entityID", entityID)
	}
	return seen
}
