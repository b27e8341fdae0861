package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/directory"
	"github.com/contenthub/postnotify/pkg/metrics"
)

// Resolver merges role-based and explicit-user recipients into a
// deduplicated set.
type Resolver struct {
	dir directory.Directory
	log *zap.SugaredLogger
}

// NewResolver creates a Resolver over the given directory.
func NewResolver(dir directory.Directory, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{dir: dir, log: log.Named("recipients")}
}

// Resolve looks up the members of each role, then each explicit user ID, and
// returns the concatenation deduplicated by user ID in first-seen order.
// Role-derived entries precede explicit ones when both name the same person.
// Directory errors for one entry are logged and skipped; they never abort
// resolution of the others. The result is never nil.
func (r *Resolver) Resolve(ctx context.Context, roles []string, userIDs []int64) []Recipient {
	recipients := make([]Recipient, 0)
	seen := make(map[int64]bool)

	for _, role := range roles {
		users, err := r.dir.UsersByRole(ctx, role)
		if err != nil {
			r.log.Warnw("Skipping role after directory lookup failure", "role", role, "error", err)
			metrics.DirectoryLookupErrors.WithLabelValues("role").Inc()
			continue
		}
		for _, u := range users {
			if seen[u.ID] {
				continue
			}
			seen[u.ID] = true
			recipients = append(recipients, Recipient{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName})
			metrics.RecipientsResolved.WithLabelValues("role").Inc()
		}
	}

	for _, id := range userIDs {
		if id <= 0 || seen[id] {
			continue
		}
		u, err := r.dir.UserByID(ctx, id)
		if err != nil {
			r.log.Warnw("Skipping user after directory lookup failure", "userID", id, "error", err)
			metrics.DirectoryLookupErrors.WithLabelValues("user").Inc()
			continue
		}
		if u == nil {
			r.log.Debugw("Configured recipient user not found in directory", "userID", id)
			continue
		}
		seen[id] = true
		recipients = append(recipients, Recipient{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName})
		metrics.RecipientsResolved.WithLabelValues("user").Inc()
	}

	return recipients
}
