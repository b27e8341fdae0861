package config

import (
	"context"

	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/directory"
	"github.com/contenthub/postnotify/pkg/notify"
)

// SanitizeSettings validates a notification settings document against the
// live directory and returns a copy with unknown entries pruned: kinds that
// do not exist, roles and users the directory does not know, and entity
// types that are not public. Call it when a settings document is written;
// the engine trusts settings on read.
//
// A directory lookup failure leaves the corresponding list untouched rather
// than wiping it.
func SanitizeSettings(ctx context.Context, s notify.Settings, dir directory.Directory, log *zap.SugaredLogger) notify.Settings {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("sanitize")

	out := notify.Settings{}

	for _, k := range s.EnabledKinds {
		if _, err := notify.ParseKind(string(k)); err != nil {
			log.Warnw("Dropping unknown notification kind from settings", "kind", k)
			continue
		}
		out.EnabledKinds = append(out.EnabledKinds, k)
	}

	if roles, err := dir.Roles(ctx); err != nil {
		log.Warnw("Directory role listing failed, keeping configured roles", "error", err)
		out.RecipientRoles = s.RecipientRoles
	} else {
		known := make(map[string]bool, len(roles))
		for _, r := range roles {
			known[r] = true
		}
		for _, r := range s.RecipientRoles {
			if !known[r] {
				log.Warnw("Dropping unknown recipient role from settings", "role", r)
				continue
			}
			out.RecipientRoles = append(out.RecipientRoles, r)
		}
	}

	for _, id := range s.RecipientUsers {
		if id <= 0 {
			log.Warnw("Dropping invalid recipient user ID from settings", "userID", id)
			continue
		}
		u, err := dir.UserByID(ctx, id)
		if err != nil {
			log.Warnw("User lookup failed, keeping configured recipient", "userID", id, "error", err)
			out.RecipientUsers = append(out.RecipientUsers, id)
			continue
		}
		if u == nil {
			log.Warnw("Dropping unknown recipient user from settings", "userID", id)
			continue
		}
		out.RecipientUsers = append(out.RecipientUsers, id)
	}

	if types, err := dir.EntityTypes(ctx, true); err != nil {
		log.Warnw("Directory entity-type listing failed, keeping configured types", "error", err)
		out.EnabledEntityTypes = s.EnabledEntityTypes
	} else {
		known := make(map[string]bool, len(types))
		for _, t := range types {
			known[t] = true
		}
		for _, t := range s.EnabledEntityTypes {
			if !known[t] {
				log.Warnw("Dropping non-public entity type from settings", "entityType", t)
				continue
			}
			out.EnabledEntityTypes = append(out.EnabledEntityTypes, t)
		}
	}

	return out
}
