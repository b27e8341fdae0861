package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/audit"
	"github.com/contenthub/postnotify/pkg/directory"
	"github.com/contenthub/postnotify/pkg/mail"
)

// SettingsSource returns the current notification settings. It is called
// once per dispatch so settings edits take effect without a restart.
type SettingsSource func() Settings

// Filters are optional hooks applied during a dispatch. A nil field is
// skipped. Each hook receives the classified kind and the entity so a single
// hook can branch on them.
type Filters struct {
	// Subject rewrites the composed subject line.
	Subject func(kind Kind, subject string, entity Entity) string

	// Body rewrites the composed HTML body.
	Body func(kind Kind, body string, entity Entity) string

	// Recipients rewrites the resolved recipient set. Returning an empty
	// slice cancels the dispatch.
	Recipients func(kind Kind, recipients []Recipient, entity Entity) []Recipient
}

// RecipientError records one failed delivery within a dispatch.
type RecipientError struct {
	Recipient Recipient
	Err       error
}

// Result summarizes one processed transition.
type Result struct {
	// ID is the dispatch identifier, shared with the audit record.
	ID string

	// Kind is set when the transition classified; empty means no
	// notification fired.
	Kind Kind

	// Delivered and Failed partition the recipient set by send outcome.
	Delivered []Recipient
	Failed    []RecipientError

	// Suppressed is true when the dispatch ended without any send attempt,
	// with Reason naming why.
	Suppressed bool
	Reason     string
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Classifier *Classifier
	Resolver   *Resolver
	Directory  directory.Directory
	Transport  mail.Sender
	Audit      audit.Sink // nil disables auditing
	Site       Site
	Settings   SettingsSource
	Filters    Filters
	Log        *zap.SugaredLogger
}

// Dispatcher is the single entry point of the engine: it takes a status
// transition through classification, recipient resolution, composition and
// delivery.
type Dispatcher struct {
	classifier *Classifier
	resolver   *Resolver
	dir        directory.Directory
	transport  mail.Sender
	sink       audit.Sink
	site       Site
	settings   SettingsSource
	filters    Filters
	log        *zap.SugaredLogger
}

// NewDispatcher creates a Dispatcher from its wiring.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{
		classifier: cfg.Classifier,
		resolver:   cfg.Resolver,
		dir:        cfg.Directory,
		transport:  cfg.Transport,
		sink:       cfg.Audit,
		site:       cfg.Site,
		settings:   cfg.Settings,
		filters:    cfg.Filters,
		log:        log.Named("dispatcher"),
	}
}

// Dispatch processes one status transition end to end. accountHint, when
// non-empty, names the SMTP account to prefer for this dispatch only.
//
// A transition that matches no rule, resolves no recipients, or arrives while
// the transport is unconfigured is a no-op: the Result reports it as
// suppressed and the error is nil. Delivery failures for individual
// recipients never abort the remaining sends; they are collected in
// Result.Failed and in the combined returned error.
func (d *Dispatcher) Dispatch(ctx context.Context, tr Transition, accountHint string) (Result, error) {
	res := Result{ID: uuid.NewString()}
	s := d.settings()

	kind, ok := d.classifier.Classify(ctx, tr, s)
	if !ok {
		res.Suppressed = true
		res.Reason = "not classified"
		d.audit(ctx, res, tr, "")
		return res, nil
	}
	res.Kind = kind

	recipients := d.resolver.Resolve(ctx, s.RecipientRoles, s.RecipientUsers)
	if d.filters.Recipients != nil {
		recipients = d.filters.Recipients(kind, recipients, tr.Entity)
	}
	if len(recipients) == 0 {
		d.log.Infow("No recipients resolved, nothing to send",
			"dispatchID", res.ID, "kind", kind, "entityID", tr.Entity.ID)
		res.Suppressed = true
		res.Reason = "no recipients"
		d.audit(ctx, res, tr, "")
		return res, nil
	}

	if d.transport == nil || !d.transport.Enabled() {
		d.log.Warnw("SMTP transport not configured, dropping notification",
			"dispatchID", res.ID, "kind", kind, "entityID", tr.Entity.ID)
		res.Suppressed = true
		res.Reason = "transport not configured"
		d.audit(ctx, res, tr, "")
		return res, nil
	}

	msg, err := Compose(kind, d.site, tr.Entity, d.authorName(ctx, tr.Entity.AuthorID))
	if err != nil {
		res.Suppressed = true
		res.Reason = "compose failed"
		d.audit(ctx, res, tr, err.Error())
		return res, fmt.Errorf("composing %s notification: %w", kind, err)
	}
	if d.filters.Subject != nil {
		msg.Subject = d.filters.Subject(kind, msg.Subject, tr.Entity)
	}
	if d.filters.Body != nil {
		msg.HTMLBody = d.filters.Body(kind, msg.HTMLBody, tr.Entity)
	}

	var sendErrs error
	for _, r := range recipients {
		if r.Email == "" {
			d.log.Debugw("Skipping recipient without email address",
				"dispatchID", res.ID, "userID", r.UserID)
			continue
		}
		err := d.transport.Send(mail.OutboundMessage{
			To:          r.Email,
			Subject:     msg.Subject,
			HTMLBody:    msg.HTMLBody,
			AccountHint: accountHint,
		})
		if err != nil {
			d.log.Errorw("Notification delivery failed",
				"dispatchID", res.ID, "kind", kind, "to", r.Email, "error", err)
			res.Failed = append(res.Failed, RecipientError{Recipient: r, Err: err})
			sendErrs = multierr.Append(sendErrs, fmt.Errorf("sending to %s: %w", r.Email, err))
			continue
		}
		res.Delivered = append(res.Delivered, r)
	}

	d.log.Infow("Dispatch complete",
		"dispatchID", res.ID, "kind", kind, "entityID", tr.Entity.ID,
		"delivered", len(res.Delivered), "failed", len(res.Failed))
	d.audit(ctx, res, tr, "")
	return res, sendErrs
}

// authorName resolves the display name shown in notification bodies. Lookup
// failures degrade to an empty name rather than blocking the dispatch.
func (d *Dispatcher) authorName(ctx context.Context, authorID int64) string {
	if d.dir == nil || authorID <= 0 {
		return ""
	}
	u, err := d.dir.UserByID(ctx, authorID)
	if err != nil {
		d.log.Warnw("Author lookup failed", "authorID", authorID, "error", err)
		return ""
	}
	if u == nil {
		return ""
	}
	return u.DisplayName
}

func (d *Dispatcher) audit(ctx context.Context, res Result, tr Transition, detail string) {
	if d.sink == nil {
		return
	}

	ev := &audit.Event{
		ID:         res.ID,
		Time:       time.Now().UTC(),
		Kind:       res.Kind.String(),
		EntityID:   tr.Entity.ID,
		EntityType: tr.Entity.Type,
		Title:      tr.Entity.Title,
		Detail:     detail,
	}
	switch {
	case res.Suppressed:
		ev.Outcome = audit.OutcomeSuppressed
		if detail == "" {
			ev.Detail = res.Reason
		}
	case len(res.Failed) == 0:
		ev.Outcome = audit.OutcomeDelivered
	case len(res.Delivered) == 0:
		ev.Outcome = audit.OutcomeFailed
	default:
		ev.Outcome = audit.OutcomePartial
	}
	for _, r := range res.Delivered {
		ev.Recipients = append(ev.Recipients, r.Email)
	}
	for _, f := range res.Failed {
		ev.Failed = append(ev.Failed, f.Recipient.Email)
	}

	if err := d.sink.Write(ctx, ev); err != nil {
		d.log.Warnw("Audit write failed", "dispatchID", res.ID, "error", err)
	}
}
