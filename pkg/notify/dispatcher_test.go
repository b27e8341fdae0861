package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contenthub/postnotify/pkg/audit"
	"github.com/contenthub/postnotify/pkg/directory"
	"github.com/contenthub/postnotify/pkg/mail"
	"github.com/contenthub/postnotify/pkg/marker"
)

// fakeTransport records sends and can fail selected recipients.
type fakeTransport struct {
	enabled bool
	failTo  map[string]error
	sent    []mail.OutboundMessage
}

func (f *fakeTransport) Send(msg mail.OutboundMessage) error {
	if err, ok := f.failTo[msg.To]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) Enabled() bool { return f.enabled }
func (f *fakeTransport) Host() string  { return "fake" }

// captureSink records written audit events.
type captureSink struct {
	events []*audit.Event
}

func (c *captureSink) Write(_ context.Context, ev *audit.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSink) Close() error { return nil }
func (c *captureSink) Name() string { return "capture" }

func testDirectory() *directory.Static {
	return directory.NewStatic().
		AddUser(directory.User{ID: 1, Email: "alice@example.com", DisplayName: "Alice"}, "editor").
		AddUser(directory.User{ID: 2, Email: "bob@example.com", DisplayName: "Bob"}, "editor").
		AddUser(directory.User{ID: 7, Email: "author@example.com", DisplayName: "Avery Author"}).
		AddUser(directory.User{ID: 42, Email: "carol@example.com", DisplayName: "Carol"})
}

func testSettings() Settings {
	return Settings{
		EnabledKinds:       Kinds,
		RecipientRoles:     []string{"editor"},
		RecipientUsers:     []int64{42},
		EnabledEntityTypes: []string{"post"},
	}
}

func newTestDispatcher(t *testing.T, transport mail.Sender, sink audit.Sink, filters Filters) *Dispatcher {
	t.Helper()
	seen := marker.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = seen.Close() })

	dir := testDirectory()
	return NewDispatcher(DispatcherConfig{
		Classifier: NewClassifier(seen, nil),
		Resolver:   NewResolver(dir, nil),
		Directory:  dir,
		Transport:  transport,
		Audit:      sink,
		Site:       Site{Name: "Example Site", URL: "https://example.com"},
		Settings:   testSettings,
		Filters:    filters,
	})
}

func publishTransition() Transition {
	return Transition{
		OldStatus: StatusDraft,
		NewStatus: StatusPublish,
		Entity: Entity{
			ID:        10,
			Title:     "Launch Day",
			AuthorID:  7,
			Type:      "post",
			Permalink: "https://example.com/launch-day",
			EditLink:  "https://example.com/admin/edit/10",
		},
	}
}

func TestDispatcher_Dispatch_DeliversToResolvedSet(t *testing.T) {
	transport := &fakeTransport{enabled: true}
	sink := &captureSink{}
	d := newTestDispatcher(t, transport, sink, Filters{})

	res, err := d.Dispatch(context.Background(), publishTransition(), "")
	require.NoError(t, err)

	assert.Equal(t, KindPublished, res.Kind)
	assert.False(t, res.Suppressed)
	assert.Len(t, res.Delivered, 3, "two editors plus the explicit user")
	assert.Empty(t, res.Failed)

	require.Len(t, transport.sent, 3)
	tos := []string{transport.sent[0].To, transport.sent[1].To, transport.sent[2].To}
	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "carol@example.com"}, tos,
		"role members precede explicit users in first-seen order")

	for _, msg := range transport.sent {
		assert.Equal(t, "[Example Site] Post published: Launch Day", msg.Subject)
		assert.Contains(t, msg.HTMLBody, "Avery Author", "author display name resolved from directory")
	}

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.OutcomeDelivered, sink.events[0].Outcome)
	assert.Equal(t, res.ID, sink.events[0].ID)
}

func TestDispatcher_Dispatch_PartialFailureIsolation(t *testing.T) {
	transport := &fakeTransport{
		enabled: true,
		failTo:  map[string]error{"bob@example.com": errors.New("mailbox full")},
	}
	sink := &captureSink{}
	d := newTestDispatcher(t, transport, sink, Filters{})

	res, err := d.Dispatch(context.Background(), publishTransition(), "")
	require.Error(t, err, "collected send errors are returned")
	assert.Contains(t, err.Error(), "bob@example.com")

	assert.Len(t, res.Delivered, 2, "a failed recipient never blocks the others")
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "bob@example.com", res.Failed[0].Recipient.Email)

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.OutcomePartial, sink.events[0].Outcome)
	assert.Equal(t, []string{"bob@example.com"}, sink.events[0].Failed)
}

func TestDispatcher_Dispatch_UnclassifiedIsNoop(t *testing.T) {
	transport := &fakeTransport{enabled: true}
	sink := &captureSink{}
	d := newTestDispatcher(t, transport, sink, Filters{})

	tr := publishTransition()
	tr.Entity.Type = "attachment" // not in EnabledEntityTypes

	res, err := d.Dispatch(context.Background(), tr, "")
	require.NoError(t, err)
	assert.True(t, res.Suppressed)
	assert.Empty(t, res.Kind)
	assert.Empty(t, transport.sent)

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.OutcomeSuppressed, sink.events[0].Outcome)
}

func TestDispatcher_Dispatch_TransportUnconfigured(t *testing.T) {
	transport := &fakeTransport{enabled: false}
	d := newTestDispatcher(t, transport, nil, Filters{})

	res, err := d.Dispatch(context.Background(), publishTransition(), "")
	require.NoError(t, err)
	assert.True(t, res.Suppressed)
	assert.Equal(t, "transport not configured", res.Reason)
	assert.Empty(t, transport.sent)
}

func TestDispatcher_Dispatch_AccountHintThreaded(t *testing.T) {
	transport := &fakeTransport{enabled: true}
	d := newTestDispatcher(t, transport, nil, Filters{})

	_, err := d.Dispatch(context.Background(), publishTransition(), "alerts@example.com")
	require.NoError(t, err)

	require.NotEmpty(t, transport.sent)
	for _, msg := range transport.sent {
		assert.Equal(t, "alerts@example.com", msg.AccountHint)
	}
}

func TestDispatcher_Dispatch_Filters(t *testing.T) {
	transport := &fakeTransport{enabled: true}
	d := newTestDispatcher(t, transport, nil, Filters{
		Subject: func(_ Kind, subject string, _ Entity) string {
			return "FYI: " + subject
		},
		Body: func(_ Kind, body string, _ Entity) string {
			return strings.Replace(body, "</body>", "<p>appended</p></body>", 1)
		},
		Recipients: func(_ Kind, recipients []Recipient, _ Entity) []Recipient {
			// keep only the first
			return recipients[:1]
		},
	})

	res, err := d.Dispatch(context.Background(), publishTransition(), "")
	require.NoError(t, err)
	assert.Len(t, res.Delivered, 1)

	require.Len(t, transport.sent, 1)
	assert.True(t, strings.HasPrefix(transport.sent[0].Subject, "FYI: "))
	assert.Contains(t, transport.sent[0].HTMLBody, "<p>appended</p>")
}

func TestDispatcher_Dispatch_RecipientFilterCanCancel(t *testing.T) {
	transport := &fakeTransport{enabled: true}
	sink := &captureSink{}
	d := newTestDispatcher(t, transport, sink, Filters{
		Recipients: func(_ Kind, _ []Recipient, _ Entity) []Recipient { return nil },
	})

	res, err := d.Dispatch(context.Background(), publishTransition(), "")
	require.NoError(t, err)
	assert.True(t, res.Suppressed)
	assert.Equal(t, "no recipients", res.Reason)
	assert.Empty(t, transport.sent)
}

func TestDispatcher_Dispatch_UpdatedRateLimit(t *testing.T) {
	transport := &fakeTransport{enabled: true}
	d := newTestDispatcher(t, transport, nil, Filters{})

	update := Transition{
		OldStatus: StatusPublish,
		NewStatus: StatusPublish,
		Entity:    Entity{ID: 11, Title: "Evergreen", AuthorID: 7, Type: "post"},
	}

	res1, err := d.Dispatch(context.Background(), update, "")
	require.NoError(t, err)
	assert.Equal(t, KindUpdated, res1.Kind)
	assert.Len(t, transport.sent, 3)

	res2, err := d.Dispatch(context.Background(), update, "")
	require.NoError(t, err)
	assert.True(t, res2.Suppressed, "second update inside the window is rate limited")
	assert.Len(t, transport.sent, 3, "no additional sends")
}
