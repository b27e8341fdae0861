package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contenthub/postnotify/pkg/marker"
)

func allKindsSettings() Settings {
	return Settings{
		EnabledKinds:       Kinds,
		EnabledEntityTypes: []string{"post", "page"},
	}
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	seen := marker.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = seen.Close() })
	return NewClassifier(seen, nil)
}

func transition(old, new string) Transition {
	return Transition{
		OldStatus: old,
		NewStatus: new,
		Entity:    Entity{ID: 1, Title: "T", Type: "post"},
	}
}

func TestClassifier_Classify_Rules(t *testing.T) {
	tests := []struct {
		name        string
		old         string
		new         string
		wantKind    Kind
		wantOK      bool
		description string
	}{
		{
			name:        "Draft submitted for review",
			old:         StatusDraft,
			new:         StatusPending,
			wantKind:    KindPending,
			wantOK:      true,
			description: "Any transition into pending notifies",
		},
		{
			name:        "Pending stays pending",
			old:         StatusPending,
			new:         StatusPending,
			wantOK:      false,
			description: "Re-saving a pending entity is not a new submission",
		},
		{
			name:        "Draft published",
			old:         StatusDraft,
			new:         StatusPublish,
			wantKind:    KindPublished,
			wantOK:      true,
			description: "First publication notifies",
		},
		{
			name:        "Scheduled entity goes live",
			old:         StatusFuture,
			new:         StatusPublish,
			wantKind:    KindPublished,
			wantOK:      true,
			description: "Publication from the scheduler notifies like a manual one",
		},
		{
			name:        "Published demoted to draft",
			old:         StatusPublish,
			new:         StatusDraft,
			wantKind:    KindDraft,
			wantOK:      true,
			description: "Unpublishing back to draft notifies",
		},
		{
			name:        "Auto-draft saved as draft",
			old:         StatusAutoDraft,
			new:         StatusDraft,
			wantOK:      false,
			description: "The editor's automatic first save is noise, not news",
		},
		{
			name:        "Draft stays draft",
			old:         StatusDraft,
			new:         StatusDraft,
			wantOK:      false,
			description: "Re-saving a draft does not notify",
		},
		{
			name:        "Draft scheduled",
			old:         StatusDraft,
			new:         StatusFuture,
			wantKind:    KindScheduled,
			wantOK:      true,
			description: "Scheduling for future publication notifies",
		},
		{
			name:        "Rescheduled entity",
			old:         StatusFuture,
			new:         StatusFuture,
			wantOK:      false,
			description: "Changing the schedule date does not re-notify",
		},
		{
			name:        "Published entity edited",
			old:         StatusPublish,
			new:         StatusPublish,
			wantKind:    KindUpdated,
			wantOK:      true,
			description: "Editing live content notifies as an update",
		},
		{
			name:        "Published entity trashed",
			old:         StatusPublish,
			new:         StatusTrash,
			wantKind:    KindTrashed,
			wantOK:      true,
			description: "Trashing notifies regardless of prior status",
		},
		{
			name:        "Draft trashed",
			old:         StatusDraft,
			new:         StatusTrash,
			wantKind:    KindTrashed,
			wantOK:      true,
			description: "The trash rule only inspects the new status",
		},
		{
			name:        "Restored from trash to draft",
			old:         StatusTrash,
			new:         StatusDraft,
			wantKind:    KindDraft,
			wantOK:      true,
			description: "Restoring into draft reads as a draft save",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(t)
			kind, ok := c.Classify(context.Background(), transition(tt.old, tt.new), allKindsSettings())
			assert.Equal(t, tt.wantOK, ok, tt.description)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, kind, tt.description)
			}
		})
	}
}

func TestClassifier_Classify_EntityTypeGate(t *testing.T) {
	c := newTestClassifier(t)
	s := allKindsSettings()

	tr := transition(StatusDraft, StatusPublish)
	tr.Entity.Type = "attachment"

	_, ok := c.Classify(context.Background(), tr, s)
	assert.False(t, ok, "disabled entity types never notify, whatever the transition")
}

func TestClassifier_Classify_DisabledKind(t *testing.T) {
	c := newTestClassifier(t)
	s := allKindsSettings()
	s.EnabledKinds = []Kind{KindPending}

	_, ok := c.Classify(context.Background(), transition(StatusDraft, StatusPublish), s)
	assert.False(t, ok, "a disabled kind's rule does not match")

	kind, ok := c.Classify(context.Background(), transition(StatusDraft, StatusPending), s)
	require.True(t, ok)
	assert.Equal(t, KindPending, kind)
}

func TestClassifier_Classify_UpdatedRateLimit(t *testing.T) {
	c := newTestClassifier(t)
	s := allKindsSettings()
	update := transition(StatusPublish, StatusPublish)

	kind, ok := c.Classify(context.Background(), update, s)
	require.True(t, ok)
	assert.Equal(t, KindUpdated, kind)

	_, ok = c.Classify(context.Background(), update, s)
	assert.False(t, ok, "second update for the same entity inside the window is suppressed")

	other := update
	other.Entity.ID = 99
	kind, ok = c.Classify(context.Background(), other, s)
	require.True(t, ok, "the window is per entity")
	assert.Equal(t, KindUpdated, kind)
}

// failingStore always errors, standing in for an unreachable Redis.
type failingStore struct{}

func (failingStore) CheckAndMark(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("store unavailable")
}

func (failingStore) Close() error { return nil }

func TestClassifier_Classify_MarkerStoreFailureFailsOpen(t *testing.T) {
	c := NewClassifier(failingStore{}, nil)
	s := allKindsSettings()
	update := transition(StatusPublish, StatusPublish)

	kind, ok := c.Classify(context.Background(), update, s)
	require.True(t, ok, "marker store failure must not drop the notification")
	assert.Equal(t, KindUpdated, kind)

	kind, ok = c.Classify(context.Background(), update, s)
	require.True(t, ok, "with the store down every update notifies")
	assert.Equal(t, KindUpdated, kind)
}
