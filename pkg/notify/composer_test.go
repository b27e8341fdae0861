package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var composerSite = Site{Name: "Example Site", URL: "https://example.com"}

func composerEntity() Entity {
	return Entity{
		ID:        5,
		Title:     "Hello World",
		AuthorID:  7,
		Type:      "post",
		Permalink: "https://example.com/hello-world",
		EditLink:  "https://example.com/admin/edit/5",
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		title string
		want  string
	}{
		{
			name:  "Pending",
			kind:  KindPending,
			title: "Hello World",
			want:  "[Example Site] New post pending review: Hello World",
		},
		{
			name:  "Published",
			kind:  KindPublished,
			title: "Hello World",
			want:  "[Example Site] Post published: Hello World",
		},
		{
			name:  "Empty title gets placeholder",
			kind:  KindDraft,
			title: "",
			want:  "[Example Site] Post saved as draft: (no title)",
		},
		{
			name:  "Whitespace-only title gets placeholder",
			kind:  KindTrashed,
			title: "   ",
			want:  "[Example Site] Post trashed: (no title)",
		},
		{
			name:  "CRLF collapsed to single space",
			kind:  KindUpdated,
			title: "Hi\r\nThere",
			want:  "[Example Site] Post updated: Hi There",
		},
		{
			name:  "Bare CR and LF collapsed",
			kind:  KindScheduled,
			title: "A\rB\nC",
			want:  "[Example Site] Post scheduled: A B C",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := composerEntity()
			e.Title = tt.title
			assert.Equal(t, tt.want, Subject(tt.kind, composerSite, e))
		})
	}
}

func TestCompose_PerKindContent(t *testing.T) {
	tests := []struct {
		name         string
		kind         Kind
		wantInBody   []string
		unwantInBody []string
	}{
		{
			name: "Pending",
			kind: KindPending,
			wantInBody: []string{
				"submitted for review",
				`<a href="https://example.com/admin/edit/5">Review and approve this post</a>`,
			},
		},
		{
			name: "Published",
			kind: KindPublished,
			wantInBody: []string{
				"has been published",
				`<a href="https://example.com/hello-world">View post</a>`,
			},
		},
		{
			name:         "Draft",
			kind:         KindDraft,
			wantInBody:   []string{"saved as draft", "Edit draft"},
			unwantInBody: []string{"View post"},
		},
		{
			name: "Scheduled",
			kind: KindScheduled,
			wantInBody: []string{
				"scheduled for publication",
				"<strong>Scheduled for:</strong> March 14, 2026 9:26 am",
			},
		},
		{
			name:       "Updated",
			kind:       KindUpdated,
			wantInBody: []string{"has been updated", "View post", "Edit post"},
		},
		{
			name: "Trashed",
			kind: KindTrashed,
			wantInBody: []string{
				"moved to trash",
				`<a href="https://example.com/admin/trash?type=post">View trashed posts</a>`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := composerEntity()
			e.PublishTime = time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)

			msg, err := Compose(tt.kind, composerSite, e, "Avery Author")
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(msg.HTMLBody, "<!DOCTYPE html>"))
			assert.Contains(t, msg.HTMLBody, "<strong>Title:</strong> Hello World")
			assert.Contains(t, msg.HTMLBody, "<strong>Author:</strong> Avery Author")
			assert.Contains(t, msg.HTMLBody, footerDisclaimer)
			for _, want := range tt.wantInBody {
				assert.Contains(t, msg.HTMLBody, want)
			}
			for _, unwant := range tt.unwantInBody {
				assert.NotContains(t, msg.HTMLBody, unwant)
			}
		})
	}
}

func TestCompose_EscapesTitle(t *testing.T) {
	e := composerEntity()
	e.Title = `<script>alert("x")</script>`

	msg, err := Compose(KindPublished, composerSite, e, "Avery Author")
	require.NoError(t, err)
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;")
}

func TestCompose_TrashLinkEscapesEntityType(t *testing.T) {
	e := composerEntity()
	e.Type = "my type&x"

	msg, err := Compose(KindTrashed, composerSite, e, "")
	require.NoError(t, err)
	assert.Contains(t, msg.HTMLBody, "/admin/trash?type=my+type%26x")
}

func TestCompose_IsPure(t *testing.T) {
	e := composerEntity()
	first, err := Compose(KindPublished, composerSite, e, "Avery Author")
	require.NoError(t, err)
	second, err := Compose(KindPublished, composerSite, e, "Avery Author")
	require.NoError(t, err)
	assert.Equal(t, first, second, "same inputs produce identical output")
}

func TestCompose_UnknownKind(t *testing.T) {
	_, err := Compose(Kind("bogus"), composerSite, composerEntity(), "")
	assert.Error(t, err)
}
