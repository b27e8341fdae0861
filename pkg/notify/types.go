package notify

import (
	"fmt"
	"time"
)

// Entity statuses as emitted by the content system.
const (
	StatusPending   = "pending"
	StatusPublish   = "publish"
	StatusDraft     = "draft"
	StatusAutoDraft = "auto-draft"
	StatusFuture    = "future"
	StatusTrash     = "trash"
)

// Kind identifies one of the classified transition categories. The set is
// closed: adding a kind requires touching the classifier, the composer
// templates, and the settings schema together.
type Kind string

const (
	KindPending   Kind = "pending"
	KindPublished Kind = "published"
	KindDraft     Kind = "draft"
	KindScheduled Kind = "scheduled"
	KindUpdated   Kind = "updated"
	KindTrashed   Kind = "trashed"
)

// Kinds lists all notification kinds in a stable order.
var Kinds = []Kind{KindPending, KindPublished, KindDraft, KindScheduled, KindUpdated, KindTrashed}

// ParseKind validates a kind read from configuration.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown notification kind %q", s)
}

func (k Kind) String() string { return string(k) }

// Entity is a read-only projection of the content item a transition refers
// to. The engine never mutates it.
type Entity struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	AuthorID    int64     `json:"author_id"`
	Type        string    `json:"type"`
	Permalink   string    `json:"permalink"`
	EditLink    string    `json:"edit_link"`
	PublishTime time.Time `json:"publish_time"`
}

// Transition describes a single status change event.
type Transition struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Entity    Entity `json:"entity"`
}

// Recipient is one addressable user for a dispatch. Uniqueness key is UserID.
type Recipient struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Message is a composed subject/body pair ready for the transport.
type Message struct {
	Subject  string
	HTMLBody string
}
