package audit

import "time"

// Outcome states for a processed transition.
const (
	OutcomeDelivered  = "delivered"
	OutcomePartial    = "partial"
	OutcomeFailed     = "failed"
	OutcomeSuppressed = "suppressed"
)

// Event is the audit record for one processed transition.
type Event struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Kind       string    `json:"kind,omitempty"`
	EntityID   int64     `json:"entityId"`
	EntityType string    `json:"entityType"`
	Title      string    `json:"title,omitempty"`
	Outcome    string    `json:"outcome"`
	Recipients []string  `json:"recipients,omitempty"`
	Failed     []string  `json:"failed,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}
