package notify

// Settings selects which transitions produce notifications and who receives
// them. Membership values are validated against the live directory when the
// settings document is written (see config.Sanitize); the engine trusts them
// on read.
type Settings struct {
	// EnabledKinds lists the notification kinds that may fire.
	EnabledKinds []Kind `yaml:"enabledKinds"`

	// RecipientRoles are directory role names whose members receive
	// notifications.
	RecipientRoles []string `yaml:"recipientRoles"`

	// RecipientUsers are explicit directory user IDs that receive
	// notifications regardless of role.
	RecipientUsers []int64 `yaml:"recipientUsers"`

	// EnabledEntityTypes gates classification: transitions for entity types
	// not listed here never notify.
	EnabledEntityTypes []string `yaml:"enabledEntityTypes"`
}

// KindEnabled reports whether notifications of kind k are switched on.
func (s Settings) KindEnabled(k Kind) bool {
	for _, e := range s.EnabledKinds {
		if e == k {
			return true
		}
	}
	return false
}

// TypeEnabled reports whether transitions for the given entity type are
// handled at all.
func (s Settings) TypeEnabled(entityType string) bool {
	for _, t := range s.EnabledEntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}
