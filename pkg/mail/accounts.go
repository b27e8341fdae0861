package mail

// AccountByEmail returns the first listed account with exactly the given
// email, or nil. Duplicate emails resolve to the first match.
func AccountByEmail(s SMTPSettings, email string) *Account {
	if email == "" {
		return nil
	}
	for i := range s.Accounts {
		if s.Accounts[i].Email == email {
			return &s.Accounts[i]
		}
	}
	return nil
}

// DefaultAccount returns the account named by DefaultAccountEmail, falling
// back to the first listed account, or nil when none are configured.
func DefaultAccount(s SMTPSettings) *Account {
	if a := AccountByEmail(s, s.DefaultAccountEmail); a != nil {
		return a
	}
	if len(s.Accounts) > 0 {
		return &s.Accounts[0]
	}
	return nil
}

// SelectAccount picks the sending account for one outgoing message.
// Precedence, first non-empty match wins:
//
//  1. the explicit hint, when it names a configured account
//  2. the account matching the message's current from address
//  3. the configured default account
//  4. the first listed account
//
// Returns nil when no accounts are configured. The hint is an explicit
// per-call parameter, never stored state, so a hint for one send cannot leak
// into the next.
func SelectAccount(hint, currentFrom string, s SMTPSettings) *Account {
	if a := AccountByEmail(s, hint); a != nil {
		return a
	}
	if a := AccountByEmail(s, currentFrom); a != nil {
		return a
	}
	return DefaultAccount(s)
}
