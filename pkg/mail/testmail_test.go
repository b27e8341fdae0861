package mail

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubSender struct {
	enabled bool
	sendErr error
	sent    []OutboundMessage
}

func (s *stubSender) Send(msg OutboundMessage) error {
	s.sent = append(s.sent, msg)
	return s.sendErr
}

func (s *stubSender) Enabled() bool { return s.enabled }
func (s *stubSender) Host() string  { return "stub" }

func TestBuildTestMessage(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	msg := BuildTestMessage("admin@example.com", "Example Site", "https://example.com", "ops@example.com", now)

	assert.Equal(t, "admin@example.com", msg.To)
	assert.Equal(t, "[Example Site] SMTP Test Email", msg.Subject)
	assert.Equal(t, "ops@example.com", msg.AccountHint)
	assert.Contains(t, msg.HTMLBody, "Example Site")
	assert.Contains(t, msg.HTMLBody, "https://example.com")
	assert.Contains(t, msg.HTMLBody, "2026-03-14 09:26:53")
}

func TestSendTest(t *testing.T) {
	t.Run("Not configured", func(t *testing.T) {
		s := &stubSender{enabled: false}
		err := SendTest(s, "admin@example.com", "Example Site", "https://example.com", "")
		assert.Error(t, err)
		assert.Empty(t, s.sent)
	})

	t.Run("Missing recipient", func(t *testing.T) {
		s := &stubSender{enabled: true}
		err := SendTest(s, "", "Example Site", "https://example.com", "")
		assert.Error(t, err)
		assert.Empty(t, s.sent)
	})

	t.Run("Transport failure is surfaced", func(t *testing.T) {
		s := &stubSender{enabled: true, sendErr: errors.New("550 relay denied")}
		err := SendTest(s, "admin@example.com", "Example Site", "https://example.com", "")
		assert.ErrorContains(t, err, "550 relay denied")
	})

	t.Run("Success", func(t *testing.T) {
		s := &stubSender{enabled: true}
		err := SendTest(s, "admin@example.com", "Example Site", "https://example.com", "ops@example.com")
		assert.NoError(t, err)
		if assert.Len(t, s.sent, 1) {
			assert.Equal(t, "ops@example.com", s.sent[0].AccountHint)
		}
	})
}
