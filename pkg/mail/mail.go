package mail

import (
	"crypto/tls"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/contenthub/postnotify/pkg/metrics"
)

// ErrNotConfigured is returned by Send when SMTP is disabled or has no host.
var ErrNotConfigured = errors.New("smtp transport is not configured")

// OutboundMessage is one email handed to the transport. AccountHint, when
// set, names the sending account to prefer for this message only.
type OutboundMessage struct {
	To          string
	Subject     string
	HTMLBody    string
	AccountHint string
}

// Sender delivers outbound messages over SMTP.
type Sender interface {
	Send(msg OutboundMessage) error
	Enabled() bool
	Host() string
}

type smtpSender struct {
	settings       SMTPSettings
	log            *zap.SugaredLogger
	retryCount     int
	retryBackoffMs int
}

// NewSender creates a Sender for the given relay settings.
func NewSender(settings SMTPSettings, log *zap.SugaredLogger) Sender {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	retryCount := settings.RetryCount
	if retryCount <= 0 {
		retryCount = 3
	}
	retryBackoffMs := settings.RetryBackoffMs
	if retryBackoffMs <= 0 {
		retryBackoffMs = 100
	}
	return &smtpSender{
		settings:       settings,
		log:            log.Named("mail"),
		retryCount:     retryCount,
		retryBackoffMs: retryBackoffMs,
	}
}

func (s *smtpSender) Enabled() bool { return s.settings.Configured() }
func (s *smtpSender) Host() string  { return s.settings.Host }

// dialer builds a gomail dialer for one send. The selected account supplies
// credentials and the from identity; with auth not required (or no account
// resolving) authentication is left off while host, port and encryption
// still apply.
func (s *smtpSender) dialer(account *Account) (*gomail.Dialer, string, string) {
	port := s.settings.Port
	if port == 0 {
		port = 587
	}

	var d *gomail.Dialer
	fromEmail := s.settings.DefaultAccountEmail
	fromName := ""
	if fromEmail == "" {
		fromEmail = "noreply@" + s.settings.Host
	}

	if s.settings.AuthRequired && account != nil {
		d = gomail.NewDialer(s.settings.Host, port, account.Username, account.Password)
		fromEmail = account.Email
		fromName = account.DisplayName
	} else {
		d = &gomail.Dialer{Host: s.settings.Host, Port: port}
	}

	switch s.settings.Encryption {
	case EncryptionSSL:
		d.SSL = true
	case EncryptionTLS:
		// gomail negotiates STARTTLS when the server offers it.
	}
	if s.settings.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return d, fromEmail, fromName
}

// Send delivers one message, retrying transient failures with exponential
// backoff. The account for the message is resolved fresh on every call.
func (s *smtpSender) Send(msg OutboundMessage) error {
	if !s.settings.Configured() {
		return ErrNotConfigured
	}

	account := SelectAccount(msg.AccountHint, "", s.settings)
	d, fromEmail, fromName := s.dialer(account)

	m := gomail.NewMessage()
	if fromName != "" {
		m.SetAddressHeader("From", fromEmail, fromName)
	} else {
		m.SetHeader("From", fromEmail)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	var lastErr error
	backoffMs := s.retryBackoffMs
	for attempt := 0; attempt <= s.retryCount; attempt++ {
		err := d.DialAndSend(m)
		if err == nil {
			s.log.Debugw("Mail sent", "to", msg.To, "subject", msg.Subject, "attempt", attempt+1)
			metrics.MailSendSuccess.WithLabelValues(s.Host()).Inc()
			return nil
		}
		lastErr = err
		if attempt < s.retryCount {
			s.log.Warnw("Mail send attempt failed, retrying",
				"to", msg.To, "attempt", attempt+1, "error", err, "backoffMs", backoffMs)
			time.Sleep(time.Duration(backoffMs) * time.Millisecond)
			backoffMs = int(math.Min(float64(backoffMs)*2, 32000))
		} else {
			s.log.Errorw("Mail send failed after all attempts",
				"to", msg.To, "attempts", s.retryCount+1, "error", err)
		}
	}

	metrics.MailSendFailure.WithLabelValues(s.Host()).Inc()
	return lastErr
}
