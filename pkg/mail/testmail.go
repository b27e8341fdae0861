package mail

import (
	"fmt"
	"html"
	"time"
)

// BuildTestMessage assembles the fixed configuration-check email sent by the
// interactive test-send entry point.
func BuildTestMessage(to, siteName, siteURL, accountHint string, now time.Time) OutboundMessage {
	body := "<html><body>" +
		"<h2>SMTP Test Email</h2>" +
		"<p>This is a test email to verify your SMTP settings are configured correctly.</p>" +
		"<p><strong>Site:</strong> " + html.EscapeString(siteName) + "</p>" +
		"<p><strong>URL:</strong> " + html.EscapeString(siteURL) + "</p>" +
		"<p><strong>Date:</strong> " + now.Format("2006-01-02 15:04:05") + "</p>" +
		"<hr>" +
		`<p style="color: #666; font-size: 12px;">This email was sent from the post notification service.</p>` +
		"</body></html>"

	return OutboundMessage{
		To:          to,
		Subject:     fmt.Sprintf("[%s] SMTP Test Email", siteName),
		HTMLBody:    body,
		AccountHint: accountHint,
	}
}

// SendTest synchronously attempts one test send with the current settings.
// The returned error carries the transport diagnostic detail for display to
// the operator.
func SendTest(sender Sender, to, siteName, siteURL, accountHint string) error {
	if !sender.Enabled() {
		return fmt.Errorf("SMTP is not configured: enable it and set a host first")
	}
	if to == "" {
		return fmt.Errorf("please enter a valid email address")
	}
	msg := BuildTestMessage(to, siteName, siteURL, accountHint, time.Now())
	if err := sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send test email: %w", err)
	}
	return nil
}
