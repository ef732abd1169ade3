// Package email sends account security notifications. The only flow
// today is the "account linked" notice after a link-token login.
package email

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// Sender delivers a single message. SMTPSender is the production
// implementation; tests plug their own.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// Notifier builds and sends the notification messages. A nil Notifier is
// valid and sends nothing.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	if sender == nil {
		return nil
	}
	return &Notifier{sender: sender}
}

// AccountLinked notifies the contact that a mobile identity was just
// bound to their account. Failures are logged, never propagated: the
// login already succeeded.
func (n *Notifier) AccountLinked(ctx context.Context, to, firstName string) {
	if n == nil || to == "" {
		return
	}
	log := logger.From(ctx).With(logger.Component("email.notifier"))

	greeting := "Hi"
	if firstName != "" {
		greeting = "Hi " + firstName
	}
	text := fmt.Sprintf(
		"%s,\n\nYour Vipps identity was just linked to your account. "+
			"If this wasn't you, unlink it from your profile page and contact support.\n",
		greeting)
	html := fmt.Sprintf(
		"<p>%s,</p><p>Your Vipps identity was just linked to your account. "+
			"If this wasn't you, unlink it from your profile page and contact support.</p>",
		greeting)

	if err := n.sender.Send(to, "Your account was linked to Vipps", html, text); err != nil {
		log.Error("account-linked notification failed", logger.Err(err), logger.Email(to))
		return
	}
	log.Debug("account-linked notification sent", logger.Email(to))
}
