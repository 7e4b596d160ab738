package services

import (
	"fmt"
	"net/smtp"

	"carma/internal/config"
)

// InviteMailer delivers invitation emails. Delivery is best-effort: callers
// dispatch sends asynchronously and only log failures, so a down SMTP relay
// never fails or slows down invite creation.
type InviteMailer interface {
	SendInvite(email, firstName, lastName, link string) error
}

type smtpMailer struct {
	addr       string
	senderName string
	senderMail string
}

// NewSMTPMailer returns a mailer that talks plain SMTP to a local relay
// (MailHog in development).
func NewSMTPMailer(cfg *config.Config) InviteMailer {
	return &smtpMailer{
		addr:       cfg.SMTPAddr,
		senderName: cfg.SenderName,
		senderMail: cfg.SenderMail,
	}
}

func (m *smtpMailer) SendInvite(email, firstName, lastName, link string) error {
	subject := fmt.Sprintf("You're invited to use %s", m.senderName)
	body := fmt.Sprintf(
		"Hello %s %s,\r\n\r\n"+
			"You have been invited to use %s (carbon emission data managing tool). "+
			"Click the link below to complete your registration:\r\n\r\n"+
			"%s\r\n\r\n"+
			"This link will expire in 30 days.\r\n\r\n"+
			"Best regards,\r\n%s\r\n",
		firstName, lastName, m.senderName, link, m.senderName)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.senderName, m.senderMail, email, subject, body)

	return smtp.SendMail(m.addr, nil, m.senderMail, []string{email}, []byte(msg))
}
