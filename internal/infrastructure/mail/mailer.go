package mail

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

// Options configures the SMTP dialer.
type Options struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

type mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(opts Options) Mailer {
	return &mailer{
		dialer: gomail.NewDialer(opts.Host, opts.Port, opts.Username, opts.Password),
		from:   opts.From,
	}
}

func (m *mailer) SendEmail(to, subject, htmlBody string) error {
	return m.dialer.DialAndSend(newMessage(m.from, to, subject, htmlBody))
}

func newMessage(from, to, subject, htmlBody string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return msg
}
