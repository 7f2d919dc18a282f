package config

import (
	"crypto/tls"
	"errors"

	mail "github.com/go-mail/mail/v2"
)

// ErrMailNotConfigured is returned when SMTP_HOST or SMTP_FROM is missing.
var ErrMailNotConfigured = errors.New("smtp not configured (SMTP_HOST/SMTP_FROM)")

// MailConfigured reports whether SendMail can deliver anything.
func MailConfigured(opts MailOptions) bool {
	return opts.Host != "" && opts.From != ""
}

func SendMail(opts MailOptions, to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if !MailConfigured(opts) {
		return ErrMailNotConfigured
	}

	m := mail.NewMessage()
	m.SetHeader("From", opts.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(opts.Host, opts.Port, opts.User, opts.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         opts.Host,
		InsecureSkipVerify: opts.SkipTLSVerify,
	}

	return d.DialAndSend(m)
}
