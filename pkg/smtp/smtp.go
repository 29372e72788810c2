// Package mysmtp sends the inventory digest mails produced by the cron
// scans. Failures are logged and swallowed; mail is best effort.
package mysmtp

import (
	"sync"

	gomail "gopkg.in/gomail.v2"

	"github.com/dsnakex/Dashboard-ELN/pkg/config"
	"github.com/dsnakex/Dashboard-ELN/pkg/logutils"
)

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

var (
	once   sync.Once
	sender *Sender
)

// GetSender returns nil when SMTP is not configured; callers must treat a
// nil sender as "mail disabled".
func GetSender() *Sender {
	once.Do(func() {
		c := config.GetConfig()
		if c.SMTP.Host == "" {
			return
		}
		sender = &Sender{
			dialer: gomail.NewDialer(c.SMTP.Host, c.SMTP.Port, c.SMTP.User, c.SMTP.Password),
			from:   c.SMTP.From,
		}
	})
	return sender
}

func (s *Sender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		logutils.Log.Warnf("smtp: send to %s: %v", to, err)
		return err
	}
	return nil
}
