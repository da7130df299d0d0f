package main

import (
	"errors"
	"io"

	"github.com/go-gomail/gomail"
)

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

// Attachment is a generated file kept in memory.
type Attachment struct {
	Filename string
	Data     []byte
}

// newMessage builds the email carrying the generated files.
func newMessage(cfg *Config, subject string, attachments ...Attachment) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.Email.From)
	msg.SetHeader("To", cfg.Email.To)
	if len(cfg.Email.Cc) > 0 {
		msg.SetHeader("Cc", cfg.Email.Cc...)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", "Job schedule attached.<br>")

	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return msg
}

// sendEmail sends the generated files via SMTP.
func sendEmail(cfg *Config, subject string, attachments ...Attachment) error {
	if cfg.SMTP.Host == "" || cfg.Email.To == "" {
		return errors.New("smtp host and email recipient must be configured")
	}

	msg := newMessage(cfg, subject, attachments...)
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return dialer.DialAndSend(msg)
}
