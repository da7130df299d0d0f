package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewMessage(t *testing.T) {
	cfg := &Config{Email: EmailConfig{
		From: "ops@example.com",
		To:   "site@example.com",
		Cc:   []string{"lead@example.com"},
	}}

	msg := newMessage(cfg, "Job Schedule Week 42/2026",
		Attachment{Filename: "2026-W42_Job_Schedule.pdf", Data: []byte("%PDF-1.3 test")},
	)

	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Job Schedule Week 42/2026" {
		t.Errorf("Subject = %v", got)
	}
	if got := msg.GetHeader("Cc"); len(got) != 1 || got[0] != "lead@example.com" {
		t.Errorf("Cc = %v", got)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if !strings.Contains(buf.String(), "2026-W42_Job_Schedule.pdf") {
		t.Error("message does not name the attachment")
	}
}

func TestSendEmailRequiresConfig(t *testing.T) {
	err := sendEmail(&Config{}, "subject")
	if err == nil {
		t.Error("sendEmail() expected error without SMTP host")
	}
}
