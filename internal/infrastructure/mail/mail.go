// Package mail delivers the finished report over SMTP with the workbook
// attached. Gmail app passwords are the expected credential.
package mail

import (
	"fmt"
	"log/slog"
	"time"

	gomail "gopkg.in/gomail.v2"

	"tenderscan/internal/ports"
)

// SMTPMailer sends one report message per run.
type SMTPMailer struct {
	host     string
	port     int
	from     string
	password string
	to       string
	log      *slog.Logger
}

var _ ports.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(host string, port int, from, password, to string, log *slog.Logger) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, from: from, password: password, to: to, log: log}
}

// SendReport mails the workbook at path with a short run summary.
func (m *SMTPMailer) SendReport(path string, matched, total int) error {
	date := time.Now().Format("02 Jan 2006")

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", fmt.Sprintf("Tender Report %s - %d matches", date, matched))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Tender scan finished on %s.\n\n"+
			"Matched tenders: %d\n"+
			"Total collected: %d\n\n"+
			"The full report is attached.\n", date, matched, total))
	msg.Attach(path)

	dialer := gomail.NewDialer(m.host, m.port, m.from, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	if m.log != nil {
		m.log.Info("report mailed", "to", m.to, "matched", matched)
	}
	return nil
}
