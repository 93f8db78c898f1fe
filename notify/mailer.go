// Package notify sends run summary notifications over SMTP.
// Sending is best-effort: an unconfigured mailer silently skips
package notify

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/sig-0/harvest/storage/types"
)

// Config holds the SMTP connection settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string // recipients
}

// Mailer sends run report summaries
type Mailer struct {
	cfg Config

	// send is swapped out in tests
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a new mailer with the given SMTP settings
func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

// Configured reports whether every required SMTP setting is present
func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" &&
		m.cfg.Port > 0 &&
		m.cfg.Username != "" &&
		m.cfg.Password != "" &&
		m.cfg.From != "" &&
		len(m.cfg.To) > 0
}

// SendRunReport mails a plain-text summary of the given run report.
// It is a no-op when the mailer is not configured
func (m *Mailer) SendRunReport(report *types.RunReport) error {
	if !m.Configured() {
		return nil // skipped
	}

	var (
		addr    = fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
		auth    = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		subject = fmt.Sprintf(
			"[harvest] run %s shard %d/%d: %s",
			report.ID,
			report.ShardIndex,
			report.ShardTotal,
			report.Status.String(),
		)
	)

	msg := buildMessage(m.cfg.From, m.cfg.To, subject, reportBody(report))

	if err := m.send(addr, auth, m.cfg.From, m.cfg.To, msg); err != nil {
		return fmt.Errorf("unable to send run report mail: %w", err)
	}

	return nil
}

// reportBody renders the per-provider outcome lines
func reportBody(report *types.RunReport) string {
	var b strings.Builder

	fmt.Fprintf(
		&b,
		"Run %s (shard %d/%d) finished at %s with status %s.\n\n",
		report.ID,
		report.ShardIndex,
		report.ShardTotal,
		report.FinishedAt.Format("2006-01-02 15:04:05 UTC"),
		report.Status.String(),
	)

	for _, outcome := range report.Outcomes {
		fmt.Fprintf(
			&b,
			"- %s: %s, %d records, %s",
			outcome.ProviderID,
			outcome.Status.String(),
			outcome.RecordsWritten,
			outcome.Duration.Round(time.Millisecond).String(),
		)

		if outcome.Error != "" {
			fmt.Fprintf(&b, " (%s: %s)", outcome.ErrorKind.String(), outcome.Error)
		}

		b.WriteString("\n")
	}

	return b.String()
}

// buildMessage assembles the raw RFC 822 message
func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return []byte(b.String())
}
