package report

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"aks-health-guardian/internal/cluster"
	"aks-health-guardian/internal/logs"
	"aks-health-guardian/internal/metrics"
	"aks-health-guardian/internal/store"
)

// EmailOptions configures SMTP delivery.
type EmailOptions struct {
	Host       string
	Port       int
	From       string
	Recipients []string
	Username   string // empty disables authentication
	Password   string

	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// sendFunc matches smtp.SendMail; swapped in tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers run reports over SMTP with bounded retries.
type Mailer struct {
	opts    EmailOptions
	send    sendFunc
	logger  *logs.Logger
	metrics *metrics.Registry
}

// NewMailer creates a mailer. Zero-valued retry options pick up defaults.
func NewMailer(opts EmailOptions, logger *logs.Logger, reg *metrics.Registry) *Mailer {
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseBackoff == 0 {
		opts.BaseBackoff = 2 * time.Second
	}
	if opts.MaxBackoff == 0 {
		opts.MaxBackoff = 30 * time.Second
	}
	return &Mailer{
		opts:    opts,
		send:    smtp.SendMail,
		logger:  logger,
		metrics: reg,
	}
}

// Deliver renders the run report and emails it to all recipients.
func (m *Mailer) Deliver(ctx context.Context, rec store.Record, snap *cluster.Snapshot) error {
	if len(m.opts.Recipients) == 0 {
		return nil
	}

	msg := m.compose(rec, snap)
	addr := fmt.Sprintf("%s:%d", m.opts.Host, m.opts.Port)

	var auth smtp.Auth
	if m.opts.Username != "" {
		auth = smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.Host)
	}

	err := retryWithBackoff(ctx, m.opts.MaxAttempts, m.opts.BaseBackoff, m.opts.MaxBackoff, func() error {
		return m.send(addr, auth, m.opts.From, m.opts.Recipients, msg)
	})
	if err != nil {
		m.metrics.Inc(metrics.ReportEmailFailuresTotal)
		return fmt.Errorf("send report email: %w", err)
	}

	m.metrics.Inc(metrics.ReportEmailsSentTotal)
	m.logger.Info("report email sent",
		zap.String("run_id", rec.ID),
		zap.Int("recipients", len(m.opts.Recipients)),
	)
	return nil
}

func (m *Mailer) compose(rec store.Record, snap *cluster.Snapshot) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.opts.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.opts.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", Subject(rec))
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n")
	fmt.Fprintf(&b, "\r\n")
	b.WriteString(Render(rec, snap))
	return []byte(b.String())
}
