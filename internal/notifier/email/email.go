// Package email implements an SMTP-based email notifier
package email

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/newthinker/alphapulse/internal/core"
	"github.com/newthinker/alphapulse/internal/notifier"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email implements the Notifier interface for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	send     sendFunc
}

// New creates a new Email notifier
func New(host string, port int, username, password, from string, to []string) *Email {
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Init(cfg notifier.Config) error {
	if host, ok := cfg.Params["host"].(string); ok {
		e.host = host
	}
	if port, ok := cfg.Params["port"].(int); ok {
		e.port = port
	}
	if username, ok := cfg.Params["username"].(string); ok {
		e.username = username
	}
	if password, ok := cfg.Params["password"].(string); ok {
		e.password = password
	}
	if from, ok := cfg.Params["from"].(string); ok {
		e.from = from
	}
	if to, ok := cfg.Params["to"].([]string); ok {
		e.to = to
	}

	if e.host == "" || e.from == "" || len(e.to) == 0 {
		return fmt.Errorf("email: host, from, and to are required")
	}
	if e.port == 0 {
		e.port = 587
	}
	if e.send == nil {
		e.send = smtp.SendMail
	}
	return nil
}

// Send delivers msg as an HTML email. The SMTP exchange itself is not
// cancellable, so ctx is only checked before dialing.
func (e *Email) Send(ctx context.Context, msg notifier.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	subject := fmt.Sprintf("AlphaPulse: %s", msg.Title)
	return e.sendEmail(subject, formatHTML(msg))
}

func formatHTML(msg notifier.Message) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(msg.Title)))
	if msg.Body != "" {
		sb.WriteString(fmt.Sprintf("<p>%s</p>", html.EscapeString(msg.Body)))
	}
	if msg.Stock != nil {
		sb.WriteString(formatQuoteHTML(*msg.Stock))
	}
	if !msg.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("<p><small>%s</small></p>", msg.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func formatQuoteHTML(q core.Quote) string {
	trendColor := "#28a745" // green for up
	if q.Trend == core.TrendDown {
		trendColor = "#dc3545"
	}

	return fmt.Sprintf(`
<div style="margin: 10px 0;">
  <h3 style="color: %s;">%s - %s</h3>
  <p><strong>Price:</strong> $%.2f (%+.2f%%)</p>
  <p><strong>Sector:</strong> %s</p>
  <p><strong>Signal Strength:</strong> %d</p>
</div>
`,
		trendColor,
		html.EscapeString(q.Symbol),
		html.EscapeString(q.Name),
		q.Price,
		q.ChangePercent,
		html.EscapeString(q.Sector),
		q.SignalStrength,
	)
}

func (e *Email) buildMessage(subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s",
		e.from,
		strings.Join(e.to, ","),
		subject,
		body,
	))
}

func (e *Email) sendEmail(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	send := e.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, e.from, e.to, e.buildMessage(subject, body)); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}
