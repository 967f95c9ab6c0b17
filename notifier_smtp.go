package account

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPConfig holds the settings for SMTPNotifier
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Addr returns host:port
func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SMTPNotifier sends plain text mail through an SMTP relay
type SMTPNotifier struct {
	config   SMTPConfig
	logger   Logger
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		config:   cfg,
		logger:   defLogger{},
		sendMail: smtp.SendMail,
	}
}

func (n *SMTPNotifier) WithLogger(logger Logger) *SMTPNotifier {
	if logger != nil {
		n.logger = logger
	}
	return n
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) bool {
	select {
	case <-ctx.Done():
		n.logger.Warn("smtp send to %s skipped: %v", to, ctx.Err())
		return false
	default:
	}

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	msg := buildMIMEMessage(n.config.From, to, subject, body)
	if err := n.sendMail(n.config.Addr(), auth, n.config.From, []string{to}, msg); err != nil {
		n.logger.Error("smtp send to %s failed: %v", to, err)
		return false
	}

	n.logger.Debug("smtp message delivered to %s", to)
	return true
}

func buildMIMEMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
