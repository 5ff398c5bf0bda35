package email

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/logging"
)

// SMTPSender delivers messages over an authenticated SMTP connection.
type SMTPSender struct {
	cfg config.SMTPConfig
	log *logging.Logger
}

// NewSMTPSender returns a Sender backed by the configured SMTP relay.
func NewSMTPSender(cfg config.SMTPConfig, log *logging.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log.Named("smtp")}
}

// Send encodes and submits one message. The context is consulted
// before dialing; go-smtp itself does not take a context.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("send: no recipients")
	}

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	auth := sasl.NewPlainClient("", s.cfg.User, s.cfg.Password.Value())
	body := strings.NewReader(encode(s.cfg.From, msg))

	var err error
	if s.cfg.TLSEnabled {
		err = smtp.SendMailTLS(addr, auth, s.cfg.From, msg.To, body)
	} else {
		err = smtp.SendMail(addr, auth, s.cfg.From, msg.To, body)
	}
	if err != nil {
		return fmt.Errorf("send to %s: %w", strings.Join(msg.To, ","), err)
	}
	s.log.Info(ctx, "email sent",
		zap.String("to", strings.Join(msg.To, ",")),
		zap.String("subject", msg.Subject))
	return nil
}

// encode builds the full RFC 5322 payload, MIME headers included.
func encode(from string, msg Message) string {
	contentType := "text/plain; charset=\"UTF-8\""
	if msg.HTML {
		contentType = "text/html; charset=\"UTF-8\""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return b.String()
}
