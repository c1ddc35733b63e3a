package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type EmailNotifier struct {
	dialer *net.Dialer
}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{dialer: &net.Dialer{}}
}

func (n *EmailNotifier) Send(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) error {
	s, ok := channel.Settings.(domain.EmailSettings)
	if !ok {
		return fmt.Errorf("unsupported settings %T for channel %s", channel.Settings, channel.ID)
	}

	addr := net.JoinHostPort(s.SMTPHost, strconv.Itoa(s.SMTPPort))
	conn, err := n.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP handshake failed: %w", err)
	}
	defer client.Close()

	if s.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.SMTPHost, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if s.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.Username, s.Password, s.SMTPHost)); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(s.FromEmail); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	for _, to := range s.ToEmails {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("RCPT TO %s failed: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(buildEmail(s, NewMessage(event, endpoint))); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

func buildEmail(s domain.EmailSettings, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.ToEmails, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Title)
	fmt.Fprintf(&b, "Date: %s\r\n", msg.Timestamp.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Text, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
