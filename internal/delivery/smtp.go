package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/spec-kit/favorite-board/internal/config"
)

// Encryption selects how the SMTP connection is secured.
type Encryption string

const (
	EncryptionNone     Encryption = "NONE"
	EncryptionStartTLS Encryption = "STARTTLS"
	EncryptionSSLTLS   Encryption = "SSL/TLS"
)

// SMTPChannel sends plain-text mail through an authenticated SMTP relay.
type SMTPChannel struct {
	host     string
	port     int
	username string
	password string
	from     string
	enc      Encryption
}

// NewSMTPChannel builds a channel from notification config.
func NewSMTPChannel(cfg config.NotificationConfig) *SMTPChannel {
	enc := Encryption(strings.ToUpper(strings.TrimSpace(cfg.SMTPEncryption)))
	if enc != EncryptionNone && enc != EncryptionSSLTLS {
		enc = EncryptionStartTLS
	}
	from := cfg.EmailFrom
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &SMTPChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     from,
		enc:      enc,
	}
}

// Send delivers one message. The context deadline bounds the whole SMTP exchange.
func (s *SMTPChannel) Send(ctx context.Context, address, subject, body string) error {
	if err := s.send(ctx, address, subject, body); err != nil {
		return failed(address, err)
	}
	return nil
}

func (s *SMTPChannel) send(ctx context.Context, address, subject, body string) error {
	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("new client: %w", err)
	}
	defer client.Close()

	if s.enc == EncryptionStartTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if s.username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(address); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(BuildMessage(s.from, address, subject, body)); err != nil {
		_ = w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}
	return client.Quit()
}

func (s *SMTPChannel) dial(ctx context.Context) (net.Conn, error) {
	address := net.JoinHostPort(s.host, fmt.Sprint(s.port))
	dialer := &net.Dialer{Timeout: 15 * time.Second}

	if s.enc == EncryptionSSLTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.host}}
		conn, err := tlsDialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, fmt.Errorf("tls dial: %w", err)
		}
		return conn, nil
	}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return conn, nil
}

// BuildMessage renders RFC 5322 headers and a plain-text body with CRLF line endings.
func BuildMessage(from, to, subject, body string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", sanitizeHeader(subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")

	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	msg.WriteString(strings.ReplaceAll(normalized, "\n", "\r\n"))
	return msg.Bytes()
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
