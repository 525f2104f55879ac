package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"salesbot-backend/internal/models"
)

// EmailService notifies the operator about contact submissions. Without SMTP
// credentials or a recipient it runs in dev mode and only logs.
type EmailService struct {
	host    string
	port    string
	user    string
	pass    string
	from    string
	to      string
	timeout time.Duration
	devMode bool
	logger  *zap.Logger
}

func NewEmailService(host, port, user, pass, from, to string, timeout time.Duration, logger *zap.Logger) *EmailService {
	devMode := host == "" || user == "" || to == ""
	if devMode {
		logger.Warn("⚠ Email service running in DEV MODE (logging to console)")
	}
	return &EmailService{
		host:    host,
		port:    port,
		user:    user,
		pass:    pass,
		from:    from,
		to:      to,
		timeout: timeout,
		devMode: devMode,
		logger:  logger,
	}
}

func (s *EmailService) SendContactNotification(ctx context.Context, sub models.ContactSubmission, ticketID string) error {
	subject := fmt.Sprintf("New Contact: %s [%s]", sub.Name, ticketID)
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 560px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: #03b2f8; padding: 24px;">
      <h1 style="color: white; margin: 0; font-size: 20px; font-weight: 700;">New contact form submission</h1>
      <p style="color: rgba(255,255,255,0.85); margin: 8px 0 0; font-size: 13px;">%s</p>
    </div>
    <div style="padding: 24px; color: #1e293b; font-size: 14px; line-height: 1.6;">
      <p><strong>Name:</strong> %s</p>
      <p><strong>Email:</strong> %s</p>
      <p><strong>Company:</strong> %s</p>
      <p><strong>Budget:</strong> %s</p>
      <p><strong>Message:</strong><br>%s</p>
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(ticketID),
		html.EscapeString(sub.Name),
		html.EscapeString(sub.Email),
		html.EscapeString(orNA(sub.Company)),
		html.EscapeString(orNA(sub.Budget)),
		strings.ReplaceAll(html.EscapeString(sub.Message), "\n", "<br>"),
	)

	return s.sendHTML(ctx, s.to, subject, body)
}

func (s *EmailService) sendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if s.devMode {
		s.logger.Info("📧 [DEV EMAIL]", zap.String("to", to), zap.String("subject", subject))
		s.logger.Debug("📧 [DEV EMAIL] body", zap.String("body", htmlBody))
		return nil
	}

	headers := []string{
		fmt.Sprintf("From: %s", s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", encodeHeader(subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	if err := s.deliver(ctx, to, []byte(message)); err != nil {
		return errors.Wrapf(err, "failed to send email to %s", to)
	}

	s.logger.Info("📧 Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// deliver runs one SMTP session. The connection deadline is the earlier of
// ctx's deadline and the service timeout, so a silent server cannot hold the
// caller.
func (s *EmailService) deliver(ctx context.Context, to string, msg []byte) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(s.host, s.port))
	if err != nil {
		return errors.Wrap(err, "dial smtp")
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "smtp greeting")
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return errors.Wrap(err, "starttls")
		}
	}
	if ok, _ := c.Extension("AUTH"); ok && s.user != "" {
		if err := c.Auth(smtp.PlainAuth("", s.user, s.pass, s.host)); err != nil {
			return errors.Wrap(err, "smtp auth")
		}
	}

	if err := c.Mail(s.from); err != nil {
		return errors.Wrap(err, "smtp MAIL")
	}
	if err := c.Rcpt(to); err != nil {
		return errors.Wrap(err, "smtp RCPT")
	}
	w, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "smtp DATA")
	}
	if _, err := w.Write(msg); err != nil {
		return errors.Wrap(err, "write message")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "finish message")
	}
	return c.Quit()
}

// encodeHeader drops line breaks so a value cannot open a new header, then
// applies RFC 2047 encoding when the value is not plain ASCII.
func encodeHeader(v string) string {
	v = strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
	return mime.QEncoding.Encode("utf-8", v)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
