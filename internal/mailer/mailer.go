// Package mailer delivers transactional mail over SMTP, falling back to
// .eml files on disk when no relay is configured so local environments
// still surface the verification and reset links.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/dashmed/dashmed/config"
	"github.com/dashmed/dashmed/pkg/logger"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Mailer sends the application's transactional messages.
type Mailer interface {
	SendVerification(email, name, rawToken string) error
	SendPasswordReset(email, name, rawToken string) error
	SendEmailChangeNotice(oldEmail, newEmail, name string) error
}

// SMTPMailer renders HTML bodies from embedded templates and submits them
// to the configured relay.
type SMTPMailer struct {
	cfg       config.MailConfig
	baseURL   string
	templates *template.Template
}

func NewSMTPMailer(cfg config.MailConfig, baseURL string) (*SMTPMailer, error) {
	tmpl, err := template.New("mail").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing mail templates: %w", err)
	}
	return &SMTPMailer{cfg: cfg, baseURL: baseURL, templates: tmpl}, nil
}

func (m *SMTPMailer) SendVerification(email, name, rawToken string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.baseURL, url.QueryEscape(rawToken))
	return m.send(email, "Vérifiez votre adresse mail", "verification.html", map[string]interface{}{
		"Name": name,
		"Link": link,
	})
}

func (m *SMTPMailer) SendPasswordReset(email, name, rawToken string) error {
	link := fmt.Sprintf("%s/reset-password?email=%s&token=%s",
		m.baseURL, url.QueryEscape(email), url.QueryEscape(rawToken))
	return m.send(email, "Réinitialisation de votre mot de passe", "password_reset.html", map[string]interface{}{
		"Name": name,
		"Link": link,
	})
}

func (m *SMTPMailer) SendEmailChangeNotice(oldEmail, newEmail, name string) error {
	data := map[string]interface{}{
		"Name":     name,
		"OldEmail": oldEmail,
		"NewEmail": newEmail,
	}
	// The old address is warned first; failing to reach the new one is
	// still an error for the caller.
	if err := m.send(oldEmail, "Votre adresse mail a été modifiée", "email_change.html", data); err != nil {
		return err
	}
	return m.send(newEmail, "Confirmez votre nouvelle adresse mail", "email_change.html", data)
}

func (m *SMTPMailer) send(to, subject, templateName string, data map[string]interface{}) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("rendering %s: %w", templateName, err)
	}

	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}
	msg := buildMessage(from, to, subject, body.String())

	if m.cfg.Host == "" {
		return m.writeFallback(to, msg)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		logger.GetLogger().Error("Failed to send mail",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	logger.GetLogger().Info("Mail sent",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

// writeFallback drops the raw message as an .eml file so developers can
// open it and follow the embedded link.
func (m *SMTPMailer) writeFallback(to string, msg []byte) error {
	if err := os.MkdirAll(m.cfg.FallbackDir, 0o755); err != nil {
		return fmt.Errorf("creating mail fallback dir: %w", err)
	}
	name := fmt.Sprintf("%d_%s.eml", time.Now().UnixNano(), sanitizeFilename(to))
	path := filepath.Join(m.cfg.FallbackDir, name)
	if err := os.WriteFile(path, msg, 0o644); err != nil {
		return fmt.Errorf("writing mail fallback: %w", err)
	}
	logger.GetLogger().Info("Mail written to fallback file", zap.String("path", path))
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	return buf.Bytes()
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
