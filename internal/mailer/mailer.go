package mailer

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"codebeyond/internal/dto"
	"codebeyond/internal/i18n"
	"codebeyond/internal/model"
)

var ErrUnsupportedStatus = i18n.ErrNoMailTemplate

type Config struct {
	Host     string
	Port     int
	From     string
	Password string
	Locale   string
}

type Translator interface {
	ReviewMail(locale string, status model.Status, data i18n.MailData) (i18n.Mail, error)
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg  Config
	tr   Translator
	send SendFunc
	log  *zerolog.Logger
}

type Option func(*Mailer)

func WithSendFunc(send SendFunc) Option {
	return func(m *Mailer) { m.send = send }
}

func New(cfg Config, tr Translator, log *zerolog.Logger, opts ...Option) *Mailer {
	m := &Mailer{cfg: cfg, tr: tr, send: smtp.SendMail, log: log}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendReviewResult mails the team lead the outcome of their review in the message
// locale, or the configured one.
func (m *Mailer) SendReviewResult(ctx context.Context, msg dto.ReviewMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	locale := msg.Locale
	if locale == "" {
		locale = m.cfg.Locale
	}
	mail, err := m.tr.ReviewMail(locale, msg.Status, i18n.MailData{
		TeamLead: msg.TeamLead,
		TeamName: msg.TeamName,
		Reason:   msg.Reason,
	})
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var auth smtp.Auth
	if m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{msg.Email}, compose(m.cfg.From, msg.Email, mail.Subject, mail.Body)); err != nil {
		m.log.Warn().Err(err).Str("email", msg.Email).Msg("failed to send review mail")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("email", msg.Email).Str("status", string(msg.Status)).Msg("review mail sent")
	return nil
}

func compose(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
