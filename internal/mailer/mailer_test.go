package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"codebeyond/internal/dto"
	"codebeyond/internal/i18n"
	"codebeyond/internal/model"
)

type sent struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestMailer(t *testing.T, cfg Config, fail error) (*Mailer, *[]sent) {
	t.Helper()
	var out []sent
	log := zerolog.Nop()
	m := New(cfg, i18n.NewTranslator("en", &log), &log, WithSendFunc(
		func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			out = append(out, sent{addr: addr, auth: a, from: from, to: to, msg: string(msg)})
			return fail
		}))
	return m, &out
}

func rejected() dto.ReviewMessage {
	return dto.ReviewMessage{
		ParticipantID: "p-1",
		Email:         "ali@fast.edu.pk",
		TeamName:      "Byte Me",
		TeamLead:      "Ali",
		Status:        model.StatusRejected,
		Reason:        "incomplete submission",
	}
}

func TestSendReviewResultRejected(t *testing.T) {
	m, out := newTestMailer(t, Config{Host: "smtp.example.com", Port: 587, From: "noreply@codebeyond.pk", Locale: "en"}, nil)

	require.NoError(t, m.SendReviewResult(context.Background(), rejected()))
	require.Len(t, *out, 1)

	got := (*out)[0]
	require.Equal(t, "smtp.example.com:587", got.addr)
	require.Nil(t, got.auth)
	require.Equal(t, "noreply@codebeyond.pk", got.from)
	require.Equal(t, []string{"ali@fast.edu.pk"}, got.to)
	require.Contains(t, got.msg, "To: ali@fast.edu.pk\r\n")
	require.Contains(t, got.msg, "Subject: Update on your Code & Beyond registration\r\n")
	require.Contains(t, got.msg, "Reason: incomplete submission")
	require.False(t, strings.Contains(strings.ReplaceAll(got.msg, "\r\n", ""), "\n"))
}

func TestSendReviewResultUsesMessageLocale(t *testing.T) {
	m, out := newTestMailer(t, Config{Host: "smtp.example.com", Port: 587, From: "noreply@codebeyond.pk", Password: "secret", Locale: "en"}, nil)

	msg := rejected()
	msg.Status = model.StatusApproved
	msg.Locale = "ru"
	require.NoError(t, m.SendReviewResult(context.Background(), msg))

	got := (*out)[0]
	require.NotNil(t, got.auth)
	require.Contains(t, got.msg, "Subject: =?utf-8?q?")
	require.Contains(t, got.msg, "Команда «Byte Me»")
}

func TestSendReviewResultErrors(t *testing.T) {
	m, out := newTestMailer(t, Config{Host: "smtp.example.com", Port: 587}, errors.New("connection refused"))

	msg := rejected()
	msg.Status = model.StatusPending
	require.ErrorIs(t, m.SendReviewResult(context.Background(), msg), ErrUnsupportedStatus)
	require.Empty(t, *out)

	err := m.SendReviewResult(context.Background(), rejected())
	require.ErrorContains(t, err, "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.SendReviewResult(ctx, rejected()), context.Canceled)
}
