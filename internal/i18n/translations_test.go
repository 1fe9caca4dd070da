package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"

	"codebeyond/internal/model"
)

func TestReviewMailRendersTemplateData(t *testing.T) {
	tr := NewTranslator("en", nil)

	mail, err := tr.ReviewMail("en", model.StatusRejected, MailData{
		TeamLead: "Ali",
		TeamName: "Byte Me",
		Reason:   "incomplete submission",
	})
	require.NoError(t, err)
	require.Equal(t, "Update on your Code & Beyond registration", mail.Subject)
	require.Contains(t, mail.Body, "Hello Ali,")
	require.Contains(t, mail.Body, `team "Byte Me"`)
	require.Contains(t, mail.Body, "Reason: incomplete submission")
}

func TestReviewMailUsesRequestedLocale(t *testing.T) {
	tr := NewTranslator("en", nil)

	mail, err := tr.ReviewMail("ru", model.StatusApproved, MailData{TeamLead: "Ali", TeamName: "Byte Me"})
	require.NoError(t, err)
	require.Equal(t, "Ваша регистрация на Code & Beyond подтверждена", mail.Subject)
}

func TestReviewMailFallsBack(t *testing.T) {
	tr := NewTranslator("not a locale", nil)

	mail, err := tr.ReviewMail("de", model.StatusApproved, MailData{})
	require.NoError(t, err)
	require.Equal(t, "Your Code & Beyond registration is approved", mail.Subject)
}

func TestReviewMailPendingHasNoTemplate(t *testing.T) {
	tr := NewTranslator("en", nil)

	_, err := tr.ReviewMail("en", model.StatusPending, MailData{})
	require.ErrorIs(t, err, ErrNoMailTemplate)
}
