package i18n

import (
	"embed"
	"errors"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"codebeyond/internal/model"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.en.toml", "active.ru.toml"}

// Translator wraps a go-i18n bundle loaded from the embedded message files.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	log             *zerolog.Logger
}

// NewTranslator falls back to English when defaultLocale does not parse.
func NewTranslator(defaultLocale string, log *zerolog.Logger) *Translator {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		log.Warn().Err(err).Str("locale", defaultLocale).Msg("unknown default locale, using en")
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Error().Err(err).Str("file", file).Msg("failed to load translations")
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		log:             log,
	}
}

// Mail is a rendered review notification.
type Mail struct {
	Subject string
	Body    string
}

// MailData fills the mail templates.
type MailData struct {
	TeamLead string
	TeamName string
	Reason   string
}

var ErrNoMailTemplate = errors.New("no mail template for status")

var mailKeys = map[model.Status]struct{ subject, body string }{
	model.StatusApproved: {"MailApprovedSubject", "MailApprovedBody"},
	model.StatusRejected: {"MailRejectedSubject", "MailRejectedBody"},
}

// ReviewMail renders the notification for a review outcome in locale, falling back to
// the default locale. Only approved and rejected outcomes have a mail.
func (t *Translator) ReviewMail(locale string, status model.Status, data MailData) (Mail, error) {
	keys, ok := mailKeys[status]
	if !ok {
		return Mail{}, fmt.Errorf("%w %q", ErrNoMailTemplate, status)
	}

	languages := t.languages(locale)
	localizer := i18n.NewLocalizer(t.bundle, languages...)
	subject, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: keys.subject, TemplateData: data})
	if err != nil {
		t.log.Warn().Err(err).Str("key", keys.subject).Strs("locales", languages).Msg("localize failed")
		return Mail{}, fmt.Errorf("render %s: %w", keys.subject, err)
	}
	body, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: keys.body, TemplateData: data})
	if err != nil {
		t.log.Warn().Err(err).Str("key", keys.body).Strs("locales", languages).Msg("localize failed")
		return Mail{}, fmt.Errorf("render %s: %w", keys.body, err)
	}
	return Mail{Subject: subject, Body: body}, nil
}

func (t *Translator) languages(locale string) []string {
	languages := make([]string, 0, 2)
	if locale != "" {
		languages = append(languages, locale)
	}
	return append(languages, t.defaultLanguage.String())
}
