package intl

import (
	"context"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/campuslabs/softreq/pkg/constants"
)

type SupportedLanguage struct {
	Code        string
	VerboseName string
	Tag         language.Tag
}

var allSupportedLanguages = []SupportedLanguage{
	{
		Code:        "en",
		VerboseName: "English",
		Tag:         language.English,
	},
	{
		Code:        "pt-BR",
		VerboseName: "Português (Brasil)",
		Tag:         language.BrazilianPortuguese,
	},
}

// GetSupportedLanguages returns the languages whose codes are in whitelist.
// An empty whitelist returns every supported language.
func GetSupportedLanguages(whitelist []string) []SupportedLanguage {
	if len(whitelist) == 0 {
		return allSupportedLanguages
	}

	allowed := make(map[string]bool, len(whitelist))
	for _, code := range whitelist {
		allowed[code] = true
	}

	filtered := make([]SupportedLanguage, 0, len(whitelist))
	for _, lang := range allSupportedLanguages {
		if allowed[lang.Code] {
			filtered = append(filtered, lang)
		}
	}
	return filtered
}

func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, constants.LocalizerKey, l)
}

func UseLocalizer(ctx context.Context) (*i18n.Localizer, bool) {
	l, ok := ctx.Value(constants.LocalizerKey).(*i18n.Localizer)
	return l, ok && l != nil
}

func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, constants.LocaleKey, tag)
}

// UseLocale returns the negotiated locale, or fallback when none was stored.
func UseLocale(ctx context.Context, fallback language.Tag) language.Tag {
	if tag, ok := ctx.Value(constants.LocaleKey).(language.Tag); ok {
		return tag
	}
	return fallback
}

// Localize renders messageID with data through the localizer in ctx.
// defaultMessage is returned when there is no localizer or no translation.
func Localize(ctx context.Context, messageID string, data any, defaultMessage string) string {
	l, ok := UseLocalizer(ctx)
	if !ok || messageID == "" {
		return defaultMessage
	}
	// A missing translation renders defaultMessage and still reports an error.
	msg, _ := l.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
		DefaultMessage: &i18n.Message{
			ID:    messageID,
			Other: defaultMessage,
		},
	})
	if msg == "" {
		return defaultMessage
	}
	return msg
}
