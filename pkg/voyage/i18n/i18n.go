// Package i18n localizes screen titles and the messages shown when a
// screen's background work fails.
package i18n

import (
	"context"
	"embed"
	"errors"
	"net"
	"sync"

	"github.com/BrandonKowalski/voyage/pkg/voyage/internal"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

var (
	bundleOnce sync.Once
	bundle     *goi18n.Bundle
)

// Bundle returns the shared message bundle, loading the embedded message
// files on first use. English is the fallback language.
func Bundle() *goi18n.Bundle {
	bundleOnce.Do(func() {
		bundle = goi18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

		entries, err := locales.ReadDir("locales")
		if err != nil {
			internal.GetInternalLogger().Error("reading message files", "error", err)
			return
		}
		for _, e := range entries {
			if _, err := bundle.LoadMessageFileFS(locales, "locales/"+e.Name()); err != nil {
				internal.GetInternalLogger().Error("loading message file", "file", e.Name(), "error", err)
			}
		}
	})
	return bundle
}

// Localizer renders messages in the best supported match for a list of
// preferred languages.
type Localizer struct {
	tag language.Tag
	loc *goi18n.Localizer
}

// New returns a localizer for the first supported language in langs, which
// may be BCP 47 tags or Accept-Language style lists.
func New(langs ...string) *Localizer {
	b := Bundle()
	matcher := language.NewMatcher(b.LanguageTags())
	tag, _ := language.MatchStrings(matcher, langs...)
	base, _ := tag.Base()
	tag = language.Make(base.String())

	return &Localizer{
		tag: tag,
		loc: goi18n.NewLocalizer(b, tag.String()),
	}
}

// Language returns the matched language.
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Message renders id with optional template data. A missing message
// renders as its id.
func (l *Localizer) Message(id string, data map[string]any) string {
	msg, err := l.loc.Localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		internal.GetInternalLogger().Warn("missing translation", "id", id, "lang", l.tag.String(), "error", err)
		return id
	}
	return msg
}

// Plural renders a message with one/other forms for count.
func (l *Localizer) Plural(id string, count int) string {
	msg, err := l.loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
	if err != nil {
		return id
	}
	return msg
}

// Title returns the heading for a screen.
func (l *Localizer) Title(k screen.Kind) string {
	return l.Message("screen_"+k.String(), nil)
}

// Error maps a failure of a backend call to a user facing message.
func (l *Localizer) Error(err error) string {
	return l.Message(ErrorID(err), nil)
}

// ErrorID classifies err into a message id.
func ErrorID(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return "error_invalid_credentials"
	case errors.Is(err, services.ErrUnauthenticated):
		return "error_unauthenticated"
	case errors.Is(err, services.ErrCancelled):
		return "error_cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "error_timeout"
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "error_timeout"
		}
		return "error_network"
	default:
		return "error_generic"
	}
}
