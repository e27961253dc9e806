// Package i18nhttp resolves the request locale against a message catalog.
package i18nhttp

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/loadguard/internal/platform/i18n/catalog"
	"github.com/louisbranch/loadguard/internal/platform/requestctx"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "loadguard_lang"
)

// LanguageOption is one entry of a language switcher.
type LanguageOption struct {
	Locale string
	URL    string
	Active bool
}

// ResolveLocale picks the bundle locale for r. The lang query parameter
// wins, then the language cookie, then Accept-Language. The bool reports
// whether the choice came from the query and should be persisted.
func ResolveLocale(r *http.Request, bundle *catalog.Bundle) (string, bool) {
	if r == nil {
		return bundle.Resolve(), false
	}
	if value := strings.TrimSpace(r.URL.Query().Get(LangParam)); value != "" {
		if locale, ok := match(bundle, value); ok {
			return locale, true
		}
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if locale, ok := match(bundle, cookie.Value); ok {
			return locale, false
		}
	}
	tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	return bundle.Resolve(tags...), false
}

func match(bundle *catalog.Bundle, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if bundle.HasLocale(value) {
		return value, true
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	return bundle.Resolve(tag), true
}

// SetLanguageCookie persists the selected locale on the response.
func SetLanguageCookie(w http.ResponseWriter, locale string) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    locale,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware stores the resolved locale in the request context for next.
func Middleware(bundle *catalog.Bundle, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale, persist := ResolveLocale(r, bundle)
		if persist {
			SetLanguageCookie(w, locale)
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithLocale(r.Context(), locale)))
	})
}

// BuildLanguageOptions returns one option per bundle locale, linking the
// current path with the lang parameter set.
func BuildLanguageOptions(bundle *catalog.Bundle, active, path, rawQuery string) []LanguageOption {
	locales := bundle.Locales()
	options := make([]LanguageOption, 0, len(locales))
	for _, locale := range locales {
		options = append(options, LanguageOption{
			Locale: locale,
			URL:    LanguageURL(path, rawQuery, locale),
			Active: locale == active,
		})
	}
	return options
}

// LanguageURL returns the URL with the language param updated.
func LanguageURL(path string, rawQuery string, locale string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(LangParam, locale)
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}
