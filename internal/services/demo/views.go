package demo

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/louisbranch/loadguard/internal/loader"
	"github.com/louisbranch/loadguard/internal/platform/i18n/catalog"
	"github.com/louisbranch/loadguard/internal/platform/requestctx"
	"github.com/louisbranch/loadguard/internal/services/shared/i18nhttp"
	"github.com/louisbranch/loadguard/internal/store"
)

const (
	panelID   = "profile-panel"
	panelPath = "/panel"
	htmxSrc   = "https://unpkg.com/htmx.org@2.0.4"
)

// localize formats a catalog message for the locale in ctx. Keys missing
// from that locale fall back to the base locale.
func localize(ctx context.Context, key string, args ...any) string {
	locale := requestctx.LocaleFromContext(ctx)
	format, ok := catalog.Default().Message(locale, key)
	if !ok {
		format = key
	}
	if len(args) == 0 {
		return format
	}
	return message.NewPrinter(language.Make(locale)).Sprintf(format, args...)
}

// profilePanel renders loaded profile data read from view. The heading comes
// from the "titleKey" prop.
func profilePanel(view store.View) loader.Child {
	return func(props loader.Props) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			state, err := view.Read(ctx)
			if err != nil {
				return err
			}
			titleKey, _ := props.Value("titleKey").(string)
			user, _ := state["user"].(string)
			theme, _ := state["theme"].(string)

			_, err = io.WriteString(w, `<section id="`+panelID+`" class="card">`+
				`<h2>`+templ.EscapeString(localize(ctx, titleKey))+`</h2>`+
				`<p>`+templ.EscapeString(localize(ctx, "demo.user", user))+`</p>`+
				`<p>`+templ.EscapeString(localize(ctx, "demo.theme", theme))+`</p>`+
				`</section>`)
			return err
		})
	}
}

// pollingThrobber wraps the default placeholder in an element that asks
// for the panel again every second until it is ready.
func pollingThrobber() templ.Component {
	inner := loader.DefaultThrobber("", "")
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="`+panelID+`" hx-get="`+panelPath+`" hx-trigger="every 1s" hx-swap="outerHTML">`); err != nil {
			return err
		}
		if err := inner.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// pageLayout renders a full document around body with a language switcher.
// body is rendered before anything is written so a failing body leaves w
// untouched.
func pageLayout(title string, languages []i18nhttp.LanguageOption, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var content bytes.Buffer
		if err := body.Render(ctx, &content); err != nil {
			return err
		}
		lang := requestctx.LocaleFromContext(ctx)
		if lang == "" {
			lang = catalog.BaseLocale
		}
		_, err := io.WriteString(w, `<!doctype html><html lang="`+templ.EscapeString(lang)+`"><head>`+
			`<meta charset="utf-8"><title>`+templ.EscapeString(title)+`</title>`+
			`<script src="`+htmxSrc+`"></script></head>`+
			`<body>`+languageNav(languages)+`<main id="main">`+content.String()+`</main></body></html>`)
		return err
	})
}

func languageNav(options []i18nhttp.LanguageOption) string {
	if len(options) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<nav class="languages">`)
	for _, option := range options {
		if option.Active {
			b.WriteString(`<strong>` + templ.EscapeString(option.Locale) + `</strong>`)
			continue
		}
		b.WriteString(`<a href="` + templ.EscapeString(option.URL) + `">` + templ.EscapeString(option.Locale) + `</a>`)
	}
	b.WriteString(`</nav>`)
	return b.String()
}
