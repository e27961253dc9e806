package loader

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/louisbranch/loadguard/internal/platform/i18n/catalog"
	"github.com/louisbranch/loadguard/internal/platform/requestctx"
)

// DefaultThrobberClass is the class of the default placeholder.
const DefaultThrobberClass = "loader layout--flex"

const loadingMessageKey = "loader.loading"

// DefaultThrobber renders the default placeholder:
//
//	<div class="loader layout--flex"><h1>Loading...</h1></div>
//
// An empty class uses DefaultThrobberClass; an empty label uses the
// loader.loading message for the locale in ctx.
func DefaultThrobber(class, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := strings.TrimSpace(class)
		if class == "" {
			class = DefaultThrobberClass
		}
		label := label
		if label == "" {
			label = LoadingLabel(requestctx.LocaleFromContext(ctx))
		}
		_, err := io.WriteString(w, `<div class="`+templ.EscapeString(class)+`"><h1>`+templ.EscapeString(label)+`</h1></div>`)
		return err
	})
}

// LoadingLabel returns the localized placeholder label.
func LoadingLabel(locale string) string {
	if label, ok := catalog.Default().Message(locale, loadingMessageKey); ok {
		return label
	}
	return "Loading..."
}
