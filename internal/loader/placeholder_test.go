package loader

import (
	"bytes"
	"context"
	"testing"

	"github.com/louisbranch/loadguard/internal/platform/requestctx"
)

func TestDefaultThrobber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		class  string
		label  string
		locale string
		want   string
	}{
		{
			name: "defaults",
			want: `<div class="loader layout--flex"><h1>Loading...</h1></div>`,
		},
		{
			name:  "custom class and label are escaped",
			class: `spinner "big"`,
			label: "<Wait>",
			want:  `<div class="spinner &#34;big&#34;"><h1>&lt;Wait&gt;</h1></div>`,
		},
		{
			name:   "localized label",
			locale: "es",
			want:   `<div class="loader layout--flex"><h1>Cargando...</h1></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := requestctx.WithLocale(context.Background(), tt.locale)
			var buf bytes.Buffer
			if err := DefaultThrobber(tt.class, tt.label).Render(ctx, &buf); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Fatalf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadingLabelUnknownLocaleUsesBase(t *testing.T) {
	t.Parallel()

	if got := LoadingLabel("ja-JP"); got != "Loading..." {
		t.Fatalf("LoadingLabel(ja-JP) = %q, want Loading...", got)
	}
}
