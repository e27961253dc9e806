package htmx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type testComponent struct {
	body string
	err  error
}

func (c testComponent) Render(_ context.Context, w io.Writer) error {
	if c.err != nil {
		return c.err
	}
	_, err := io.WriteString(w, c.body)
	return err
}

func TestIsHTMXRequest(t *testing.T) {
	t.Run("missing_request_is_not_htmx", func(t *testing.T) {
		t.Parallel()
		if got := IsHTMXRequest(nil); got {
			t.Fatalf("IsHTMXRequest(nil) = true, want false")
		}
	})

	t.Run("true_request_is_htmx", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.Header.Set(ResponseHeaderKey, "true")
		if got := IsHTMXRequest(r); !got {
			t.Fatalf("IsHTMXRequest(request) = false, want true")
		}
	})
}

func TestTitleTag(t *testing.T) {
	t.Parallel()
	got := TitleTag(`Profile <Admin>`)
	want := "<title>Profile &lt;Admin&gt;</title>"
	if got != want {
		t.Fatalf("TitleTag(...) = %q, want %q", got, want)
	}
}

func TestRenderPageForNonHTMXUsesFullRender(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	fragment := testComponent{body: "<div>fragment</div>"}
	full := testComponent{body: "<html><body>full</body></html>"}

	if err := RenderPage(w, r, fragment, full, TitleTag("Provided")); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if got := w.Body.String(); got != "<html><body>full</body></html>" {
		t.Fatalf("rendered body = %q, want full page body", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("content-type = %q", got)
	}
}

func TestRenderPageForHTMXInjectsMissingTitle(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set(ResponseHeaderKey, "true")
	w := httptest.NewRecorder()

	fragment := testComponent{body: "<main>fragment</main>"}
	if err := RenderPage(w, r, fragment, nil, TitleTag("Fragment Page")); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}

	got := w.Body.String()
	if !strings.HasPrefix(got, "<title>Fragment Page</title>") {
		t.Fatalf("expected injected title prefix in HTMX response, got %q", got)
	}
	if !strings.HasSuffix(got, "<main>fragment</main>") {
		t.Fatalf("expected original fragment to remain, got %q", got)
	}
}

func TestRenderPageForHTMXPreservesExistingTitle(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set(ResponseHeaderKey, "true")
	w := httptest.NewRecorder()

	fragment := testComponent{body: "<title>Already Set</title><main>fragment</main>"}
	if err := RenderPage(w, r, fragment, nil, TitleTag("Injected Title")); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}

	got := w.Body.String()
	if strings.Contains(got, "Injected Title") {
		t.Fatalf("expected existing title preserved, got %q", got)
	}
}

func TestRenderPageForHTMXExtractsMainFromFull(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.Header.Set(ResponseHeaderKey, "true")
	w := httptest.NewRecorder()

	full := testComponent{body: `<html><body><nav></nav><main id="main"><p>inner</p></main></body></html>`}
	if err := RenderPage(w, r, nil, full, ""); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if got := w.Body.String(); got != "<p>inner</p>" {
		t.Fatalf("rendered body = %q, want main content", got)
	}
}

func TestRenderPageReturnsRenderErrorWithoutWriting(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	boom := errors.New("boom")
	err := RenderPage(w, r, nil, testComponent{body: "partial", err: boom}, "")
	if !errors.Is(err, boom) {
		t.Fatalf("RenderPage() error = %v, want %v", err, boom)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected nothing written, got %q", w.Body.String())
	}
}
