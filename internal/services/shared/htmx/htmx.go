// Package htmx renders full pages and HTMX partial responses from the same
// templ components.
package htmx

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// ResponseHeaderKey is the HTMX request header used to detect partial updates.
const ResponseHeaderKey = "HX-Request"

// IsHTMXRequest reports whether the request was initiated by HTMX.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(ResponseHeaderKey), "true")
}

// TitleTag formats an escaped `<title>` element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

func addHTMXTitleIfMissing(responseBody []byte, title string) []byte {
	if strings.TrimSpace(title) == "" {
		return responseBody
	}
	if bytes.Contains(bytes.ToLower(responseBody), []byte("<title")) {
		return responseBody
	}
	return append([]byte(title), responseBody...)
}

// RenderPage renders a page for normal or HTMX requests.
//
// fragment is used for HTMX responses while full is used for non-HTMX
// responses. An HTMX request without a fragment gets the <main> content of
// full. If full is nil, fragment is used for both paths.
//
// The component is rendered into a buffer first, so a render error is
// returned before anything is written and the caller chooses the status.
func RenderPage(w http.ResponseWriter, r *http.Request, fragment templ.Component, full templ.Component, htmxTitle string) error {
	isHTMX := IsHTMXRequest(r)
	target := full
	if target == nil || (isHTMX && fragment != nil) {
		target = fragment
	}
	if target == nil {
		return nil
	}

	var body bytes.Buffer
	if err := target.Render(requestContext(r), &body); err != nil {
		return err
	}
	out := body.Bytes()
	if isHTMX {
		if fragment == nil {
			if mainContent, ok := extractMainContent(out); ok {
				out = mainContent
			}
		}
		out = addHTMXTitleIfMissing(out, htmxTitle)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write(out)
	return err
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.Index(body[start:], []byte(">"))
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.Index(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}
