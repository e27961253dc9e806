// Package demo serves a profile page whose panel is wrapped by a loader:
// the panel dispatches its load actions once and shows a polling
// placeholder until the loads finish.
package demo

import (
	"log"
	"net/http"

	"github.com/louisbranch/loadguard/internal/loader"
	apperrors "github.com/louisbranch/loadguard/internal/platform/errors"
	"github.com/louisbranch/loadguard/internal/platform/i18n/catalog"
	"github.com/louisbranch/loadguard/internal/platform/requestctx"
	"github.com/louisbranch/loadguard/internal/services/shared/htmx"
	"github.com/louisbranch/loadguard/internal/services/shared/i18nhttp"
	"github.com/louisbranch/loadguard/internal/services/shared/route"
	"github.com/louisbranch/loadguard/internal/store"
)

// Handler serves the demo page and its HTMX panel endpoint.
type Handler struct {
	panel  *loader.Instance
	bundle *catalog.Bundle
	mux    *http.ServeMux
	routes http.Handler
}

// NewHandler mounts one panel instance over view. The instance lives as long
// as the handler, so each action is dispatched once per process.
func NewHandler(view store.View, opts ...loader.Option) (*Handler, error) {
	dec, err := loader.New(loader.Config{
		Actions:       Actions(),
		RequestStates: Watched(),
	}, opts...)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		panel: dec.Wrap(profilePanel(view)).Mount(view,
			map[string]any{"titleKey": "demo.title"},
			loader.WithThrobber(pollingThrobber()),
		),
		bundle: catalog.Default(),
		mux:    http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /{$}", h.handlePage)
	h.mux.HandleFunc("GET "+panelPath, h.handlePanel)
	h.routes = i18nhttp.Middleware(h.bundle, route.Canonical(h.mux))
	return h, nil
}

// Acknowledge forwards a finished load to the panel's pending guard.
func (h *Handler) Acknowledge(a LoadAction) {
	if err := h.panel.Acknowledge(a); err != nil {
		log.Printf("demo: acknowledge %s: %v", a.Type, err)
	}
}

// ServeHTTP resolves the request locale and routes the request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.routes.ServeHTTP(w, r)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	title := localize(ctx, "demo.title")
	languages := i18nhttp.BuildLanguageOptions(h.bundle, requestctx.LocaleFromContext(ctx), r.URL.Path, r.URL.RawQuery)
	if err := htmx.RenderPage(w, r, h.panel, pageLayout(title, languages, h.panel), htmx.TitleTag(title)); err != nil {
		h.writeError(w, r, err)
	}
}

func (h *Handler) handlePanel(w http.ResponseWriter, r *http.Request) {
	if err := htmx.RenderPage(w, r, h.panel, nil, ""); err != nil {
		h.writeError(w, r, err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("demo: render %s: %v", r.URL.Path, err)
	http.Error(w, localize(r.Context(), "loader.error"), apperrors.HTTPStatus(err))
}
