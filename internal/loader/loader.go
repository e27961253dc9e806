// Package loader decorates templ components so that they dispatch a fixed
// list of load actions once per mounted instance and render a placeholder
// while any watched request kind is active in the store.
//
// A Decorator holds the immutable configuration. Wrap binds it to a child
// view, producing a Factory; each Factory.Mount creates an Instance with its
// own dispatched set. Rendering an Instance runs the throttle (Update), then
// the busy decision (View):
//
//	dec, err := loader.New(loader.Config{
//		Actions:       []loader.Action{fetchUser},
//		RequestStates: []loader.RequestState{"FETCH_USER"},
//	})
//	panel := dec.Wrap(profilePanel).Mount(view, props)
//	err = panel.Render(ctx, w)
package loader

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/a-h/templ"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/loadguard/internal/platform/errors"
	"github.com/louisbranch/loadguard/internal/store"
)

const tracerName = "github.com/louisbranch/loadguard/internal/loader"

// Config is the decoration-time configuration shared by every instance.
type Config struct {
	// Actions are dispatched once each, in order. Required.
	Actions []Action
	// RequestStates are the request kinds that keep the placeholder up.
	// Required.
	RequestStates []RequestState
}

type options struct {
	selector     Selector
	warner       Warner
	tracer       trace.Tracer
	pendingGuard bool
	language     string
}

// Option customizes a Decorator.
type Option func(*options)

// WithSelector overrides how active requests are read from state.
func WithSelector(selector Selector) Option {
	return func(o *options) {
		if selector != nil {
			o.selector = selector
		}
	}
}

// WithWarner sets the sink for non-fatal diagnostics.
func WithWarner(warner Warner) Option {
	return func(o *options) {
		if warner != nil {
			o.warner = warner
		}
	}
}

// WithTracer sets the tracer used for render spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithPendingGuard keeps instances busy until every dispatched action has
// been acknowledged with Instance.Acknowledge.
func WithPendingGuard() Option {
	return func(o *options) { o.pendingGuard = true }
}

// WithLanguage sets the locale of the default placeholder label for
// renders whose context carries no locale.
func WithLanguage(locale string) Option {
	return func(o *options) { o.language = strings.TrimSpace(locale) }
}

// Decorator holds a validated configuration.
type Decorator struct {
	actions []Action
	watched []RequestState
	opts    options
}

// New validates cfg and returns a Decorator.
func New(cfg Config, opts ...Option) (*Decorator, error) {
	if cfg.Actions == nil {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "actions list is required")
	}
	if cfg.RequestStates == nil {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "request states are required")
	}
	for _, action := range cfg.Actions {
		if _, err := KeyOf(action); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeConfigInvalid, "invalid action", err)
		}
	}

	o := options{
		selector: DefaultSelector,
		warner:   logWarner,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Decorator{
		actions: slices.Clone(cfg.Actions),
		watched: slices.Clone(cfg.RequestStates),
		opts:    o,
	}, nil
}

// Props are handed to the wrapped child: the caller's values, unchanged,
// plus the store's dispatch function and the active requests read for this
// render.
type Props struct {
	Values         map[string]any
	Dispatch       DispatchFunc
	ActiveRequests ActiveRequests
}

// Value returns one caller value.
func (p Props) Value(key string) any {
	return p.Values[key]
}

// Child builds the wrapped view from props.
type Child func(props Props) templ.Component

// Factory mounts instances of a wrapped child.
type Factory struct {
	decorator *Decorator
	child     Child
}

// Wrap binds the decorator to a child view.
func (d *Decorator) Wrap(child Child) *Factory {
	if child == nil {
		child = func(Props) templ.Component { return emptyComponent{} }
	}
	return &Factory{decorator: d, child: child}
}

// MountOption customizes one instance.
type MountOption func(*Instance)

// WithThrobber replaces the default placeholder.
func WithThrobber(throbber templ.Component) MountOption {
	return func(i *Instance) { i.throbber = throbber }
}

// WithThrobberClass sets the class of the default placeholder.
func WithThrobberClass(class string) MountOption {
	return func(i *Instance) { i.throbberClass = class }
}

// Mount creates an instance reading from and dispatching to view. values
// are forwarded to the child as-is.
func (f *Factory) Mount(view store.View, values map[string]any, opts ...MountOption) *Instance {
	i := &Instance{
		factory:    f,
		view:       view,
		values:     values,
		dispatched: NewDispatchedSet(),
		acked:      map[ActionKey]struct{}{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

type emptyComponent struct{}

func (emptyComponent) Render(context.Context, io.Writer) error {
	return nil
}
