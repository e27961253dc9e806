package loader

import (
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/loadguard/internal/platform/errors"
	"github.com/louisbranch/loadguard/internal/platform/requestctx"
	"github.com/louisbranch/loadguard/internal/store"
)

// Instance is one mounted loader. It implements templ.Component.
//
// Update must not be re-entered from the store's dispatch path: dispatch
// runs while the instance lock is held.
type Instance struct {
	factory       *Factory
	view          store.View
	values        map[string]any
	throbber      templ.Component
	throbberClass string

	mu         sync.Mutex
	dispatched *DispatchedSet
	acked      map[ActionKey]struct{}
}

var _ templ.Component = (*Instance)(nil)

// Update is the mount/update hook: it dispatches every configured action
// not yet dispatched by this instance.
func (i *Instance) Update(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, err := Throttle(ctx, i.factory.decorator.actions, i.dispatched, i.view.Dispatch)
	return err
}

// View reads the store and returns the placeholder when busy, otherwise the
// wrapped child built from the instance props.
func (i *Instance) View(ctx context.Context) (templ.Component, bool, error) {
	d := i.factory.decorator
	state, err := i.view.Read(ctx)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.CodeStoreRead, "read store", err)
	}

	active := ClassifyRequests(d.opts.selector(state))
	busy := Busy(active, d.watched, d.opts.warner) || i.pending()
	if busy {
		return i.placeholder(), true, nil
	}

	child := i.factory.child(Props{
		Values:         i.values,
		Dispatch:       i.view.Dispatch,
		ActiveRequests: active,
	})
	if child == nil {
		child = emptyComponent{}
	}
	return child, false, nil
}

// Render runs Update, then View, and renders the chosen component.
func (i *Instance) Render(ctx context.Context, w io.Writer) error {
	ctx, span := i.factory.decorator.opts.tracer.Start(ctx, "loader.render")
	defer span.End()

	if err := i.Update(ctx); err != nil {
		return fail(span, err)
	}
	component, busy, err := i.View(ctx)
	if err != nil {
		return fail(span, err)
	}
	span.SetAttributes(
		attribute.Bool("loader.busy", busy),
		attribute.Int("loader.dispatched", i.DispatchedCount()),
	)
	if err := component.Render(ctx, w); err != nil {
		return fail(span, err)
	}
	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (i *Instance) placeholder() templ.Component {
	if i.throbber != nil {
		return i.throbber
	}
	throbber := DefaultThrobber(i.throbberClass, "")
	language := i.factory.decorator.opts.language
	if language == "" {
		return throbber
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if requestctx.LocaleFromContext(ctx) == "" {
			ctx = requestctx.WithLocale(ctx, language)
		}
		return throbber.Render(ctx, w)
	})
}

// Dispatched returns the keys this instance dispatched, in order.
func (i *Instance) Dispatched() []ActionKey {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dispatched.Keys()
}

// DispatchedCount returns how many distinct actions this instance dispatched.
func (i *Instance) DispatchedCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dispatched.Len()
}
