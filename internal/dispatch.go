package internal

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// pageHandler serves one resolved route: cache lookup, handler invocation or
// static file load, layout composition and cache save.
func (a *App) pageHandler(rr ResolvedRoute) HandlerFunc {
	return func(x *Exchange) error {
		r := x.Request()
		ctx, span := a.tracer.Start(r.Context(), "pageforge.render", trace.WithAttributes(
			attribute.String("pageforge.route", rr.Pattern),
			attribute.String("pageforge.page_kind", rr.Kind.String()),
			attribute.String("http.request.method", r.Method),
		))
		defer span.End()
		start := time.Now()

		uri := r.URL.Path
		if e, ok := a.cache.Serve(ctx, r.Method, uri); ok {
			span.SetAttributes(attribute.Bool("pageforge.cache_hit", true))
			if e.Layout != "" {
				x.Response().Header().Set(RootLayoutHeader, e.Layout)
			}
			err := x.HTML(http.StatusOK, e.Content)
			a.metrics.ObserveRender(rr.Pattern, "cache", http.StatusOK, time.Since(start))
			return err
		}

		err := a.dispatch(ctx, x, rr)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}

func (a *App) dispatch(ctx context.Context, x *Exchange, rr ResolvedRoute) error {
	r := x.Request()
	start := time.Now()
	params := pathParams(r, rr.CatchAll)
	rc := NewRequestContext(params, r.URL.Query())

	var (
		res      PageResult
		meta     Metadata
		settings *CacheSettings
	)
	switch rr.Kind {
	case PageHandler:
		result, page, err := a.invoker.Invoke(ctx, rr.Dir, r, params, rc)
		if err != nil {
			return err
		}
		res = result
		switch res.Kind {
		case ResultError:
			return res.Err
		case ResultRaw:
			res.Raw.ServeHTTP(x.Response(), r)
			a.metrics.ObserveRender(rr.Pattern, res.Kind.String(), x.Response().Status(), time.Since(start))
			return nil
		case ResultStream:
			writeSSE(ctx, x.Response(), res.Stream, a.logger)
			a.metrics.ObserveRender(rr.Pattern, res.Kind.String(), http.StatusOK, time.Since(start))
			return nil
		}
		meta = page.Metadata.Merge(rc.Metadata())
		settings = page.Cache
	default:
		content, m, err := a.static.load(rr.File, rr.Kind)
		if err != nil {
			return err
		}
		res = PageResult{Kind: ResultPlain, Content: content}
		meta = m
	}

	html, rootID, err := a.render(rr, r, res, meta, params, rc)
	if err != nil {
		return err
	}

	if rootID != "" {
		x.Response().Header().Set(RootLayoutHeader, rootID)
	}
	if a.cache.Admit(r.Method, res, settings) {
		ttl := EffectiveTTL(settings, a.cache.DefaultTTL())
		if err := a.cache.Save(ctx, r.URL.Path, html, rootID, ttl); err != nil {
			a.logger.WarnContext(ctx, "failed to save page cache",
				slog.String("uri", r.URL.Path), slog.Any("error", err))
		}
	}

	err = x.HTML(http.StatusOK, html)
	a.metrics.ObserveRender(rr.Pattern, res.Kind.String(), http.StatusOK, time.Since(start))
	return err
}

// render transforms the page body and composes it with its layouts.
func (a *App) render(rr ResolvedRoute, r *http.Request, res PageResult, meta Metadata, params map[string]string, rc *RequestContext) (string, string, error) {
	content, err := a.components(res.Content, filepath.Dir(rr.File))
	if err != nil {
		return "", "", err
	}

	// Layouts see path params, then props; props win on key clashes.
	props := make(map[string]any, len(params)+len(res.Props))
	for k, v := range params {
		props[k] = v
	}
	for k, v := range res.Props {
		props[k] = v
	}

	html, rootID, err := a.layouts.Compose(Composition{
		Content:  content,
		Dir:      rr.Dir,
		Metadata: meta,
		Props:    props,
		Params:   params,
		Request:  r,
		State:    rc,
	})
	if err != nil {
		return "", "", err
	}
	html, err = a.scripts(html)
	if err != nil {
		return "", "", err
	}
	return html, rootID, nil
}

// pathParams collects the matched URL parameters, decoded.
// The trailing wildcard is reported under catchAll when set.
func pathParams(r *http.Request, catchAll string) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}
	out := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		v := rctx.URLParams.Values[i]
		if dec, err := url.PathUnescape(v); err == nil {
			v = dec
		}
		if k == "*" {
			if catchAll == "" {
				continue
			}
			k = catchAll
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
