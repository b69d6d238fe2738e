package internal

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/dmitrymomot/pageforge/pkg/logger"
	"github.com/dmitrymomot/pageforge/pkg/sanitizer"
)

// RootLayoutHeader names the root layout a document was composed with.
const RootLayoutHeader = "X-PP-Root-Layout"

// ErrorPresenter renders 404, 500 and other HTTP error responses.
type ErrorPresenter struct {
	layouts    *LayoutComposer
	scripts    ScriptTransformer
	logger     *slog.Logger
	appRoot    string
	production bool
}

// NewErrorPresenter creates a presenter reading not-found.html and error.html from appRoot.
func NewErrorPresenter(appRoot string, layouts *LayoutComposer, scripts ScriptTransformer, l *slog.Logger, production bool) *ErrorPresenter {
	if scripts == nil {
		scripts = identityScripts
	}
	if l == nil {
		l = logger.NewNope()
	}
	return &ErrorPresenter{
		appRoot:    appRoot,
		layouts:    layouts,
		scripts:    scripts,
		logger:     l,
		production: production,
	}
}

// Present routes err to the matching page. Plain errors and 500s get the
// error page; every other HTTPError keeps its own status.
func (p *ErrorPresenter) Present(x *Exchange, err error) {
	if httpErr := AsHTTPError(err); httpErr != nil && httpErr.Code != http.StatusInternalServerError {
		if httpErr.Code == http.StatusNotFound {
			p.NotFound(x)
			return
		}
		p.Status(x, httpErr)
		return
	}
	p.InternalError(x, err)
}

// NotFound renders not-found.html through the layouts, or a bare heading.
func (p *ErrorPresenter) NotFound(x *Exchange) {
	file := filepath.Join(p.appRoot, NotFoundFile)
	content, err := os.ReadFile(file)
	if err != nil {
		_ = x.HTML(http.StatusNotFound, "<h1>Not Found</h1>")
		return
	}

	html, rootID, err := p.compose(x, string(content), Metadata{
		Title:       "Page Not Found",
		Description: "The page you are looking for does not exist.",
	})
	if err != nil {
		p.InternalError(x, err)
		return
	}
	p.write(x, http.StatusNotFound, html, rootID)
}

// Status renders a bare heading with the error message, keeping e.Code.
func (p *ErrorPresenter) Status(x *Exchange, e *HTTPError) {
	_ = x.HTML(e.Code, "<h1>"+template.HTMLEscapeString(e.Message)+"</h1>")
}

type errorPageData struct {
	Request      *http.Request
	ErrorMessage string
	ErrorTrace   string
}

// InternalError logs err with its trace and renders error.html.
// The trace reaches the page only outside production. When error.html is
// missing or fails to render, a minimal page carrying the message is sent.
func (p *ErrorPresenter) InternalError(x *Exchange, err error) {
	message := errorMessage(err)
	trace := errorTrace(err)
	p.logger.ErrorContext(x.Context(), "unhandled error",
		slog.String("error", message),
		slog.String("trace", trace),
		slog.String("path", x.Request().URL.Path),
	)

	if html, rootID, ok := p.renderErrorPage(x, message, trace); ok {
		p.write(x, http.StatusInternalServerError, html, rootID)
		return
	}
	_ = x.HTML(http.StatusInternalServerError,
		"<h1>500 - Internal Server Error</h1><p>"+sanitizer.Text(message)+"</p>")
}

func (p *ErrorPresenter) renderErrorPage(x *Exchange, message, trace string) (string, string, bool) {
	file := filepath.Join(p.appRoot, ErrorFile)
	src, err := os.ReadFile(file)
	if err != nil {
		return "", "", false
	}

	data := errorPageData{Request: x.Request(), ErrorMessage: message}
	if !p.production {
		data.ErrorTrace = trace
	}
	tmpl, err := template.New(ErrorFile).Parse(string(src))
	if err != nil {
		p.logger.ErrorContext(x.Context(), "failed to parse error page", slog.Any("error", err))
		return "", "", false
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		p.logger.ErrorContext(x.Context(), "failed to render error page", slog.Any("error", err))
		return "", "", false
	}

	html, rootID, err := p.compose(x, buf.String(), Metadata{
		Title:       "Application Error",
		Description: "An unexpected error occurred.",
	})
	if err != nil {
		p.logger.ErrorContext(x.Context(), "failed to compose error page", slog.Any("error", err))
		return "", "", false
	}
	return html, rootID, true
}

// compose runs content through the app root layouts and the script transformer.
func (p *ErrorPresenter) compose(x *Exchange, content string, meta Metadata) (string, string, error) {
	html, rootID, err := p.layouts.Compose(Composition{
		Content:  content,
		Metadata: meta,
		Request:  x.Request(),
	})
	if err != nil {
		return "", "", err
	}
	html, err = p.scripts(html)
	if err != nil {
		return "", "", err
	}
	return html, rootID, nil
}

func (p *ErrorPresenter) write(x *Exchange, code int, html, rootID string) {
	if rootID != "" {
		x.Response().Header().Set(RootLayoutHeader, rootID)
	}
	_ = x.HTML(code, html)
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// errorTrace describes err: a captured stack when there is one, else the
// wrapped chain followed by the current goroutine stack.
func errorTrace(err error) string {
	var st StackTracer
	if errors.As(err, &st) {
		return string(st.StackTrace())
	}
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "%T: %v\n", e, e)
	}
	b.Write(debug.Stack())
	return b.String()
}
