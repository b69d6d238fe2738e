package internal

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/a-h/templ"
)

// ResultKind tags a PageResult.
type ResultKind int

const (
	// ResultRaw is a fully formed response returned to the client untouched.
	ResultRaw ResultKind = iota
	// ResultStream is a lazy sequence of chunks sent as server-sent events.
	ResultStream
	// ResultContentWithProps is body content plus props for the layouts.
	ResultContentWithProps
	// ResultPlain is body content alone.
	ResultPlain
	// ResultError is a failed invocation.
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultRaw:
		return "raw"
	case ResultStream:
		return "stream"
	case ResultContentWithProps:
		return "content_with_props"
	case ResultPlain:
		return "plain"
	default:
		return "error"
	}
}

// PageResult is the classified outcome of a page invocation.
// Exactly the fields matching Kind are set.
type PageResult struct {
	Raw     http.Handler
	Stream  iter.Seq2[string, error]
	Props   map[string]any
	Err     error
	Content string
	Kind    ResultKind
}

// Renderable reports whether the result goes through the layout pipeline.
func (r PageResult) Renderable() bool {
	return r.Kind == ResultContentWithProps || r.Kind == ResultPlain
}

// Content is what a page returns to hand props to its layouts along with the body.
type Content struct {
	Body  any
	Props map[string]any
}

// WithProps pairs body content with layout props.
func WithProps(body any, props map[string]any) Content {
	return Content{Body: body, Props: props}
}

// Classify turns the raw return of a page entry function into a PageResult.
// Bodies are stringified here, so templ components are rendered with ctx.
func Classify(ctx context.Context, v any, err error) PageResult {
	if err != nil {
		return PageResult{Kind: ResultError, Err: err}
	}

	switch val := v.(type) {
	case http.Handler:
		return PageResult{Kind: ResultRaw, Raw: val}
	case iter.Seq2[string, error]:
		return PageResult{Kind: ResultStream, Stream: val}
	case func(func(string, error) bool):
		return PageResult{Kind: ResultStream, Stream: val}
	case iter.Seq[string]:
		return PageResult{Kind: ResultStream, Stream: seqOf(val)}
	case func(func(string) bool):
		return PageResult{Kind: ResultStream, Stream: seqOf(val)}
	case <-chan string:
		return PageResult{Kind: ResultStream, Stream: chanSeq(val)}
	case chan string:
		return PageResult{Kind: ResultStream, Stream: chanSeq(val)}
	case Content:
		body, rerr := stringify(ctx, val.Body)
		if rerr != nil {
			return PageResult{Kind: ResultError, Err: rerr}
		}
		props := val.Props
		if props == nil {
			props = map[string]any{}
		}
		return PageResult{Kind: ResultContentWithProps, Content: body, Props: props}
	case *Content:
		if val == nil {
			return PageResult{Kind: ResultPlain}
		}
		return Classify(ctx, *val, nil)
	default:
		body, rerr := stringify(ctx, v)
		if rerr != nil {
			return PageResult{Kind: ResultError, Err: rerr}
		}
		return PageResult{Kind: ResultPlain, Content: body}
	}
}

func stringify(ctx context.Context, v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case templ.Component:
		var buf bytes.Buffer
		if err := val.Render(ctx, &buf); err != nil {
			return "", fmt.Errorf("render component: %w", err)
		}
		return buf.String(), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		return fmt.Sprint(val), nil
	}
}

func seqOf(seq iter.Seq[string]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for chunk := range seq {
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

func chanSeq(ch <-chan string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for chunk := range ch {
			if !yield(chunk, nil) {
				return
			}
		}
	}
}
