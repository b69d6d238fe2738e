package internal_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/internal"
)

func TestLayoutComposer_Nested(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "layout.html"),
		`<html><head><title>{{.Title}}</title></head><body><div id="outer">{{.Children}}</div></body></html>`)
	writeFile(t, filepath.Join(root, "docs", "layout.html"),
		`<section id="middle">{{.Children}}</section>`)
	writeFile(t, filepath.Join(root, "docs", "guide", "layout.html"),
		`<article id="inner">{{.Children}}</article>`)

	lc := internal.NewLayoutComposer(root, nil, nil)
	html, rootID, err := lc.Compose(internal.Composition{
		Dir:      "docs/guide",
		Content:  "<p>page</p>",
		Metadata: internal.Metadata{Title: "Guide"},
	})
	require.NoError(t, err)
	require.Equal(t, "/", rootID)

	inner := strings.Index(html, `<article id="inner"><p>page</p></article>`)
	middle := strings.Index(html, `<section id="middle">`)
	outer := strings.Index(html, `<div id="outer">`)
	require.NotEqual(t, -1, inner)
	require.True(t, outer < middle && middle < inner, html)
	require.True(t, strings.HasPrefix(html, "<html>"))
	require.Contains(t, html, "<title>Guide</title>")
}

func TestLayoutComposer_RootIDIsOutermostApplied(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "layout.html"), `<main>{{.Children}}</main>`)

	lc := internal.NewLayoutComposer(root, nil, nil)

	_, rootID, err := lc.Compose(internal.Composition{Dir: "docs/guide", Content: "x"})
	require.NoError(t, err)
	require.Equal(t, "/docs", rootID)

	html, rootID, err := lc.Compose(internal.Composition{Dir: "blog", Content: "x"})
	require.NoError(t, err)
	require.Empty(t, rootID)
	require.Equal(t, "x", html)
}

func TestLayoutComposer_Props(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "layout.html"), `---
title: Site
props:
  theme: light
---
<body class="{{.Props.theme}}{{if .Props.wide}} wide{{end}}">{{.Children}}</body>`)

	lc := internal.NewLayoutComposer(root, nil, nil)

	html, _, err := lc.Compose(internal.Composition{
		Content: "page",
		Props:   map[string]any{"theme": "dark", "wide": true},
	})
	require.NoError(t, err)
	require.Equal(t, `<body class="dark wide">page</body>`, html)

	html, _, err = lc.Compose(internal.Composition{Content: "page"})
	require.NoError(t, err)
	require.Equal(t, `<body class="light">page</body>`, html)
}

func TestLayoutComposer_Injections(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "layout.html"), `<html><head></head><body>{{.Children}}</body></html>`)

	rc := internal.NewRequestContext(nil, nil)
	rc.InjectHead(`<meta name="a">`)
	rc.InjectBody(`<script>b()</script>`)

	lc := internal.NewLayoutComposer(root, nil, nil)
	html, _, err := lc.Compose(internal.Composition{Content: "x", State: rc})
	require.NoError(t, err)
	require.Equal(t, `<html><head><meta name="a"></head><body>x<script>b()</script></body></html>`, html)
}

func TestLayoutComposer_TemplateError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "layout.html"), `{{.Children`)

	lc := internal.NewLayoutComposer(root, nil, nil)
	_, _, err := lc.Compose(internal.Composition{Content: "x"})
	require.ErrorIs(t, err, internal.ErrLayoutRender)
}

func TestLayoutComposer_ComponentTransformer(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "layout.html"), `<x-shell>{{.Children}}</x-shell>`)

	var gotDir string
	transform := func(content, baseDir string) (string, error) {
		gotDir = baseDir
		return strings.ReplaceAll(content, "x-shell", "div"), nil
	}

	lc := internal.NewLayoutComposer(root, transform, nil)
	html, _, err := lc.Compose(internal.Composition{Content: "x"})
	require.NoError(t, err)
	require.Equal(t, "<div>x</div>", html)
	require.Equal(t, root, gotDir)
}
