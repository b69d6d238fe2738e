package internal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/internal"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNewRouteTable(t *testing.T) {
	t.Parallel()

	t.Run("rejects duplicates", func(t *testing.T) {
		t.Parallel()
		_, err := internal.NewRouteTable([]internal.RouteEntry{
			{Pattern: "/a", Dir: "a"},
			{Pattern: "/a", Dir: "b"},
		})
		require.ErrorIs(t, err, internal.ErrDuplicateRoute)
	})

	t.Run("rejects relative patterns", func(t *testing.T) {
		t.Parallel()
		_, err := internal.NewRouteTable([]internal.RouteEntry{{Pattern: "a"}})
		require.ErrorIs(t, err, internal.ErrInvalidRouteIndex)
	})

	t.Run("normalizes dirs", func(t *testing.T) {
		t.Parallel()
		table, err := internal.NewRouteTable([]internal.RouteEntry{{Pattern: "/", Dir: "/"}, {Pattern: "/b", Dir: "./b/"}})
		require.NoError(t, err)
		require.Equal(t, 2, table.Len())
		require.Equal(t, "", table.Entries()[0].Dir)
		require.Equal(t, "b", table.Entries()[1].Dir)
	})
}

func TestParseRouteIndex(t *testing.T) {
	t.Parallel()

	table, err := internal.ParseRouteIndex([]byte(`
routes:
  - pattern: /
    dir: ""
  - pattern: /blog/{slug}
    dir: blog/[slug]
    has_handler: true
`))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	require.True(t, table.Entries()[1].HasHandler)

	_, err = internal.ParseRouteIndex([]byte("routes: ["))
	require.ErrorIs(t, err, internal.ErrInvalidRouteIndex)

	_, err = internal.LoadRouteIndex(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, internal.ErrInvalidRouteIndex)
}

func TestRouteTable_Resolve(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "home")
	writeFile(t, filepath.Join(root, "docs", "index.md"), "# Docs")
	writeFile(t, filepath.Join(root, "both", "index.html"), "html wins")
	writeFile(t, filepath.Join(root, "both", "index.md"), "# md")

	table, err := internal.NewRouteTable([]internal.RouteEntry{
		{Pattern: "/", Dir: ""},
		{Pattern: "/docs/{rest:path}", Dir: "docs"},
		{Pattern: "/both", Dir: "both"},
		{Pattern: "/blog/{slug}", Dir: "blog/[slug]", HasHandler: true},
		{Pattern: "/ghost", Dir: "ghost"},
	})
	require.NoError(t, err)

	resolved, err := table.Resolve(root)
	require.NoError(t, err)
	require.Len(t, resolved, 5)

	require.Equal(t, internal.PageHTML, resolved[0].Kind)
	require.Equal(t, filepath.Join(root, "index.html"), resolved[0].File)

	require.Equal(t, internal.PageMarkdown, resolved[1].Kind)
	require.Equal(t, "/docs/*", resolved[1].ChiPattern)
	require.Equal(t, "rest", resolved[1].CatchAll)

	require.Equal(t, internal.PageHTML, resolved[2].Kind)

	require.Equal(t, internal.PageHandler, resolved[3].Kind)
	require.Equal(t, filepath.Join(root, "blog", "[slug]", "index.go"), resolved[3].File)
	require.Equal(t, "/blog/{slug}", resolved[3].ChiPattern)

	require.Equal(t, internal.PageHTML, resolved[4].Kind, "missing files default to index.html")
}

func TestRouteTable_Resolve_DuplicateEndpoint(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	table, err := internal.NewRouteTable([]internal.RouteEntry{
		{Pattern: "/a", Dir: "x"},
		{Pattern: "/b", Dir: "x"},
	})
	require.NoError(t, err)

	_, err = table.Resolve(root)
	require.ErrorIs(t, err, internal.ErrDuplicateEndpoint)
}

func TestEndpointName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "src_app_blog_slug_index_html", internal.EndpointName("src/app/blog/[slug]/index.html"))
	require.Equal(t, "app_marketing_about_index_md", internal.EndpointName("app/(marketing)/about/index.md"))
}

func TestChiPattern(t *testing.T) {
	t.Parallel()

	p, name := internal.ChiPattern("/files/{path:path}")
	require.Equal(t, "/files/*", p)
	require.Equal(t, "path", name)

	p, name = internal.ChiPattern("/users/{id}")
	require.Equal(t, "/users/{id}", p)
	require.Empty(t, name)
}
