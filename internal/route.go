package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Index file names looked up inside a route directory.
const (
	HandlerFile  = "index.go"
	HTMLFile     = "index.html"
	MarkdownFile = "index.md"
	LayoutFile   = "layout.html"
	NotFoundFile = "not-found.html"
	ErrorFile    = "error.html"
)

// RouteEntry is one line of the route index.
type RouteEntry struct {
	Pattern    string `yaml:"pattern" json:"pattern"`
	Dir        string `yaml:"dir" json:"dir"`
	HasHandler bool   `yaml:"has_handler" json:"has_handler"`
}

// PageKind tells how a route produces its content.
type PageKind int

const (
	PageHandler PageKind = iota
	PageHTML
	PageMarkdown
)

func (k PageKind) String() string {
	switch k {
	case PageHandler:
		return "handler"
	case PageMarkdown:
		return "markdown"
	default:
		return "html"
	}
}

// ResolvedRoute is a RouteEntry bound to its index file.
type ResolvedRoute struct {
	RouteEntry

	// File is the index file path, app root included.
	File string
	// Endpoint is the unique route name derived from File.
	Endpoint string
	// ChiPattern is Pattern in router syntax.
	ChiPattern string
	// CatchAll names the path parameter bound to the trailing wildcard, if any.
	CatchAll string
	Kind     PageKind
}

// RouteTable is the immutable set of routes known at startup.
type RouteTable struct {
	entries []RouteEntry
}

// NewRouteTable validates entries and builds a table.
// Patterns must be unique.
func NewRouteTable(entries []RouteEntry) (*RouteTable, error) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]RouteEntry, 0, len(entries))
	for _, e := range entries {
		if e.Pattern == "" || !strings.HasPrefix(e.Pattern, "/") {
			return nil, fmt.Errorf("%w: pattern %q must start with /", ErrInvalidRouteIndex, e.Pattern)
		}
		if _, dup := seen[e.Pattern]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, e.Pattern)
		}
		seen[e.Pattern] = struct{}{}
		e.Dir = normalizeDir(e.Dir)
		out = append(out, e)
	}
	return &RouteTable{entries: out}, nil
}

type routeIndex struct {
	Routes []RouteEntry `yaml:"routes"`
}

// LoadRouteIndex reads a route index file. JSON is accepted as YAML.
func LoadRouteIndex(file string) (*RouteTable, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Join(ErrInvalidRouteIndex, err)
	}
	return ParseRouteIndex(data)
}

// ParseRouteIndex decodes a route index document.
func ParseRouteIndex(data []byte) (*RouteTable, error) {
	var idx routeIndex
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, errors.Join(ErrInvalidRouteIndex, err)
	}
	return NewRouteTable(idx.Routes)
}

// Entries returns a copy of the table's entries in index order.
func (t *RouteTable) Entries() []RouteEntry {
	return append([]RouteEntry(nil), t.entries...)
}

// Len returns the number of routes.
func (t *RouteTable) Len() int {
	return len(t.entries)
}

// Resolve binds every entry to its index file under appRoot.
// Handler units win, then index.html, then index.md. A route with neither
// static file resolves to index.html and fails when requested.
func (t *RouteTable) Resolve(appRoot string) ([]ResolvedRoute, error) {
	out := make([]ResolvedRoute, 0, len(t.entries))
	endpoints := make(map[string]string, len(t.entries))
	for _, e := range t.entries {
		base := filepath.Join(appRoot, filepath.FromSlash(e.Dir))
		rr := ResolvedRoute{RouteEntry: e}
		switch {
		case e.HasHandler || fileExists(filepath.Join(base, HandlerFile)):
			rr.Kind, rr.File = PageHandler, filepath.Join(base, HandlerFile)
		case fileExists(filepath.Join(base, HTMLFile)):
			rr.Kind, rr.File = PageHTML, filepath.Join(base, HTMLFile)
		case fileExists(filepath.Join(base, MarkdownFile)):
			rr.Kind, rr.File = PageMarkdown, filepath.Join(base, MarkdownFile)
		default:
			rr.Kind, rr.File = PageHTML, filepath.Join(base, HTMLFile)
		}

		rr.Endpoint = EndpointName(filepath.ToSlash(rr.File))
		if prev, dup := endpoints[rr.Endpoint]; dup {
			return nil, fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateEndpoint, rr.Endpoint, prev, e.Pattern)
		}
		endpoints[rr.Endpoint] = e.Pattern

		rr.ChiPattern, rr.CatchAll = ChiPattern(e.Pattern)
		out = append(out, rr)
	}
	return out, nil
}

// EndpointName derives a route name from an index file path.
// Brackets and parentheses are dropped; every other non-alphanumeric rune becomes "_".
func EndpointName(file string) string {
	var b strings.Builder
	b.Grow(len(file))
	for _, r := range file {
		switch {
		case r == '[' || r == ']' || r == '(' || r == ')':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

var pathParamRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*):path\}$`)

// ChiPattern converts "{name:path}" catch-all segments into the router's "*" wildcard.
// Other patterns pass through unchanged.
func ChiPattern(pattern string) (chiPattern, catchAll string) {
	m := pathParamRe.FindStringSubmatchIndex(pattern)
	if m == nil {
		return pattern, ""
	}
	return pattern[:m[0]] + "*", pattern[m[2]:m[3]]
}

func fileExists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
