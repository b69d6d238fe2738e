package internal

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"maps"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ComponentTransformer rewrites page or layout source before rendering.
// baseDir is the directory the source was read from.
type ComponentTransformer func(content, baseDir string) (string, error)

// ScriptTransformer rewrites the final document.
type ScriptTransformer func(html string) (string, error)

func identityComponents(content, _ string) (string, error) { return content, nil }

func identityScripts(html string) (string, error) { return html, nil }

// LayoutData is the template data every layout receives.
type LayoutData struct {
	Props       map[string]any
	Meta        map[string]string
	Params      map[string]string
	Request     *http.Request
	Title       string
	Description string
	Children    template.HTML
}

// Composition is one page body on its way through the layout chain.
type Composition struct {
	Props    map[string]any
	Params   map[string]string
	Request  *http.Request
	State    *RequestContext
	Metadata Metadata
	Content  string
	// Dir is the route directory relative to the app root.
	Dir string
}

type layoutFrontMatter struct {
	Extra       map[string]string `yaml:"extra"`
	Props       map[string]any    `yaml:"props"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
}

type layoutFile struct {
	modTime time.Time
	tmpl    *template.Template
	props   map[string]any
	meta    Metadata
	id      string
}

// LayoutComposer wraps page bodies in every layout.html found between the
// route directory and the app root, innermost first.
type LayoutComposer struct {
	transform ComponentTransformer
	funcs     template.FuncMap
	cache     map[string]*layoutFile
	root      string
	mu        sync.RWMutex
}

// NewLayoutComposer creates a composer rooted at appRoot.
// A nil transform leaves layout sources untouched.
func NewLayoutComposer(appRoot string, transform ComponentTransformer, funcs template.FuncMap) *LayoutComposer {
	if transform == nil {
		transform = identityComponents
	}
	fm := template.FuncMap{
		"safe": func(s string) template.HTML { return template.HTML(s) },
		"default": func(def, v any) any {
			if v == nil || v == "" {
				return def
			}
			return v
		},
	}
	maps.Copy(fm, funcs)
	return &LayoutComposer{
		root:      appRoot,
		transform: transform,
		funcs:     fm,
		cache:     make(map[string]*layoutFile),
	}
}

// Compose renders c through its layout chain. It returns the document and the
// id of the outermost applied layout: "/" for the app root, "/<dir>" below it,
// "" when no layout applied. Queued head and body injections are placed last.
func (lc *LayoutComposer) Compose(c Composition) (string, string, error) {
	layouts, err := lc.chain(c.Dir)
	if err != nil {
		return "", "", err
	}

	// Outer layouts provide defaults, inner ones override, the page wins.
	var meta Metadata
	props := make(map[string]any)
	for i := len(layouts) - 1; i >= 0; i-- {
		meta = meta.Merge(&layouts[i].meta)
		maps.Copy(props, layouts[i].props)
	}
	meta = meta.Merge(&c.Metadata)
	maps.Copy(props, c.Props)

	data := LayoutData{
		Props:       props,
		Meta:        meta.Flatten(),
		Params:      c.Params,
		Request:     c.Request,
		Title:       meta.Title,
		Description: meta.Description,
	}

	html := c.Content
	rootID := ""
	for _, l := range layouts {
		data.Children = template.HTML(html)
		var buf bytes.Buffer
		if err := l.tmpl.Execute(&buf, data); err != nil {
			return "", "", errors.Join(ErrLayoutRender, fmt.Errorf("layout %s: %w", l.id, err))
		}
		html = buf.String()
		rootID = l.id
	}

	return c.State.applyInjections(html), rootID, nil
}

// chain returns the layouts applying to dir, innermost first.
func (lc *LayoutComposer) chain(dir string) ([]*layoutFile, error) {
	var out []*layoutFile
	for _, d := range ancestors(normalizeDir(dir)) {
		l, err := lc.load(d)
		if err != nil {
			return nil, err
		}
		if l != nil {
			out = append(out, l)
		}
	}
	return out, nil
}

// ancestors lists dir and each parent up to the root "".
func ancestors(dir string) []string {
	out := []string{dir}
	for dir != "" {
		dir = path.Dir(dir)
		if dir == "." || dir == "/" {
			dir = ""
		}
		out = append(out, dir)
	}
	return out
}

// load returns the parsed layout of dir, or nil when it has none.
// Parsed layouts are reused until the file changes on disk.
func (lc *LayoutComposer) load(dir string) (*layoutFile, error) {
	file := filepath.Join(lc.root, filepath.FromSlash(dir), LayoutFile)
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return nil, nil
	}

	lc.mu.RLock()
	cached, ok := lc.cache[file]
	lc.mu.RUnlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached, nil
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Join(ErrLayoutRender, err)
	}
	fm, body, err := splitFrontMatter(string(src))
	if err != nil {
		return nil, errors.Join(ErrLayoutRender, fmt.Errorf("%s: %w", file, err))
	}
	body, err = lc.transform(body, filepath.Dir(file))
	if err != nil {
		return nil, errors.Join(ErrLayoutRender, fmt.Errorf("%s: %w", file, err))
	}

	id := "/" + dir
	tmpl, err := template.New(id).Funcs(lc.funcs).Parse(body)
	if err != nil {
		return nil, errors.Join(ErrLayoutRender, err)
	}

	l := &layoutFile{
		id:      id,
		tmpl:    tmpl,
		modTime: info.ModTime(),
		props:   fm.Props,
		meta:    Metadata{Title: fm.Title, Description: fm.Description, Extra: fm.Extra},
	}
	lc.mu.Lock()
	lc.cache[file] = l
	lc.mu.Unlock()
	return l, nil
}

// splitFrontMatter separates a leading "---" YAML block from the template body.
func splitFrontMatter(src string) (layoutFrontMatter, string, error) {
	var fm layoutFrontMatter
	normalized := strings.ReplaceAll(src, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return fm, src, nil
	}
	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, src, nil
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, "", err
	}
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return fm, body, nil
}
