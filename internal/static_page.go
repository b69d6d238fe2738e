package internal

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// staticPages reads index.html and index.md route files.
type staticPages struct {
	md goldmark.Markdown
}

func newStaticPages() *staticPages {
	return &staticPages{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// load returns the page body and the metadata declared in its front matter.
// HTML files are returned as is; markdown files are converted to HTML.
func (s *staticPages) load(file string, kind PageKind) (string, Metadata, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return "", Metadata{}, errors.Join(ErrStaticPage, err)
	}
	if kind != PageMarkdown {
		return string(src), Metadata{}, nil
	}

	fm, body, err := splitFrontMatter(string(src))
	if err != nil {
		return "", Metadata{}, errors.Join(ErrStaticPage, fmt.Errorf("%s: %w", file, err))
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(body), &buf); err != nil {
		return "", Metadata{}, errors.Join(ErrStaticPage, fmt.Errorf("convert markdown %s: %w", file, err))
	}
	meta := Metadata{Title: fm.Title, Description: fm.Description, Extra: fm.Extra}
	return buf.String(), meta, nil
}
