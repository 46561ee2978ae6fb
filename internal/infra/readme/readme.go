package readme

import (
	"bytes"
	"fmt"
	"os"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const DefaultStyle = "emacs"

// Renderer turns a markdown file into an HTML page fragment preceded by an
// inline <style> block for code highlighting.
type Renderer struct {
	path string
	md   goldmark.Markdown
	css  string
}

func New(path, style string) (*Renderer, error) {
	if style == "" {
		style = DefaultStyle
	}
	var css bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, styles.Get(style)); err != nil {
		return nil, fmt.Errorf("highlight css: %w", err)
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Renderer{path: path, md: md, css: css.String()}, nil
}

// Render reads the file on every call so edits show up without a restart.
func (r *Renderer) Render() ([]byte, error) {
	src, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read readme: %w", err)
	}
	return r.RenderSource(src)
}

func (r *Renderer) RenderSource(src []byte) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString("<style>")
	out.WriteString(r.css)
	out.WriteString("</style>")
	if err := r.md.Convert(src, &out); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return out.Bytes(), nil
}
