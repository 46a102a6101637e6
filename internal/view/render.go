package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// Renderer turns projections into markup.
type Renderer interface {
	// RenderMount writes the content of one mount point.
	RenderMount(w io.Writer, mount string, p *Page) error
	// RenderPage writes the complete viewer page.
	RenderPage(w io.Writer, p *Page) error
}

// HTMLRenderer renders with html/template.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the viewer templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("civcards").
		Funcs(template.FuncMap{"join": func(s []string) string { return strings.Join(s, ", ") }}).
		Parse(mountTemplates + pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// RenderMount implements [Renderer]. The three preview mounts all render
// the preview card.
func (r *HTMLRenderer) RenderMount(w io.Writer, mount string, p *Page) error {
	switch mount {
	case MountMajorGods, MountMinorGods, MountBuildings, MountUnitsTechs:
		return r.tmpl.ExecuteTemplate(w, mount, p)
	case MountBuildingsPane, MountUnitsTechsPane, MountModal:
		return r.tmpl.ExecuteTemplate(w, "preview", p.Preview)
	}
	return fmt.Errorf("unknown mount %q", mount)
}

type pageData struct {
	Page   *Page
	Style  template.CSS
	Script template.JS
}

// RenderPage implements [Renderer].
func (r *HTMLRenderer) RenderPage(w io.Writer, p *Page) error {
	return r.tmpl.ExecuteTemplate(w, "page", pageData{
		Page:   p,
		Style:  template.CSS(cssContent),
		Script: template.JS(jsContent),
	})
}

// Frame is the reply to a viewer event: fresh markup for the grid mounts
// and for the mount that shows the preview.
type Frame struct {
	Type    string            `json:"type"`
	Mounts  map[string]string `json:"mounts"`
	Preview string            `json:"preview"`
}

// FrameType tags frame messages on the event channel.
const FrameType = "frame"

// BuildFrame renders every grid mount and the preview mount of p.
func BuildFrame(r Renderer, p *Page) (*Frame, error) {
	f := &Frame{Type: FrameType, Mounts: make(map[string]string, len(GridMounts)+1), Preview: p.PreviewMount}
	var buf bytes.Buffer
	for _, mount := range append(GridMounts[:len(GridMounts):len(GridMounts)], p.PreviewMount) {
		buf.Reset()
		if err := r.RenderMount(&buf, mount, p); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", mount, err)
		}
		f.Mounts[mount] = buf.String()
	}
	return f, nil
}
