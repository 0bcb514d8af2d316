package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"
	"time"
)

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	ctBase  = "application/vnd.openxmlformats-officedocument.presentationml."
)

// Save writes the deck to path, creating parent directories.
func (p *Presentation) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create presentation dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create presentation: %w", err)
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write streams the deck as a zip package.
func (p *Presentation) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	parts, err := p.parts()
	if err != nil {
		return err
	}
	for _, part := range parts {
		fw, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create part %s: %w", part.name, err)
		}
		if _, err := fw.Write(part.data); err != nil {
			return fmt.Errorf("write part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close package: %w", err)
	}
	return nil
}

type part struct {
	name string
	data []byte
}

func (p *Presentation) parts() ([]part, error) {
	var parts []part
	add := func(name string, tmpl *template.Template, data any) error {
		var buf bytes.Buffer
		buf.WriteString(xml.Header)
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		parts = append(parts, part{name: name, data: buf.Bytes()})
		return nil
	}

	pkg := packageView{
		Slides: make([]int, len(p.slides)),
		Media:  p.media,
		Now:    time.Now().UTC().Format(time.RFC3339),
	}
	for i := range p.slides {
		pkg.Slides[i] = i + 1
	}

	static := []struct {
		name string
		tmpl *template.Template
	}{
		{"[Content_Types].xml", contentTypesTmpl},
		{"_rels/.rels", rootRelsTmpl},
		{"docProps/app.xml", appTmpl},
		{"docProps/core.xml", coreTmpl},
		{"ppt/presentation.xml", presentationTmpl},
		{"ppt/_rels/presentation.xml.rels", presentationRelsTmpl},
		{"ppt/presProps.xml", presPropsTmpl},
		{"ppt/viewProps.xml", viewPropsTmpl},
		{"ppt/tableStyles.xml", tableStylesTmpl},
		{"ppt/theme/theme1.xml", themeTmpl},
		{"ppt/slideMasters/slideMaster1.xml", masterTmpl},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", masterRelsTmpl},
		{"ppt/slideLayouts/slideLayout1.xml", titleLayoutTmpl},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", layoutRelsTmpl},
		{"ppt/slideLayouts/slideLayout2.xml", titleOnlyLayoutTmpl},
		{"ppt/slideLayouts/_rels/slideLayout2.xml.rels", layoutRelsTmpl},
	}
	for _, s := range static {
		if err := add(s.name, s.tmpl, pkg); err != nil {
			return nil, err
		}
	}

	for i, s := range p.slides {
		view := s.view()
		if err := add(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slideTmpl, view); err != nil {
			return nil, err
		}
		if err := add(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRelsTmpl, view); err != nil {
			return nil, err
		}
	}

	for _, m := range p.media {
		parts = append(parts, part{name: "ppt/media/" + m.name, data: m.data})
	}
	return parts, nil
}

type packageView struct {
	Slides []int
	Media  []mediaFile
	Now    string
}

type slideView struct {
	Layout int
	Title  string
	Sub    string
	Shapes []shapeView
	Images []imageRel
}

type shapeView struct {
	Kind string
	ID   int
	Name string
	Rel  string
	Box  Rect
}

type imageRel struct {
	ID     string
	Target string
}

func (s *Slide) view() slideView {
	v := slideView{Layout: int(s.layout), Title: s.title, Sub: s.subtitle}
	// id 1 is the group shape of the tree
	id := 2
	for _, sh := range s.shapes {
		switch pic := sh.(type) {
		case titleShape:
			v.Shapes = append(v.Shapes, shapeView{Kind: "title", ID: id, Name: fmt.Sprintf("Title %d", id-1)})
		case subtitleShape:
			v.Shapes = append(v.Shapes, shapeView{Kind: "subtitle", ID: id, Name: fmt.Sprintf("Subtitle %d", id-1)})
		case *Picture:
			rel := fmt.Sprintf("rId%d", len(v.Images)+2)
			v.Images = append(v.Images, imageRel{ID: rel, Target: s.pres.media[pic.media].name})
			v.Shapes = append(v.Shapes, shapeView{Kind: "picture", ID: id, Name: pic.name, Rel: rel, Box: pic.box})
		}
		id++
	}
	return v
}

func escape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var funcs = template.FuncMap{
	"x":   escape,
	"add": func(a, b int) int { return a + b },
}

func mustTmpl(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}
