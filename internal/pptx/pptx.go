// Package pptx writes small PresentationML decks: a title slide layout and a
// title-only layout with pictures, which is all a stock report needs.
//
// The package produces one slide master, two layouts and a single theme. Slide
// size is 10in x 7.5in (4:3), matching the stock template of desktop
// presentation tools.
package pptx

import (
	"fmt"
	"os"
	"path/filepath"
)

// EMU is the OOXML length unit, 914400 per inch.
type EMU int64

const emuPerInch = 914400

func Inches(in float64) EMU { return EMU(in * emuPerInch) }

const (
	SlideWidth  EMU = 10 * emuPerInch
	SlideHeight EMU = 7.5 * emuPerInch
)

// Rect positions a shape on the slide. X and Y may be negative.
type Rect struct {
	X, Y, W, H EMU
}

type layoutKind int

const (
	layoutTitle layoutKind = iota + 1
	layoutTitleOnly
)

type Presentation struct {
	slides []*Slide
	media  []mediaFile
}

type mediaFile struct {
	name string
	data []byte
}

// Slide holds its shapes in z-order: earlier shapes are drawn behind later ones.
type Slide struct {
	pres     *Presentation
	layout   layoutKind
	title    string
	subtitle string
	shapes   []shape
}

type shape interface{ isShape() }

type titleShape struct{}

type subtitleShape struct{}

// Picture is an embedded image on a slide.
type Picture struct {
	slide *Slide
	name  string
	media int
	box   Rect
}

func (titleShape) isShape()    {}
func (subtitleShape) isShape() {}
func (*Picture) isShape()      {}

func New() *Presentation {
	return &Presentation{}
}

func (p *Presentation) SlideCount() int { return len(p.slides) }

// AddTitleSlide appends a slide using the title layout.
func (p *Presentation) AddTitleSlide(title, subtitle string) *Slide {
	s := &Slide{
		pres:     p,
		layout:   layoutTitle,
		title:    title,
		subtitle: subtitle,
		shapes:   []shape{titleShape{}, subtitleShape{}},
	}
	p.slides = append(p.slides, s)
	return s
}

// AddTitleOnlySlide appends a slide with just a title placeholder.
func (p *Presentation) AddTitleOnlySlide(title string) *Slide {
	s := &Slide{
		pres:   p,
		layout: layoutTitleOnly,
		title:  title,
		shapes: []shape{titleShape{}},
	}
	p.slides = append(p.slides, s)
	return s
}

// AddPicture embeds the PNG at path, stretched to box, on top of the existing
// shapes.
func (s *Slide) AddPicture(path string, box Rect) (*Picture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read picture: %w", err)
	}
	return s.AddPictureData(filepath.Base(path), data, box), nil
}

// AddPictureData is AddPicture for an in-memory PNG.
func (s *Slide) AddPictureData(name string, png []byte, box Rect) *Picture {
	s.pres.media = append(s.pres.media, mediaFile{
		name: fmt.Sprintf("image%d.png", len(s.pres.media)+1),
		data: png,
	})
	pic := &Picture{slide: s, name: name, media: len(s.pres.media) - 1, box: box}
	s.shapes = append(s.shapes, pic)
	return pic
}

// SendToBack moves the picture behind every other shape on its slide.
func (p *Picture) SendToBack() {
	shapes := p.slide.shapes
	for i, sh := range shapes {
		if sh == shape(p) {
			copy(shapes[1:i+1], shapes[:i])
			shapes[0] = p
			return
		}
	}
}

// ShapeOrder lists the slide's shapes back to front, as "title", "subtitle"
// or the picture name.
func (s *Slide) ShapeOrder() []string {
	out := make([]string, 0, len(s.shapes))
	for _, sh := range s.shapes {
		switch v := sh.(type) {
		case titleShape:
			out = append(out, "title")
		case subtitleShape:
			out = append(out, "subtitle")
		case *Picture:
			out = append(out, v.name)
		}
	}
	return out
}
