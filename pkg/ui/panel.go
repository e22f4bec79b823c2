// Package ui holds the small ebiten widgets of the simulation viewer.
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	margin        = 10.0
)

// Widget is anything the panel can lay out in a column.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	height() float64
	setY(y float64)
}

type section struct {
	title   string
	widgets []Widget
}

// Panel lays out sections of widgets in a fixed column on the left of the screen.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64

	// Styling
	BGColor      color.RGBA
	BorderColor  color.RGBA
	SectionColor color.RGBA

	sections []*section
}

// NewPanel creates an empty panel.
func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:        title,
		X:            x,
		Y:            y,
		Width:        width,
		Height:       height,
		BGColor:      color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor:  color.RGBA{R: 100, G: 100, B: 110, A: 255},
		SectionColor: color.RGBA{R: 60, G: 60, B: 70, A: 255},
	}
}

// AddSection starts a new section; following widgets are added to it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, &section{title: title})
}

func (p *Panel) current() *section {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	return p.sections[len(p.sections)-1]
}

// AddButton adds a full width button to the current section.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+margin, 0, p.Width-2*margin, 22, label, onClick)
	p.add(b)
	return b
}

// AddCheckbox adds a checkbox to the current section.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+margin, 0, label, value)
	p.add(c)
	return c
}

// AddSlider adds a slider to the current section.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+margin, 0, p.Width-2*margin, label, min, max, value)
	p.add(s)
	return s
}

func (p *Panel) add(w Widget) {
	s := p.current()
	s.widgets = append(s.widgets, w)
	p.layout()
}

// layout assigns the vertical position of every widget.
func (p *Panel) layout() {
	y := p.Y + titleHeight
	for _, s := range p.sections {
		y += sectionHeight
		for _, w := range s.widgets {
			w.setY(y)
			y += w.height()
		}
	}
}

// ContentHeight returns the height needed to show every widget.
func (p *Panel) ContentHeight() float64 {
	h := titleHeight
	for _, s := range p.sections {
		h += sectionHeight
		for _, w := range s.widgets {
			h += w.height()
		}
	}
	return h
}

// Contains reports whether the screen point lies on the panel.
func (p *Panel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

// Update handles input for all widgets
func (p *Panel) Update() {
	for _, s := range p.sections {
		for _, w := range s.widgets {
			w.Update()
		}
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)

	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	y := p.Y + titleHeight
	for _, s := range p.sections {
		vector.FillRect(screen,
			float32(p.X+5), float32(y),
			float32(p.Width-10), 20,
			p.SectionColor, true)
		ebitenutil.DebugPrintAt(screen, s.title, int(p.X+margin), int(y+2))
		y += sectionHeight
		for _, w := range s.widgets {
			w.Draw(screen)
			y += w.height()
		}
	}
}
