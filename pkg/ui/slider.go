package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal value picker dragged with the left mouse button.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
}

// NewSlider creates a slider with its value clamped to [min, max].
func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	s := &Slider{Label: label, Min: min, Max: max, X: x, Y: y, W: width, H: 12}
	s.Set(value)
	return s
}

// Set clamps v into [Min, Max] and stores it.
func (s *Slider) Set(v float64) {
	s.Value = max(s.Min, min(v, s.Max))
}

// ValueAt returns the value under screen column x.
func (s *Slider) ValueAt(x float64) float64 {
	if s.W <= 0 {
		return s.Min
	}
	p := (x - s.X) / s.W
	return s.Min + p*(s.Max-s.Min)
}

func (s *Slider) contains(x, y float64) bool {
	return x >= s.X && x <= s.X+s.W && y >= s.Y && y <= s.Y+s.H
}

// Update checks for mouse interaction
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if s.contains(float64(mx), float64(my)) {
		s.Set(s.ValueAt(float64(mx)))
	}
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %.2f", s.Label, s.Value), int(s.X), int(s.Y-16))

	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

func (s *Slider) height() float64 { return s.H + 24 }

func (s *Slider) setY(y float64) { s.Y = y + 16 }
