package ui

import "testing"

func TestPanel_LayoutStacksWidgets(t *testing.T) {
	p := NewPanel("Herd", 10, 10, 200, 400)
	p.AddSection("Herder")
	b := p.AddButton("Reverse", nil)
	p.AddSection("Gizmos")
	c := p.AddCheckbox("Flee radius", true)
	s := p.AddSlider("Time scale", 0, 4, 1)

	if want := 10 + titleHeight + sectionHeight; b.Y != want {
		t.Errorf("button Y = %v; want %v", b.Y, want)
	}
	if want := b.Y + b.height() + sectionHeight; c.Y != want {
		t.Errorf("checkbox Y = %v; want %v", c.Y, want)
	}
	if s.Y <= c.Y+c.Size {
		t.Errorf("slider Y = %v overlaps the checkbox at %v", s.Y, c.Y)
	}
	if got := p.ContentHeight(); got != titleHeight+2*sectionHeight+b.height()+c.height()+s.height() {
		t.Errorf("ContentHeight = %v", got)
	}
	if b.X != 10+margin || b.Width != 200-2*margin {
		t.Errorf("button spans x=%v w=%v; want inside the panel margins", b.X, b.Width)
	}
}

func TestPanel_WidgetsWithoutSection(t *testing.T) {
	p := NewPanel("Herd", 0, 0, 100, 100)
	c := p.AddCheckbox("Orbit", false)
	if len(p.sections) != 1 {
		t.Fatalf("sections = %d; want an implicit one", len(p.sections))
	}
	if c.Y != titleHeight+sectionHeight {
		t.Errorf("checkbox Y = %v", c.Y)
	}
}

func TestPanel_Contains(t *testing.T) {
	p := NewPanel("Herd", 10, 10, 200, 400)
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{210, 410, true},
		{211, 50, false},
		{50, 5, false},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v; want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestSlider_ClampsValue(t *testing.T) {
	s := NewSlider(0, 0, 100, "Time scale", 0.5, 2, 5)
	if s.Value != 2 {
		t.Errorf("initial Value = %v; want clamped to 2", s.Value)
	}
	tests := []struct {
		x, want float64
	}{
		{0, 0.5},
		{50, 1.25},
		{100, 2},
	}
	for _, tt := range tests {
		s.Set(s.ValueAt(tt.x))
		if s.Value != tt.want {
			t.Errorf("value at x=%v = %v; want %v", tt.x, s.Value, tt.want)
		}
	}
	s.Set(-3)
	if s.Value != 0.5 {
		t.Errorf("Set(-3) = %v; want 0.5", s.Value)
	}
}

func TestButtonAndCheckbox_Contains(t *testing.T) {
	b := NewButton(10, 10, 50, 20, "Go", nil)
	if !b.Contains(35, 20) || b.Contains(61, 20) {
		t.Error("button hit test is wrong")
	}
	c := NewCheckbox(0, 0, "Orbit", false)
	if !c.Contains(30, 8) {
		t.Error("clicking the label should hit the checkbox")
	}
	if c.Contains(30, 17) {
		t.Error("point below the checkbox should miss")
	}
}
