package render

// Rect is an axis-aligned rectangle. Renderers use it in figure fractions
// (0..1) or in layout units; Sub converts fractions to canvas coordinates.
type Rect struct {
	Left, Right float64
	Bottom, Top float64
}

// RectXYWH builds a Rect from its lower-left corner and size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Right: x + w, Bottom: y, Top: y + h}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return (r.Bottom + r.Top) / 2 }

// Inset shrinks the rectangle by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{Left: r.Left + d, Right: r.Right - d, Bottom: r.Bottom + d, Top: r.Top - d}
}

// Within maps r, given in fractions of outer, to outer's coordinates.
func (r Rect) Within(outer Rect) Rect {
	return Rect{
		Left:   outer.Left + r.Left*outer.Width(),
		Right:  outer.Left + r.Right*outer.Width(),
		Bottom: outer.Bottom + r.Bottom*outer.Height(),
		Top:    outer.Bottom + r.Top*outer.Height(),
	}
}
