package ledstrip

//HueDirection selects the way around the color wheel for ShowRainbowDirection.
type HueDirection uint8

//Valid HueDirections
const (
	Clockwise HueDirection = iota
	CounterClockwise
	Shortest
)

//ShowRainbow spreads the hues from startHue to endHue clockwise over the strip.
func (s *Strip) ShowRainbow(startHue, endHue int) {
	s.ShowRainbowDirection(startHue, endHue, Clockwise)
}

//ShowRainbowDirection spreads the hues from startHue to endHue over the strip.
//The first and the last pixel get exactly startHue and endHue.
func (s *Strip) ShowRainbowDirection(startHue, endHue int, dir HueDirection) {
	const (
		saturation = 100
		luminance  = 50
	)
	steps := s.length
	if steps <= 0 {
		return
	}

	// hue steps are kept in 1/100 degree
	distCW := ((endHue + 360) - startHue) % 360
	stepCW := (distCW * 100) / steps
	distCCW := ((startHue + 360) - endHue) % 360
	stepCCW := -(distCCW * 100) / steps
	var step int
	switch dir {
	case Clockwise:
		step = stepCW
	case CounterClockwise:
		step = stepCCW
	default:
		step = stepCCW
		if distCW < distCCW {
			step = stepCW
		}
	}

	if steps == 1 {
		s.paint(0, HSL(startHue+step/100, saturation, luminance))
	} else {
		s.paint(0, HSL(startHue, saturation, luminance))
		for i := 1; i < steps-1; i++ {
			h := (startHue*100+i*step)/100 + 360
			s.paint(i, HSL(h, saturation, luminance))
		}
		s.paint(steps-1, HSL(endHue, saturation, luminance))
	}
	s.Show()
}

//ShowBarGraph lights the strip proportionally to value out of high with a blue to red ramp.
/*
A high of 0 or less cannot be plotted; the first pixel is set to Yellow instead and Clamped is
returned. A value that rounds down to nothing shows a dim yellow first pixel.
*/
func (s *Strip) ShowBarGraph(value, high int) Validation {
	if high <= 0 {
		s.paint(0, Yellow)
		for i := 1; i < s.length; i++ {
			s.paint(i, Black)
		}
		s.Show()
		return Clamped
	}

	value = abs(value)
	n := s.length
	last := n - 1
	if last < 1 {
		last = 1
	}
	v := value * n / high
	if v == 0 {
		s.paint(0, 0x666600)
		for i := 1; i < n; i++ {
			s.paint(i, Black)
		}
	} else {
		for i := 0; i < n; i++ {
			if i <= v {
				b := i * 255 / last
				s.paint(i, RGB(b, 0, 255-b))
			} else {
				s.paint(i, Black)
			}
		}
	}
	s.Show()
	return Accepted
}

//EaseBrightness dims the strip towards both ends with a quadratic curve.
//Only the transmit bytes are changed, call Show to display them.
func (s *Strip) EaseBrightness() {
	n := s.length
	mid := n / 2
	if mid == 0 {
		return
	}
	for k := 0; k < n; k++ {
		d := k
		if k > mid {
			d = n - 1 - k
		}
		s.buf.scaleWire(s.start+k, 255*d*d/(mid*mid))
	}
}

//SetMatrixWidth treats the strip as a matrix with width pixels per row. width is capped to the length.
func (s *Strip) SetMatrixWidth(width int) {
	if width > s.length {
		width = s.length
	}
	s.matrixWidth = width
}

//MatrixWidth returns the row width, 0 if the strip is not a matrix.
func (s *Strip) MatrixWidth() int {
	return s.matrixWidth
}

//SetMatrixColor sets the pixel in column x and row y to c and shows the result.
//Ignored if the strip is not a matrix or x, y are outside of it.
func (s *Strip) SetMatrixColor(x, y int, c Color) Validation {
	if s.matrixWidth <= 0 {
		return Rejected
	}
	rows := s.length / s.matrixWidth
	if x < 0 || x >= s.matrixWidth || y < 0 || y >= rows {
		return Rejected
	}
	return s.SetPixelColor(x+y*s.matrixWidth, c)
}
