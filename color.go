package ledstrip

import "image/color"

//Color is a packed 24 bit color. Format 0xRRGGBB
type Color uint32

// Named colors
const (
	White  Color = 0xAAAAAA
	Red    Color = 0xFF0000
	Green  Color = 0x00FF00
	Blue   Color = 0x0000FF
	Orange Color = 0xFF3300
	Yellow Color = 0xAA6600
	Purple Color = 0x8A2BE2
	Black  Color = 0x000000
)

//RGB packs red, green and blue into a Color. Every channel is masked to 8 bits.
func RGB(red, green, blue int) Color {
	return Color((red&0xff)<<16 | (green&0xff)<<8 | blue&0xff)
}

//ColorFrom turns a color.Color into a Color. Alpha is ignored.
func ColorFrom(c color.Color) Color {
	// A color's RGBA method returns values in the range [0, 65535]
	red, green, blue, _ := c.RGBA()
	return Color((red>>8)<<16 | (green>>8)<<8 | blue>>8)
}

//R returns the red channel.
func (c Color) R() uint8 {
	return uint8(c >> 16)
}

//G returns the green channel.
func (c Color) G() uint8 {
	return uint8(c >> 8)
}

//B returns the blue channel.
func (c Color) B() uint8 {
	return uint8(c)
}

//RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R(), G: c.G(), B: c.B(), A: 0xff}.RGBA()
}

//HSL converts hue (degrees), saturation and luminosity (percent) into a Color.
/*
Only integer math is used; chroma and the second largest component are kept as 8 bit fractions.
Negative hues wrap around. Saturation and luminosity are clamped to [0,100] and every resulting
channel saturates at 255.
*/
func HSL(h, s, l int) Color {
	h = ((h % 360) + 360) % 360
	s = clamp(0, 100, s)
	l = clamp(0, 100, l)

	c := ((100 - abs(2*l-100)) * s << 8) / 10000 // chroma [0,256]
	h1 := h / 60                                 // sector [0,5]
	h2 := (h - h1*60) * 256 / 60                 // position in sector [0,255]
	temp := abs(((h1 % 2) << 8) + h2 - 256)
	x := (c * (256 - temp)) >> 8 // second largest component

	var r, g, b int
	switch h1 {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	case 5:
		r, g, b = c, 0, x
	}
	m := ((l*2<<8)/100 - c) / 2
	return RGB(clamp(0, 255, r+m), clamp(0, 255, g+m), clamp(0, 255, b+m))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(low, high, v int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
