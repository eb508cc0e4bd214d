package ledstrip

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

//Strip is a view of length pixels starting at start of a pixel buffer.
/*
A Strip created by New owns a fresh buffer. Range returns views sharing the buffer of their
parent; changes through one view are visible through every other.

Strips are not safe for concurrent use. All views of one buffer have to be used from a single
goroutine.
*/
type Strip struct {
	buf         *pixelBuffer
	drv         Driver
	pin         uint32
	brightness  uint8
	start       int // first pixel of this view in buf
	length      int // number of pixels in this view
	mode        Mode
	matrixWidth int   // pixels per row, 0 if not a matrix
	stripColor  Color // color of the last ShowColor
	on          bool
	err         error
	log         zerolog.Logger
}

//New returns a Strip of numPixels pixels connected to pin.
/*
An invalid mode falls back to ModeGRB, a negative numPixels to 0 and a nil drv discards all
output. The data line is pulled low right away. Default brightness is DefaultBrightness.
*/
func New(drv Driver, pin uint32, numPixels int, mode Mode) *Strip {
	if drv == nil {
		drv = nopDriver{}
	}
	if !mode.valid() {
		mode = ModeGRB
	}
	if numPixels < 0 {
		numPixels = 0
	}
	s := &Strip{
		buf:        newPixelBuffer(numPixels, mode),
		drv:        drv,
		length:     numPixels,
		mode:       mode,
		stripColor: Orange,
		log:        logger.With().Uint32("pin", pin).Logger(),
	}
	s.SetBrightness(DefaultBrightness)
	s.setPin(pin)
	s.log.Debug().Int("pixels", numPixels).Stringer("mode", mode).Msg("strip created")
	return s
}

// The first transmission has to follow without any scheduling point in between.
func (s *Strip) setPin(pin uint32) {
	s.pin = pin
	if err := s.drv.WriteDigital(pin, false); err != nil {
		s.fail(errors.Wrapf(err, "claim pin %d", pin))
	}
}

func (s *Strip) fail(err error) {
	s.err = err
	s.log.Warn().Err(err).Msg("driver failed")
}

//Err returns the last error reported by the Driver, or nil.
func (s *Strip) Err() error {
	return s.err
}

//Show sends the transmit buffer to the Driver.
func (s *Strip) Show() {
	if err := s.drv.SendBuffer(s.buf.wire, s.pin); err != nil {
		s.fail(errors.Wrapf(err, "show pin %d", s.pin))
	}
}

//Length returns the number of pixels in the view.
func (s *Strip) Length() int {
	return s.length
}

//Mode returns the byte layout of the strip.
func (s *Strip) Mode() Mode {
	return s.mode
}

//Pin returns the output pin.
func (s *Strip) Pin() uint32 {
	return s.pin
}

//Brightness returns the current brightness (0-255).
func (s *Strip) Brightness() int {
	return int(s.brightness)
}

//StripColor returns the color of the last ShowColor call. Orange if there was none.
func (s *Strip) StripColor() Color {
	return s.stripColor
}

//IsOn reports if the strip was switched on. Clear does not reset it, TurnOff does.
func (s *Strip) IsOn() bool {
	return s.on
}

//IsLit reports if any pixel has a non black logical color.
func (s *Strip) IsLit() bool {
	return s.buf.lit(s.start, s.length)
}

//Pixel returns the logical color of pixel i. Out of range pixels are Black.
func (s *Strip) Pixel(i int) Color {
	if checkIndex(i, s.length) == Rejected {
		return Black
	}
	return s.buf.color(s.start + i)
}

//PixelWhite returns the logical white value of pixel i. Always 0 unless ModeRGBW.
func (s *Strip) PixelWhite(i int) uint8 {
	if checkIndex(i, s.length) == Rejected {
		return 0
	}
	return s.buf.white(s.start + i)
}

//Bytes returns a copy of the transmit bytes of this view.
func (s *Strip) Bytes() []byte {
	src := s.buf.wireRange(s.start, s.length)
	out := make([]byte, len(src))
	copy(out, src)
	return out
}

// paint writes c to pixel i without committing.
func (s *Strip) paint(i int, c Color) {
	if checkIndex(i, s.length) == Rejected {
		return
	}
	if c != Black {
		s.on = true
	}
	s.buf.write(s.start+i, c.R(), c.G(), c.B(), s.brightness)
}

func (s *Strip) fill(c Color) {
	for i := s.start; i < s.start+s.length; i++ {
		s.buf.write(i, c.R(), c.G(), c.B(), s.brightness)
	}
}

//ShowColor sets every pixel to c and shows the result.
func (s *Strip) ShowColor(c Color) {
	s.buf.zeroWire(s.start, s.length)
	s.stripColor = c
	if c != Black {
		s.on = true
	}
	s.fill(c)
	s.Show()
}

//SetPixelColor sets pixel offset to c and shows the result. Out of range offsets are ignored.
func (s *Strip) SetPixelColor(offset int, c Color) Validation {
	if v := checkIndex(offset, s.length); v == Rejected {
		return v
	}
	s.paint(offset, c)
	s.Show()
	return Accepted
}

//SetPixelWhite sets the white channel of pixel offset. Only for ModeRGBW strips.
func (s *Strip) SetPixelWhite(offset int, white int) Validation {
	if s.mode != ModeRGBW {
		return Rejected
	}
	if v := checkIndex(offset, s.length); v == Rejected {
		return v
	}
	w, v := clampValue(0, 255, white)
	if w > 0 {
		s.on = true
	}
	s.buf.writeWhite(s.start+offset, uint8(w), s.brightness)
	s.Show()
	return v
}

//ShowWhite sets the white channel of every pixel. Only for ModeRGBW strips.
func (s *Strip) ShowWhite(white int) Validation {
	if s.mode != ModeRGBW {
		return Rejected
	}
	w, v := clampValue(0, 255, white)
	if w > 0 {
		s.on = true
	}
	for i := s.start; i < s.start+s.length; i++ {
		s.buf.writeWhite(i, uint8(w), s.brightness)
	}
	s.Show()
	return v
}

//TurnOn restores the logical colors at the current brightness.
func (s *Strip) TurnOn() {
	s.on = true
	s.applyTrueColors()
}

//TurnOff blanks the strip but keeps the logical colors for TurnOn.
func (s *Strip) TurnOff() {
	s.on = false
	s.buf.zeroWire(s.start, s.length)
	s.Show()
}

//Clear blanks the strip. Unlike TurnOff the strip stays on, see IsOn.
func (s *Strip) Clear() {
	s.buf.zeroWire(s.start, s.length)
	s.Show()
}

//Hide blanks the strip and forgets the logical colors.
func (s *Strip) Hide() {
	s.on = false
	s.buf.zeroWire(s.start, s.length)
	s.buf.zeroLogical(s.start, s.length)
	s.Show()
}

//LightAll shows the color of the last ShowColor again.
func (s *Strip) LightAll() {
	s.ShowColor(s.stripColor)
}

//IsColored reports if every pixel shows color. An all black strip is never colored, not even Black.
func (s *Strip) IsColored(color Color) bool {
	if s.length == 0 || color == Black {
		return false
	}
	for i := s.start; i < s.start+s.length; i++ {
		if s.buf.color(i) != color {
			return false
		}
	}
	return true
}

//SetBrightness sets the brightness (0-255, masked to 8 bits).
//A strip that is on is re-scaled from the logical colors and shown. Setting the same value again does nothing.
func (s *Strip) SetBrightness(brightness int) {
	adjusted := uint8(brightness & 0xff)
	if adjusted == s.brightness {
		return
	}
	s.brightness = adjusted
	if s.on {
		s.applyTrueColors()
	}
}

func (s *Strip) applyTrueColors() {
	for i := s.start; i < s.start+s.length; i++ {
		s.buf.reapply(i, s.brightness)
	}
	s.log.Debug().Uint8("brightness", s.brightness).Msg("re-scaled")
	s.Show()
}

//Shift moves the pixels offset positions away from the first pixel. Vacated pixels turn black.
//Negative offsets move towards the first pixel.
func (s *Strip) Shift(offset int) {
	s.buf.shift(s.start, s.length, offset)
	s.Show()
}

//Rotate moves the pixels offset positions away from the first pixel. Pixels leaving the end wrap around.
func (s *Strip) Rotate(offset int) {
	s.buf.rotate(s.start, s.length, offset)
	s.Show()
}

//Range returns a view of length pixels starting at start, sharing this strip's buffer.
/*
start is clamped into the strip and length so that the view does not exceed it.
The view starts with the on flag and brightness of this strip. Both are its own from then on:
a later SetBrightness or TurnOff on this strip does not reach the view.
*/
func (s *Strip) Range(start, length int) *Strip {
	st, n, v := clampRange(s.length, start, length)
	if v == Clamped {
		s.log.Debug().Int("start", start).Int("length", length).Msg("range clamped")
	}
	return &Strip{
		buf:        s.buf,
		drv:        s.drv,
		pin:        s.pin,
		brightness: s.brightness,
		on:         s.on,
		start:      s.start + st,
		length:     n,
		mode:       s.mode,
		stripColor: s.stripColor,
		log:        s.log,
	}
}

//Power estimates the current draw in mA: 0.7 mA per pixel plus 0.048 mA per unit of transmit byte value.
func (s *Strip) Power() int {
	p := 0
	for _, b := range s.buf.wireRange(s.start, s.length) {
		p += int(b)
	}
	return s.length*7/10 + p*480/10000
}
