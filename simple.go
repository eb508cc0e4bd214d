package ledstrip

import "github.com/pkg/errors"

//Simple is a single strip behind a reduced API for beginners.
/*
Pixels are numbered from 1 and brightness is given in percent. Create one Simple at program start
and pass it around; every method forwards to the underlying Strip.
*/
type Simple struct {
	strip *Strip
}

//NewSimple creates a ModeGRB strip of numPixels pixels on an expansion board port.
//If the port shares its lines with the display and drv is a PortEnabler, the port is enabled first.
func NewSimple(drv Driver, port Port, numPixels int) *Simple {
	pin, v := port.Pin()
	if v == Clamped {
		logger.Warn().Uint8("port", uint8(port)).Uint32("pin", pin).Msg("unknown port, using default pin")
	}
	if enabler, ok := drv.(PortEnabler); ok && port.SharesDisplay() {
		if err := enabler.EnablePort(port); err != nil {
			logger.Warn().Err(errors.Wrapf(err, "enable port %s", port)).Msg("port not enabled")
		}
	}
	return newSimple(New(drv, pin, numPixels, ModeGRB))
}

//NewAdvanced creates a strip of numPixels pixels in mode directly on pin.
func NewAdvanced(drv Driver, pin uint32, numPixels int, mode Mode) *Simple {
	return newSimple(New(drv, pin, numPixels, mode))
}

func newSimple(s *Strip) *Simple {
	s.SetBrightness(SimpleBrightness)
	return &Simple{strip: s}
}

//Strip returns the underlying Strip.
func (f *Simple) Strip() *Strip {
	return f.strip
}

//SetPixelColor sets pixel n (counting from 1) to c.
func (f *Simple) SetPixelColor(n int, c Color) Validation {
	return f.strip.SetPixelColor(n-1, c)
}

//ShowColor sets every pixel to c.
func (f *Simple) ShowColor(c Color) {
	f.strip.ShowColor(c)
}

//ShowRainbow spreads the hues from startHue to endHue over the strip.
func (f *Simple) ShowRainbow(startHue, endHue int) {
	f.strip.ShowRainbow(startHue, endHue)
}

//TurnOn restores the colors shown before TurnOff.
func (f *Simple) TurnOn() {
	f.strip.TurnOn()
}

//TurnOff blanks all pixels.
func (f *Simple) TurnOff() {
	f.strip.TurnOff()
}

//Clear blanks all pixels without switching the strip off.
func (f *Simple) Clear() {
	f.strip.Clear()
}

//LightAll shows the last ShowColor color again.
func (f *Simple) LightAll() {
	f.strip.LightAll()
}

//Hide blanks all pixels and forgets their colors.
func (f *Simple) Hide() {
	f.strip.Hide()
}

//Rotate moves the pixels forward by offset with wrap around.
func (f *Simple) Rotate(offset int) {
	f.strip.Rotate(offset)
}

//Shift moves the pixels forward by offset, filling with black.
func (f *Simple) Shift(offset int) {
	f.strip.Shift(offset)
}

//IsOn reports if the strip is switched on.
func (f *Simple) IsOn() bool {
	return f.strip.IsOn()
}

//IsOff is the opposite of IsOn.
func (f *Simple) IsOff() bool {
	return !f.strip.IsOn()
}

//IsColored reports if the whole strip shows c.
func (f *Simple) IsColored(c Color) bool {
	return f.strip.IsColored(c)
}

//SetBrightness sets the brightness in percent. Values outside [0,100] are clamped.
//100% corresponds to MaxSimpleBrightness.
func (f *Simple) SetBrightness(percent int) Validation {
	p, v := clampValue(0, 100, percent)
	f.strip.SetBrightness(p * MaxSimpleBrightness / 100)
	return v
}

//Brightness returns the brightness in percent, rounded down.
func (f *Simple) Brightness() int {
	return f.strip.Brightness() * 100 / MaxSimpleBrightness
}
