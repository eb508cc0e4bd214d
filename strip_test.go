package ledstrip_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DerLukas15/ledstrip"
	"github.com/DerLukas15/ledstrip/driver/sim"
)

// newStrip returns a strip at full brightness and its driver with no frames recorded yet.
func newStrip(t *testing.T, numPixels int, mode ledstrip.Mode) (*ledstrip.Strip, *sim.Driver) {
	t.Helper()
	d := sim.New(zerolog.Nop())
	s := ledstrip.New(d, 7, numPixels, mode)
	s.SetBrightness(255)
	require.Equal(t, 0, d.Count())
	return s, d
}

func repeat(pixel []byte, n int) []byte {
	var out []byte
	for i := 0; i < n; i++ {
		out = append(out, pixel...)
	}
	return out
}

func TestNewClaimsPin(t *testing.T) {
	d := sim.New(zerolog.Nop())
	s := ledstrip.New(d, 18, 4, ledstrip.ModeGRB)
	assert.Equal(t, []sim.PinWrite{{Pin: 18, High: false}}, d.Pins)
	assert.Equal(t, 0, d.Count())
	assert.Equal(t, ledstrip.DefaultBrightness, s.Brightness())
	assert.Equal(t, ledstrip.Orange, s.StripColor())
	assert.False(t, s.IsOn())
	assert.Equal(t, make([]byte, 12), s.Bytes())
}

func TestNewFallbacks(t *testing.T) {
	s := ledstrip.New(nil, 0, -3, ledstrip.Mode(0))
	assert.Equal(t, ledstrip.ModeGRB, s.Mode())
	assert.Equal(t, 0, s.Length())
	s.ShowColor(ledstrip.Red)
	s.Rotate(3)
	s.Shift(1)
	assert.Empty(t, s.Bytes())
	assert.False(t, s.IsColored(ledstrip.Red))
	assert.NoError(t, s.Err())
}

func TestShowColorPlainRGB(t *testing.T) {
	s, d := newStrip(t, 3, ledstrip.ModeRGB)
	s.ShowColor(ledstrip.RGB(255, 0, 0))

	assert.Equal(t, repeat([]byte{255, 0, 0}, 3), s.Bytes())
	for i := 0; i < 3; i++ {
		assert.Equal(t, ledstrip.Color(0xFF0000), s.Pixel(i))
	}
	f, ok := d.Last()
	require.True(t, ok)
	assert.Equal(t, uint32(7), f.Pin)
	assert.Equal(t, s.Bytes(), f.Data)
	assert.Equal(t, 1, d.Count())
	assert.True(t, s.IsOn())
	assert.Equal(t, ledstrip.Color(0xFF0000), s.StripColor())
}

func TestShowColorGRB(t *testing.T) {
	s, _ := newStrip(t, 2, ledstrip.ModeGRB)
	s.ShowColor(ledstrip.RGB(1, 2, 3))
	assert.Equal(t, repeat([]byte{2, 1, 3}, 2), s.Bytes())
}

func TestShowBlackDoesNotTurnOn(t *testing.T) {
	s, _ := newStrip(t, 2, ledstrip.ModeGRB)
	s.ShowColor(ledstrip.Black)
	assert.False(t, s.IsOn())
	assert.False(t, s.IsLit())
}

func TestDefaultBrightnessScales(t *testing.T) {
	d := sim.New(zerolog.Nop())
	s := ledstrip.New(d, 0, 2, ledstrip.ModeRGB)
	s.ShowColor(ledstrip.RGB(255, 255, 255))
	assert.Equal(t, repeat([]byte{9, 9, 9}, 2), s.Bytes())
	assert.Equal(t, ledstrip.Color(0xFFFFFF), s.Pixel(1))
}

func TestSetBrightnessRescalesFromTrueColors(t *testing.T) {
	s, d := newStrip(t, 3, ledstrip.ModeRGB)
	s.ShowColor(ledstrip.RGB(255, 0, 0))

	s.SetBrightness(128)
	assert.Equal(t, repeat([]byte{127, 0, 0}, 3), s.Bytes())
	assert.Equal(t, ledstrip.Color(0xFF0000), s.Pixel(0))
	assert.Equal(t, 2, d.Count())

	// same value again is a no-op
	s.SetBrightness(128)
	assert.Equal(t, 2, d.Count())
	s.SetBrightness(128 + 256)
	assert.Equal(t, 2, d.Count())

	// no compounding of the rounding error
	s.SetBrightness(64)
	s.SetBrightness(255)
	assert.Equal(t, repeat([]byte{255, 0, 0}, 3), s.Bytes())
}

func TestSetBrightnessWhileOff(t *testing.T) {
	s, d := newStrip(t, 2, ledstrip.ModeRGB)
	s.ShowColor(ledstrip.RGB(200, 100, 0))
	s.TurnOff()
	n := d.Count()

	s.SetBrightness(128)
	assert.Equal(t, n, d.Count())
	assert.Equal(t, make([]byte, 6), s.Bytes())

	s.TurnOn()
	assert.Equal(t, repeat([]byte{100, 50, 0}, 2), s.Bytes())
	assert.True(t, s.IsOn())
}

func TestSetPixelColorOutOfRange(t *testing.T) {
	s, d := newStrip(t, 2, ledstrip.ModeRGB)
	before := s.Bytes()

	assert.Equal(t, ledstrip.Rejected, s.SetPixelColor(5, ledstrip.Red))
	assert.Equal(t, ledstrip.Rejected, s.SetPixelColor(-1, ledstrip.Red))
	assert.Equal(t, ledstrip.Rejected, s.SetPixelColor(2, ledstrip.Red))

	assert.Equal(t, before, s.Bytes())
	assert.Equal(t, 0, d.Count())
	assert.False(t, s.IsOn())
	assert.NoError(t, s.Err())
}

func TestSetPixelColor(t *testing.T) {
	s, d := newStrip(t, 3, ledstrip.ModeGRB)
	assert.Equal(t, ledstrip.Accepted, s.SetPixelColor(1, ledstrip.RGB(10, 20, 30)))
	assert.Equal(t, []byte{0, 0, 0, 20, 10, 30, 0, 0, 0}, s.Bytes())
	assert.Equal(t, 1, d.Count())
	assert.True(t, s.IsOn())
	assert.True(t, s.IsLit())
}

func TestTurnOffAndClearDiffer(t *testing.T) {
	s, _ := newStrip(t, 3, ledstrip.ModeRGB)
	s.ShowColor(ledstrip.Blue)

	s.Clear()
	assert.Equal(t, make([]byte, 9), s.Bytes())
	assert.True(t, s.IsOn(), "Clear keeps the strip on")
	assert.True(t, s.IsLit())

	s.ShowColor(ledstrip.Blue)
	s.TurnOff()
	assert.Equal(t, make([]byte, 9), s.Bytes())
	assert.False(t, s.IsOn(), "TurnOff switches the strip off")
	assert.Equal(t, ledstrip.Blue, s.Pixel(2))

	s.TurnOn()
	assert.Equal(t, repeat([]byte{0, 0, 255}, 3), s.Bytes())
}

func TestHideForgetsColors(t *testing.T) {
	s, _ := newStrip(t, 2, ledstrip.ModeRGB)
	s.ShowColor(ledstrip.Green)
	s.Hide()
	assert.False(t, s.IsOn())
	assert.False(t, s.IsLit())
	assert.Equal(t, ledstrip.Black, s.Pixel(0))

	s.TurnOn()
	assert.Equal(t, make([]byte, 6), s.Bytes())
}

func TestLightAll(t *testing.T) {
	s, _ := newStrip(t, 2, ledstrip.ModeRGB)
	s.LightAll()
	assert.True(t, s.IsColored(ledstrip.Orange))

	s.ShowColor(ledstrip.Purple)
	s.TurnOff()
	s.LightAll()
	assert.True(t, s.IsColored(ledstrip.Purple))
}

func TestIsColored(t *testing.T) {
	s, _ := newStrip(t, 3, ledstrip.ModeGRB)
	for _, c := range []ledstrip.Color{ledstrip.Black, ledstrip.Red, ledstrip.White} {
		assert.False(t, s.IsColored(c), "all black strip, %06x", uint32(c))
	}

	s.ShowColor(ledstrip.Red)
	assert.True(t, s.IsColored(ledstrip.Red))
	assert.False(t, s.IsColored(ledstrip.Blue))
	assert.False(t, s.IsColored(ledstrip.Black))

	// logical colors count, not what is currently transmitted
	s.SetBrightness(3)
	assert.True(t, s.IsColored(ledstrip.Red))
	s.TurnOff()
	assert.True(t, s.IsColored(ledstrip.Red))

	s.SetPixelColor(1, ledstrip.Black)
	assert.False(t, s.IsColored(ledstrip.Red), "partially colored")

	s.SetPixelColor(1, ledstrip.Blue)
	assert.False(t, s.IsColored(ledstrip.Red), "mixed colors")
}

func fillRamp(s *ledstrip.Strip) {
	for i := 0; i < s.Length(); i++ {
		s.SetPixelColor(i, ledstrip.RGB(100+50*i, 0, 0))
	}
}

func reds(s *ledstrip.Strip) []int {
	out := make([]int, s.Length())
	for i := range out {
		out[i] = int(s.Pixel(i).R())
	}
	return out
}

func TestShift(t *testing.T) {
	s, _ := newStrip(t, 4, ledstrip.ModeRGB)
	fillRamp(s)

	s.Shift(1)
	assert.Equal(t, []int{0, 100, 150, 200}, reds(s))
	assert.Equal(t, []byte{0, 0, 0, 100, 0, 0, 150, 0, 0, 200, 0, 0}, s.Bytes())

	// transmit bytes follow the shifted logical colors
	s.SetBrightness(128)
	assert.Equal(t, []byte{0, 0, 0, 50, 0, 0, 75, 0, 0, 100, 0, 0}, s.Bytes())

	s.Shift(-2)
	assert.Equal(t, []int{150, 200, 0, 0}, reds(s))
}

func TestShiftBeyondLength(t *testing.T) {
	for _, k := range []int{4, 5, 100, -4, -100} {
		s, _ := newStrip(t, 4, ledstrip.ModeRGBW)
		fillRamp(s)
		s.Shift(k)
		assert.Equal(t, make([]byte, 16), s.Bytes(), "shift %d", k)
		assert.False(t, s.IsLit(), "shift %d", k)
	}
}

func TestRotate(t *testing.T) {
	s, _ := newStrip(t, 4, ledstrip.ModeRGB)
	fillRamp(s)

	s.Rotate(1)
	assert.Equal(t, []int{250, 100, 150, 200}, reds(s))
	s.Rotate(-1)
	assert.Equal(t, []int{100, 150, 200, 250}, reds(s))
	s.Rotate(5)
	assert.Equal(t, []int{250, 100, 150, 200}, reds(s))
}

func TestRotateRestores(t *testing.T) {
	for k := 0; k < 5; k++ {
		s, _ := newStrip(t, 5, ledstrip.ModeGRB)
		fillRamp(s)
		orig := s.Bytes()
		s.Rotate(k)
		s.Rotate(s.Length() - k)
		assert.Equal(t, orig, s.Bytes(), "rotate %d", k)
		assert.Equal(t, []int{100, 150, 200, 250, 44}, reds(s), "rotate %d", k)
	}
}

func TestRangeSharesBuffer(t *testing.T) {
	s, _ := newStrip(t, 6, ledstrip.ModeRGB)
	r := s.Range(2, 3)
	assert.Equal(t, 3, r.Length())

	r.SetPixelColor(0, ledstrip.Green)
	assert.Equal(t, ledstrip.Green, s.Pixel(2))

	s.SetPixelColor(4, ledstrip.Blue)
	assert.Equal(t, ledstrip.Blue, r.Pixel(2))

	assert.Equal(t, ledstrip.Rejected, r.SetPixelColor(3, ledstrip.Red))
	assert.Equal(t, ledstrip.Black, s.Pixel(5))
}

func TestRangeInheritsState(t *testing.T) {
	s, _ := newStrip(t, 4, ledstrip.ModeRGB)
	s.ShowColor(ledstrip.Red)

	r := s.Range(1, 2)
	assert.True(t, r.IsOn())
	assert.Equal(t, 255, r.Brightness())

	r.SetBrightness(128)
	assert.Equal(t, []byte{255, 0, 0, 127, 0, 0, 127, 0, 0, 255, 0, 0}, s.Bytes())

	// brightness is per view after creation
	s.SetBrightness(64)
	r.SetPixelColor(0, ledstrip.Red)
	assert.Equal(t, []byte{63, 0, 0, 127, 0, 0, 63, 0, 0, 63, 0, 0}, s.Bytes())
}

func TestRangeClamps(t *testing.T) {
	s, _ := newStrip(t, 6, ledstrip.ModeRGB)

	r := s.Range(10, 5)
	assert.Equal(t, 1, r.Length())
	r.SetPixelColor(0, ledstrip.Red)
	assert.Equal(t, ledstrip.Red, s.Pixel(5))

	r = s.Range(-3, 2)
	assert.Equal(t, 2, r.Length())
	r.SetPixelColor(0, ledstrip.Blue)
	assert.Equal(t, ledstrip.Blue, s.Pixel(0))

	// nested ranges stay inside their parent
	inner := s.Range(1, 4).Range(2, 10)
	assert.Equal(t, 2, inner.Length())
	inner.SetPixelColor(1, ledstrip.Green)
	assert.Equal(t, ledstrip.Green, s.Pixel(4))
}

func TestRangeOperationsStayInRange(t *testing.T) {
	s, _ := newStrip(t, 5, ledstrip.ModeRGB)
	s.ShowColor(ledstrip.Red)

	r := s.Range(1, 2)
	r.Clear()
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 0, 0, 0, 0, 255, 0, 0, 255, 0, 0}, s.Bytes())

	r.TurnOn()
	r.ShowColor(ledstrip.Blue)
	r.Shift(1)
	assert.Equal(t, []ledstrip.Color{ledstrip.Red, ledstrip.Black, ledstrip.Blue, ledstrip.Red, ledstrip.Red},
		[]ledstrip.Color{s.Pixel(0), s.Pixel(1), s.Pixel(2), s.Pixel(3), s.Pixel(4)})

	r.SetBrightness(128)
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 0, 0, 0, 127, 255, 0, 0, 255, 0, 0}, s.Bytes())
}

func TestRGBWWhiteChannel(t *testing.T) {
	s, _ := newStrip(t, 2, ledstrip.ModeRGBW)
	s.ShowColor(ledstrip.RGB(1, 2, 3))
	assert.Equal(t, repeat([]byte{2, 1, 3, 0}, 2), s.Bytes())

	assert.Equal(t, ledstrip.Accepted, s.SetPixelWhite(0, 50))
	assert.Equal(t, []byte{2, 1, 3, 50, 2, 1, 3, 0}, s.Bytes())
	assert.Equal(t, uint8(50), s.PixelWhite(0))

	s.SetBrightness(128)
	assert.Equal(t, []byte{1, 0, 1, 25, 1, 0, 1, 0}, s.Bytes())

	assert.Equal(t, ledstrip.Clamped, s.ShowWhite(300))
	assert.Equal(t, uint8(255), s.PixelWhite(1))
	assert.Equal(t, ledstrip.Rejected, s.SetPixelWhite(2, 10))
}

func TestWhiteNeedsRGBW(t *testing.T) {
	s, d := newStrip(t, 2, ledstrip.ModeRGB)
	assert.Equal(t, ledstrip.Rejected, s.SetPixelWhite(0, 10))
	assert.Equal(t, ledstrip.Rejected, s.ShowWhite(10))
	assert.Equal(t, 0, d.Count())
	assert.Equal(t, uint8(0), s.PixelWhite(0))
}

func TestPower(t *testing.T) {
	s, _ := newStrip(t, 3, ledstrip.ModeRGB)
	assert.Equal(t, 2, s.Power())
	s.ShowColor(ledstrip.RGB(255, 255, 255))
	assert.Equal(t, 2+110, s.Power())
}

func TestMatrix(t *testing.T) {
	s, _ := newStrip(t, 6, ledstrip.ModeRGB)
	assert.Equal(t, ledstrip.Rejected, s.SetMatrixColor(0, 0, ledstrip.Red))

	s.SetMatrixWidth(3)
	assert.Equal(t, ledstrip.Accepted, s.SetMatrixColor(1, 1, ledstrip.Red))
	assert.Equal(t, ledstrip.Red, s.Pixel(4))
	assert.Equal(t, ledstrip.Rejected, s.SetMatrixColor(3, 0, ledstrip.Red))
	assert.Equal(t, ledstrip.Rejected, s.SetMatrixColor(0, 2, ledstrip.Red))
	assert.Equal(t, ledstrip.Rejected, s.SetMatrixColor(-1, 0, ledstrip.Red))

	s.SetMatrixWidth(10)
	assert.Equal(t, 6, s.MatrixWidth())
}

func TestDriverErrorIsKept(t *testing.T) {
	s, d := newStrip(t, 2, ledstrip.ModeRGB)
	boom := errors.New("boom")
	d.Fail = boom
	s.ShowColor(ledstrip.Red)
	require.Error(t, s.Err())
	assert.Equal(t, boom, errors.Cause(s.Err()))
	assert.Equal(t, ledstrip.Red, s.Pixel(0))
}
