//Package ledstrip drives addressable WS281x/SK6812 LED strips from an in-memory pixel buffer.
/*
A Strip keeps two views of every pixel: the logical color that was last assigned to it and the
brightness scaled bytes that are handed to the hardware. Brightness changes re-derive the bytes
from the logical colors so repeated scaling never loses precision.

The hardware itself is behind the Driver interface. See the driver directory for implementations.
*/
package ledstrip

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Errors
var (
	ErrUnknownMode = errors.New("unknown strip mode")
	ErrUnknownPort = errors.New("unknown port")
)

//Mode is the byte layout the connected strip expects. It is fixed when the strip is created.
type Mode uint8

//Valid Modes
const (
	ModeGRB  Mode = 1 + iota // 3 bytes per pixel, green red blue
	ModeRGBW                 // 4 bytes per pixel, green red blue white
	ModeRGB                  // 3 bytes per pixel, red green blue
)

// Brightness defaults
const (
	DefaultBrightness   = 10  // Brightness of a freshly created Strip
	SimpleBrightness    = 30  // Brightness of a Strip created by NewSimple and NewAdvanced
	MaxSimpleBrightness = 120 // 100% on the Simple facade. Keeps the current draw of small boards in check
)

//Stride returns the number of transmit bytes per pixel.
func (m Mode) Stride() int {
	if m == ModeRGBW {
		return 4
	}
	return 3
}

func (m Mode) valid() bool {
	return m >= ModeGRB && m <= ModeRGB
}

//String returns the name ParseMode accepts.
func (m Mode) String() string {
	switch m {
	case ModeGRB:
		return "grb"
	case ModeRGBW:
		return "rgbw"
	case ModeRGB:
		return "rgb"
	}
	return "unknown"
}

//ParseMode returns the Mode for name. Accepted names are grb, rgbw and rgb in any case.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "grb", "":
		return ModeGRB, nil
	case "rgbw", "grbw":
		return ModeRGBW, nil
	case "rgb":
		return ModeRGB, nil
	}
	return 0, errors.Wrapf(ErrUnknownMode, "%q", name)
}

var logger = zerolog.Nop()

//SetLogger sets the logger for strips created afterwards. Logging is disabled by default.
func SetLogger(l zerolog.Logger) {
	logger = l
}
