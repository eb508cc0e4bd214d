//Package sim is a ledstrip.Driver that keeps every transmission in memory instead of driving hardware.
package sim

import (
	"github.com/rs/zerolog"

	"github.com/DerLukas15/ledstrip"
)

//Frame is one transmit buffer handed to the driver.
type Frame struct {
	Pin  uint32
	Data []byte
}

//PinWrite is one WriteDigital call.
type PinWrite struct {
	Pin  uint32
	High bool
}

//Driver records frames and pin writes.
type Driver struct {
	Frames  []Frame
	Pins    []PinWrite
	Enabled []ledstrip.Port

	// Fail is returned by SendBuffer when set.
	Fail error

	log zerolog.Logger
}

var (
	_ ledstrip.Driver      = (*Driver)(nil)
	_ ledstrip.PortEnabler = (*Driver)(nil)
)

//New returns an empty Driver. Frames are logged at debug level to log.
func New(log zerolog.Logger) *Driver {
	return &Driver{log: log}
}

//SendBuffer implements ledstrip.Driver. buf is copied.
func (d *Driver) SendBuffer(buf []byte, pin uint32) error {
	if d.Fail != nil {
		return d.Fail
	}
	data := make([]byte, len(buf))
	copy(data, buf)
	d.Frames = append(d.Frames, Frame{Pin: pin, Data: data})

	var sum int
	for _, b := range data {
		sum += int(b)
	}
	d.log.Debug().Int("frame", len(d.Frames)).Uint32("pin", pin).Int("bytes", len(data)).Int("sum", sum).Msg("frame")
	return nil
}

//WriteDigital implements ledstrip.Driver.
func (d *Driver) WriteDigital(pin uint32, high bool) error {
	d.Pins = append(d.Pins, PinWrite{Pin: pin, High: high})
	return nil
}

//EnablePort implements ledstrip.PortEnabler.
func (d *Driver) EnablePort(port ledstrip.Port) error {
	d.Enabled = append(d.Enabled, port)
	return nil
}

//Count returns the number of frames sent.
func (d *Driver) Count() int {
	return len(d.Frames)
}

//Last returns the most recent frame.
func (d *Driver) Last() (Frame, bool) {
	if len(d.Frames) == 0 {
		return Frame{}, false
	}
	return d.Frames[len(d.Frames)-1], true
}

//Reset forgets all recorded frames and pin writes.
func (d *Driver) Reset() {
	d.Frames = nil
	d.Pins = nil
	d.Enabled = nil
}

//Close does nothing.
func (d *Driver) Close() error {
	return nil
}
