//go:build tinygo

package mcu

import (
	"machine"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers/ws2812"

	"github.com/DerLukas15/ledstrip"
)

//Driver keeps one ws2812.Device per pin.
type Driver struct {
	devices map[uint32]ws2812.Device
}

var _ ledstrip.Driver = (*Driver)(nil)

//New returns a Driver without any pin configured.
func New() *Driver {
	return &Driver{devices: make(map[uint32]ws2812.Device)}
}

func (d *Driver) device(pin uint32) ws2812.Device {
	dev, ok := d.devices[pin]
	if !ok {
		p := machine.Pin(pin)
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		dev = ws2812.New(p)
		d.devices[pin] = dev
	}
	return dev
}

//SendBuffer implements ledstrip.Driver. buf is written to the line as is.
func (d *Driver) SendBuffer(buf []byte, pin uint32) error {
	dev := d.device(pin)
	if _, err := dev.Write(buf); err != nil {
		return errors.Wrapf(err, "ws2812 pin %d", pin)
	}
	return nil
}

//WriteDigital implements ledstrip.Driver.
func (d *Driver) WriteDigital(pin uint32, high bool) error {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Set(high)
	return nil
}
