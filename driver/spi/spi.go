//Package spi is a ledstrip.Driver that encodes the transmit buffer as an NRZ bit stream on a SPI
//bus, through periph.io. Works on every board periph.io supports, no DMA required.
package spi

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/DerLukas15/ledstrip"
)

// Errors
var (
	ErrUnknownPin = errors.New("unknown gpio")
	ErrLength     = errors.New("buffer is not a whole number of pixels")
)

//DefaultFrequency is the SPI clock for 800 kHz strips: three SPI bits per data bit, plus margin.
const DefaultFrequency = 2500 * physic.KiloHertz

//DataPin is GPIO 10, MOSI of SPI0 on a Raspberry Pi. It idles low between frames.
const DataPin uint32 = 10

//Driver writes frames to an nrzled device.
type Driver struct {
	dev    *nrzled.Dev
	closer io.Closer
	stride int
	swap   []byte

	pinByName func(name string) gpio.PinIO
	log       zerolog.Logger
}

var _ ledstrip.Driver = (*Driver)(nil)

//Open initializes periph.io and opens the SPI port name ("" for the first one) for a strip of
//numPixels pixels in mode. A freq of 0 means DefaultFrequency.
func Open(name string, numPixels int, mode ledstrip.Mode, freq physic.Frequency, log zerolog.Logger) (*Driver, error) {
	if freq == 0 {
		freq = DefaultFrequency
	}
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "spi host init")
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "spi open %q", name)
	}
	d, err := New(p, numPixels, mode, freq, log)
	if err != nil {
		p.Close()
		return nil, err
	}
	d.log.Info().Str("port", p.String()).Int("pixels", numPixels).Msg("spi driver ready")
	return d, nil
}

//New returns a Driver on an already opened port. If p is an io.Closer it is closed by Close.
func New(p spi.Port, numPixels int, mode ledstrip.Mode, freq physic.Frequency, log zerolog.Logger) (*Driver, error) {
	opts := nrzled.Opts{
		NumPixels: numPixels,
		Channels:  mode.Stride(),
		Freq:      freq,
	}
	dev, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		return nil, errors.Wrap(err, "spi nrzled")
	}
	d := &Driver{
		dev:       dev,
		stride:    mode.Stride(),
		pinByName: gpioreg.ByName,
		log:       log,
	}
	if c, ok := p.(io.Closer); ok {
		d.closer = c
	}
	return d, nil
}

//SendBuffer implements ledstrip.Driver. pin is ignored, the data always leaves on MOSI.
func (d *Driver) SendBuffer(buf []byte, pin uint32) error {
	if len(buf)%d.stride != 0 {
		return errors.Wrapf(ErrLength, "spi send %d bytes, %d per pixel", len(buf), d.stride)
	}
	d.swap = swapFirstPair(d.swap, buf, d.stride)
	if _, err := d.dev.Write(d.swap); err != nil {
		return errors.Wrap(err, "spi send")
	}
	d.log.Debug().Int("bytes", len(buf)).Msg("frame")
	return nil
}

//swapFirstPair copies src into dst swapping the first two bytes of every pixel.
//nrzled takes red first and puts green on the wire first; the transmit buffer already is in wire order.
func swapFirstPair(dst, src []byte, stride int) []byte {
	if cap(dst) < len(src) {
		dst = make([]byte, len(src))
	}
	dst = dst[:len(src)]
	for i := 0; i+stride <= len(src); i += stride {
		copy(dst[i:i+stride], src[i:i+stride])
		dst[i], dst[i+1] = src[i+1], src[i]
	}
	return dst
}

//WriteDigital implements ledstrip.Driver. DataPin belongs to the SPI port and is left alone.
func (d *Driver) WriteDigital(pin uint32, high bool) error {
	if pin == DataPin {
		return nil
	}
	p := d.pinByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return errors.Wrapf(ErrUnknownPin, "spi write digital gpio %d", pin)
	}
	level := gpio.Low
	if high {
		level = gpio.High
	}
	return errors.Wrapf(p.Out(level), "spi write digital gpio %d", pin)
}

//Close blanks the strip and releases the port.
func (d *Driver) Close() error {
	if err := d.dev.Halt(); err != nil {
		return errors.Wrap(err, "spi halt")
	}
	if d.closer != nil {
		return errors.Wrap(d.closer.Close(), "spi close")
	}
	return nil
}

//String returns the name of the nrzled device.
func (d *Driver) String() string {
	return d.dev.String()
}
