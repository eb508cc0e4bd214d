package pwm

import (
	"time"

	"github.com/DerLukas15/rpigpio"
	"github.com/DerLukas15/rpihardware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/DerLukas15/ledstrip"
)

//Driver sends transmit buffers through the PWM peripheral.
/*
Strips are registered with AddStrip before Initialize. Settings can only be changed while the Driver
is not initialized; use Stop to release the hardware again.

Only one Driver can be initialized at a time.
*/
type Driver struct {
	// DMA channel to use. Some channels are used by the system, 10 is usually free.
	dmaChannel uint32
	frequency  uint32
	// One per PWM channel
	channels [2]channel

	initialized bool
	hw          hardware
	words       []uint32 // PWM words of both channels, interleaved if both are active
	wordStep    int

	// Timing for next render
	renderWaitTime     int64
	previousRenderTime time.Time

	log zerolog.Logger
}

type channel struct {
	active  bool
	pinNum  uint32
	pin     *rpigpio.Pin
	altMode rpigpio.Mode
	invert  bool   // output inverted by the PWM hardware
	data    []byte // last transmit buffer
}

var _ ledstrip.Driver = (*Driver)(nil)

//New returns a Driver with DefaultDMAChannel at 800 kHz.
func New(log zerolog.Logger) *Driver {
	return &Driver{
		dmaChannel: DefaultDMAChannel,
		frequency:  Frequency800k,
		hw:         newHardware(log),
		log:        log,
	}
}

//SetDMAChannel sets the DMA channel to use.
func (d *Driver) SetDMAChannel(channel uint32) error {
	if d.initialized {
		return errors.Wrap(ErrInitialized, "pwm SetDMAChannel")
	}
	d.dmaChannel = channel
	return nil
}

//SetFrequency sets the output frequency. Valid values are Frequency400k and Frequency800k.
func (d *Driver) SetFrequency(frequency uint32) error {
	if d.initialized {
		return errors.Wrap(ErrInitialized, "pwm SetFrequency")
	}
	if frequency != Frequency400k && frequency != Frequency800k {
		return errors.Wrapf(ErrWrongFrequency, "pwm SetFrequency %d", frequency)
	}
	d.frequency = frequency
	return nil
}

//AddStrip reserves the PWM channel of pin for a strip of numPixels pixels in mode.
/*
GPIO 12, 18 and 40 use PWM channel 0; GPIO 13, 19, 41 and 45 use channel 1. Each channel takes one
strip. If invert is set the PWM hardware inverts the output, for level shifters that invert.
*/
func (d *Driver) AddStrip(pin uint32, numPixels int, mode ledstrip.Mode, invert bool) error {
	if d.initialized {
		return errors.Wrap(ErrInitialized, "pwm AddStrip")
	}
	def, err := pwmPins.lookup(pin)
	if err != nil {
		return errors.Wrap(err, "pwm AddStrip")
	}
	curChannel := &d.channels[def.channel]
	if curChannel.active {
		return errors.Wrapf(ErrChannelUsed, "pwm AddStrip gpio %d, channel %d has gpio %d", pin, def.channel, curChannel.pinNum)
	}
	if numPixels < 0 {
		numPixels = 0
	}
	*curChannel = channel{
		active:  true,
		pinNum:  pin,
		altMode: def.altMode,
		invert:  invert,
		data:    make([]byte, numPixels*mode.Stride()),
	}
	d.log.Debug().Uint32("pin", pin).Int("channel", def.channel).Int("bytes", len(curChannel.data)).Msg("strip added")
	return nil
}

//Initialize maps the peripherals, starts the PWM clock and switches the strip pins to PWM output.
func (d *Driver) Initialize() error {
	if d.initialized {
		return nil
	}
	var active, inverted [2]bool
	var dataSize uint32
	for curChannelID, curChannel := range d.channels {
		if !curChannel.active {
			continue
		}
		active[curChannelID] = true
		inverted[curChannelID] = curChannel.invert
		// the larger channel decides
		if size := channelBytes(len(curChannel.data)); size > dataSize {
			dataSize = size
		}
	}
	d.wordStep = 0
	for _, a := range active {
		if a {
			d.wordStep++
		}
	}
	if d.wordStep == 0 {
		return errors.Wrap(ErrNoActiveChannel, "pwm initialize")
	}
	if pwmActive {
		return errors.Wrap(ErrDriverAlreadyUsed, "pwm initialize")
	}
	dataSize *= uint32(d.wordStep)

	if err := rpigpio.Initialize(); err != nil {
		return errors.Wrap(err, "pwm initialize gpio")
	}
	info, err := rpihardware.Check()
	if err != nil {
		return errors.Wrap(err, "pwm initialize hardware")
	}
	d.hw.info = info
	if err := d.hw.enableDMA(d.dmaChannel); err != nil {
		return errors.Wrap(err, "pwm initialize")
	}
	if err := d.hw.startPWM(d.frequency, active, inverted, dataSize); err != nil {
		d.hw.stopPWM()
		return errors.Wrap(err, "pwm initialize")
	}
	pwmActive = true
	d.words = make([]uint32, dataSize/4)

	for curChannelID := range d.channels {
		curChannel := &d.channels[curChannelID]
		if !curChannel.active {
			continue
		}
		curChannel.pin, err = rpigpio.NewPin(curChannel.pinNum)
		if err != nil {
			d.Stop()
			return errors.Wrapf(err, "pwm initialize gpio %d", curChannel.pinNum)
		}
		curChannel.pin.Mode(curChannel.altMode)
	}
	d.initialized = true
	d.log.Info().Uint32("dma", d.dmaChannel).Uint32("frequency", d.frequency).Int("channels", d.wordStep).Msg("pwm initialized")
	return nil
}

//Stop releases the PWM peripheral and pulls the strip pins low. The DMA controller stays mapped.
func (d *Driver) Stop() error {
	if !pwmActive && !d.initialized {
		return nil
	}
	d.hw.stopDMA(d.dmaChannel)
	err := d.hw.stopPWM()
	pwmActive = false
	d.initialized = false
	for _, curChannel := range d.channels {
		if curChannel.pin != nil {
			curChannel.pin.Mode(rpigpio.ModeOut)
			curChannel.pin.Set(0)
		}
	}
	if err != nil {
		return errors.Wrap(err, "pwm stop")
	}
	d.log.Info().Msg("pwm stopped")
	return nil
}

//Close is Stop.
func (d *Driver) Close() error {
	return d.Stop()
}

func (d *Driver) channelOf(pin uint32) int {
	for curChannelID, curChannel := range d.channels {
		if curChannel.active && curChannel.pinNum == pin {
			return curChannelID
		}
	}
	return -1
}

//SendBuffer implements ledstrip.Driver. buf replaces the last buffer of the strip on pin and both
//channels are transmitted. Blocks until the previous frame has left the line.
func (d *Driver) SendBuffer(buf []byte, pin uint32) error {
	if !d.initialized {
		return errors.Wrap(ErrNotInitialized, "pwm send")
	}
	curChannelID := d.channelOf(pin)
	if curChannelID < 0 {
		return errors.Wrapf(ErrUnknownPin, "pwm send gpio %d", pin)
	}
	curChannel := &d.channels[curChannelID]
	if len(buf) > len(curChannel.data) {
		return errors.Wrapf(ErrBufferTooLarge, "pwm send %d bytes to %d", len(buf), len(curChannel.data))
	}
	copy(curChannel.data, buf)

	if d.renderWaitTime != 0 && !d.previousRenderTime.IsZero() {
		timeDiff := time.Since(d.previousRenderTime)
		if timeDiff.Microseconds() < d.renderWaitTime {
			time.Sleep(time.Duration(d.renderWaitTime-timeDiff.Microseconds()) * time.Microsecond)
		}
	}
	d.renderWaitTime = d.render()
	d.hw.writeWords(d.words)
	d.hw.startDMA(d.dmaChannel)
	d.previousRenderTime = time.Now()
	if err := d.hw.busError(); err != nil {
		return errors.Wrap(err, "pwm send")
	}
	return nil
}

// render encodes every active channel into d.words and returns the time the frame takes in µs.
func (d *Driver) render() int64 {
	for i := range d.words {
		d.words[i] = 0
	}
	var protocolTime int64
	first := 0
	for _, curChannel := range d.channels {
		if !curChannel.active {
			continue
		}
		encode(d.words, curChannel.data, first, d.wordStep)
		if t := waitTime(len(curChannel.data), d.frequency); t > protocolTime {
			protocolTime = t
		}
		first++
	}
	return protocolTime
}

//WriteDigital implements ledstrip.Driver. Pins driven by PWM are left alone while initialized.
func (d *Driver) WriteDigital(pin uint32, high bool) error {
	if d.initialized && d.channelOf(pin) >= 0 {
		return nil
	}
	if err := rpigpio.Initialize(); err != nil {
		return errors.Wrap(err, "pwm write digital")
	}
	p, err := rpigpio.NewPin(pin)
	if err != nil {
		return errors.Wrapf(err, "pwm write digital gpio %d", pin)
	}
	p.Mode(rpigpio.ModeOut)
	if high {
		p.Set(1)
	} else {
		p.Set(0)
	}
	return nil
}
