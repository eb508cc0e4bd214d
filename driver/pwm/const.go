//Package pwm is a ledstrip.Driver for WS281x strips on the PWM peripheral of a Raspberry Pi.
/*
The transmit bytes are serialised into a DMA buffer which feeds the PWM FIFO. Up to two strips can be
driven, one per PWM channel. The pin of a strip selects its channel, see AddStrip.

Accessing the peripherals requires root.
*/
package pwm

import (
	"github.com/pkg/errors"
)

// Errors
var (
	ErrDriverAlreadyUsed = errors.New("pwm already in use by another driver")
	ErrInitialized       = errors.New("driver already initialized")
	ErrNotInitialized    = errors.New("driver not initialized")
	ErrPinNotAllowed     = errors.New("selected pin not allowed")
	ErrChannelUsed       = errors.New("pwm channel already has a strip")
	ErrNoActiveChannel   = errors.New("no active channel")
	ErrWrongFrequency    = errors.New("wrong frequency")
	ErrUnknownPin        = errors.New("no strip on pin")
	ErrBufferTooLarge    = errors.New("buffer larger than strip")
	ErrBusError          = errors.New("pwm bus error")
)

// Output frequencies
const (
	Frequency400k uint32 = 400000
	Frequency800k uint32 = 800000
)

//DefaultDMAChannel is used unless SetDMAChannel is called.
const DefaultDMAChannel uint32 = 10

const (
	bitsPerOutputBit = 3 // PWM bits per transmitted bit

	symbolHigh uint32 = 0b110
	symbolLow  uint32 = 0b100

	resetTime = 300 // µs of low line after a frame
)

// Set while a Driver holds the PWM peripheral
var pwmActive bool
