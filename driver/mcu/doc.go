//Package mcu is a ledstrip.Driver for microcontrollers, built with TinyGo.
/*
The strip is bit-banged by tinygo.org/x/drivers/ws2812, so interrupts are disabled while a frame is
sent. Every pin a strip is created on is configured as output on first use.

	strip := ledstrip.New(mcu.New(), uint32(machine.GPIO16), 30, ledstrip.ModeGRB)
*/
package mcu
