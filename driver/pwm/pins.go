package pwm

import (
	"github.com/DerLukas15/rpigpio"
	"github.com/pkg/errors"
)

/*
 * Alternate function per pin for PWM
 * GPIO    PWM0   PWM1
 *  12      0
 *  13             0
 *  18      5
 *  19             5
 *  40      0
 *  41             0
 *  45             0
 */

type pinDefinition struct {
	channel int
	pin     uint32
	altMode rpigpio.Mode
}

type pinTable []pinDefinition

var pwmPins = pinTable{
	{channel: 0, pin: 12, altMode: rpigpio.ModeAlternate0},
	{channel: 0, pin: 18, altMode: rpigpio.ModeAlternate5},
	{channel: 0, pin: 40, altMode: rpigpio.ModeAlternate0},
	{channel: 1, pin: 13, altMode: rpigpio.ModeAlternate0},
	{channel: 1, pin: 19, altMode: rpigpio.ModeAlternate5},
	{channel: 1, pin: 41, altMode: rpigpio.ModeAlternate0},
	{channel: 1, pin: 45, altMode: rpigpio.ModeAlternate0},
}

func (pt pinTable) lookup(pin uint32) (pinDefinition, error) {
	for _, curEntry := range pt {
		if curEntry.pin == pin {
			return curEntry, nil
		}
	}
	return pinDefinition{}, errors.Wrapf(ErrPinNotAllowed, "gpio %d", pin)
}
