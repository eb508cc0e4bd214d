package ledstrip

import (
	"strings"

	"github.com/pkg/errors"
)

//Port is a connector of the expansion board. Each one maps to a fixed output pin.
type Port uint8

//Valid Ports
const (
	PortP0 Port = iota
	PortP1P2
	PortP8P3P4
	PortP10
	PortP6P7
	PortP5
	PortP11
	PortP12
)

//DefaultPin is used for ports without an entry in the port table.
const DefaultPin uint32 = 0

type portDefinition struct {
	port    Port
	name    string
	pin     uint32
	display bool // line is shared with the on-board display
}

type portTable []portDefinition

var ports = portTable{
	{port: PortP0, name: "P0", pin: 0},
	{port: PortP1P2, name: "P1/P2", pin: 1},
	{port: PortP8P3P4, name: "P8/P3/P4", pin: 8},
	{port: PortP10, name: "P10", pin: 10, display: true},
	{port: PortP6P7, name: "P6/P7", pin: 7, display: true},
	{port: PortP5, name: "P5", pin: 5},
	{port: PortP11, name: "P11", pin: 11},
	{port: PortP12, name: "P12", pin: 12},
}

func (pt portTable) lookup(port Port) (portDefinition, bool) {
	for _, curEntry := range pt {
		if curEntry.port == port {
			return curEntry, true
		}
	}
	return portDefinition{}, false
}

//Pin returns the output pin of the port. Unknown ports give DefaultPin and Clamped.
func (p Port) Pin() (uint32, Validation) {
	def, ok := ports.lookup(p)
	if !ok {
		return DefaultPin, Clamped
	}
	return def.pin, Accepted
}

//SharesDisplay reports if the port lines are also used by the on-board display.
func (p Port) SharesDisplay() bool {
	def, _ := ports.lookup(p)
	return def.display
}

//String returns the name ParsePort accepts.
func (p Port) String() string {
	if def, ok := ports.lookup(p); ok {
		return def.name
	}
	return "unknown"
}

//ParsePort returns the Port for a name like "P10" or "P6/P7".
func ParsePort(name string) (Port, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, curEntry := range ports {
		if curEntry.name == name || strings.ReplaceAll(curEntry.name, "/", "") == name {
			return curEntry.port, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownPort, "%q", name)
}
