package ledstrip

//Driver is the hardware behind a Strip.
/*
SendBuffer gets the complete transmit buffer, already brightness scaled and in the byte order of
the strip. It is called synchronously once per commit. WriteDigital is used once when a Strip is
created to pull the data line low before the first transmission.
*/
type Driver interface {
	SendBuffer(buf []byte, pin uint32) error
	WriteDigital(pin uint32, high bool) error
}

//PortEnabler is implemented by drivers for boards where some ports share their lines with other
//circuitry which has to be switched off before the port can drive a strip.
type PortEnabler interface {
	EnablePort(port Port) error
}

type nopDriver struct{}

func (nopDriver) SendBuffer(buf []byte, pin uint32) error { return nil }

func (nopDriver) WriteDigital(pin uint32, high bool) error { return nil }
