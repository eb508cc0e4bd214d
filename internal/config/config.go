//Package config reads and writes the YAML configuration of the ledstrip command.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/DerLukas15/ledstrip"
)

//PWM holds the settings of the pwm driver.
type PWM struct {
	DMAChannel uint32 `yaml:"dma_channel"`
	Frequency  uint32 `yaml:"frequency"` // 400000 or 800000
	Invert     bool   `yaml:"invert"`
}

//SPI holds the settings of the spi driver.
type SPI struct {
	Dev       string `yaml:"dev"`                 // periph port name, "" for the first one
	Frequency int64  `yaml:"frequency,omitempty"` // Hz, 0 for 2.5 MHz
}

//Config is the content of the configuration file.
type Config struct {
	Driver string `yaml:"driver"` // "sim" | "pwm" | "spi"

	// Port is used unless Pin is set.
	Port string  `yaml:"port"`
	Pin  *uint32 `yaml:"pin,omitempty"`

	Pixels      int    `yaml:"pixels"`
	Mode        string `yaml:"mode"`       // grb | rgbw | rgb
	Brightness  int    `yaml:"brightness"` // percent
	MatrixWidth int    `yaml:"matrix_width,omitempty"`

	Addr string `yaml:"addr"` // control server, empty disables it

	PWM PWM `yaml:"pwm"`
	SPI SPI `yaml:"spi,omitempty"`
}

//Default returns a complete configuration for a 30 pixel strip on port P0 without hardware.
func Default() *Config {
	return &Config{
		Driver:     "sim",
		Port:       ledstrip.PortP0.String(),
		Pixels:     30,
		Mode:       ledstrip.ModeGRB.String(),
		Brightness: 25,
		Addr:       ":8080",
		PWM: PWM{
			DMAChannel: 10,
			Frequency:  800000,
		},
	}
}

//Load reads path on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config load")
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "config parse %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

//Save writes c to path as YAML.
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "config save")
	}
	return errors.Wrap(os.WriteFile(path, b, 0644), "config save")
}

//Validate checks the names in c.
func (c *Config) Validate() error {
	if _, err := ledstrip.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Pin == nil {
		if _, err := ledstrip.ParsePort(c.Port); err != nil {
			return err
		}
	}
	switch c.Driver {
	case "sim", "pwm", "spi":
	default:
		return errors.Errorf("unknown driver %q", c.Driver)
	}
	if c.Pixels < 0 {
		return errors.Errorf("negative pixel count %d", c.Pixels)
	}
	return nil
}

//StripPin returns the output pin: Pin if set, otherwise the pin of Port.
func (c *Config) StripPin() uint32 {
	if c.Pin != nil {
		return *c.Pin
	}
	port, err := ledstrip.ParsePort(c.Port)
	if err != nil {
		return ledstrip.DefaultPin
	}
	pin, _ := port.Pin()
	return pin
}
