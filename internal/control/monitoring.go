package control

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/DerLukas15/ledstrip"
)

var (
	commandCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledstrip_commands",
		Help: "Count of control commands executed.",
	},
		[]string{"op"})

	rejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledstrip_commands_rejected",
		Help: "Count of control commands that were rejected or failed.",
	},
		[]string{"op"})

	frameCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_frames",
		Help: "Count of transmit buffers sent to the driver.",
	})

	frameBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_frame_bytes",
		Help: "Count of transmit bytes sent to the driver.",
	})

	frameErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledstrip_frame_errors",
		Help: "Count of errors returned by the driver.",
	})

	powerGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledstrip_power_milliamps",
		Help: "Estimated current draw of the strip.",
	})

	brightnessGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ledstrip_brightness_percent",
		Help: "Brightness of the strip.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		commandCounter,
		rejectedCounter,
		frameCounter,
		frameBytes,
		frameErrors,
		powerGauge,
		brightnessGauge,
	)
}

// MonitorDriver wraps d in a shim counting frames, bytes and errors.
func MonitorDriver(d ledstrip.Driver) ledstrip.Driver {
	return &monitoredDriver{Driver: d}
}

type monitoredDriver struct {
	ledstrip.Driver
}

//SendBuffer implements ledstrip.Driver and counts the frame.
func (md *monitoredDriver) SendBuffer(buf []byte, pin uint32) error {
	if err := md.Driver.SendBuffer(buf, pin); err != nil {
		frameErrors.Inc()
		return err
	}
	frameCounter.Inc()
	frameBytes.Add(float64(len(buf)))
	return nil
}

// EnablePort forwards to the wrapped driver if it is a ledstrip.PortEnabler.
func (md *monitoredDriver) EnablePort(port ledstrip.Port) error {
	if pe, ok := md.Driver.(ledstrip.PortEnabler); ok {
		return pe.EnablePort(port)
	}
	return nil
}

func updateGauges(s *ledstrip.Simple) {
	powerGauge.Set(float64(s.Strip().Power()))
	brightnessGauge.Set(float64(s.Brightness()))
}
