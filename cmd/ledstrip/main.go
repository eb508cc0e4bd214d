package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/physic"

	"github.com/DerLukas15/ledstrip"
	"github.com/DerLukas15/ledstrip/driver/pwm"
	"github.com/DerLukas15/ledstrip/driver/sim"
	"github.com/DerLukas15/ledstrip/driver/spi"
	"github.com/DerLukas15/ledstrip/internal/config"
	"github.com/DerLukas15/ledstrip/internal/control"
)

// modeFlag is a pflag.Value holding a ledstrip.Mode.
type modeFlag ledstrip.Mode

var _ pflag.Value = (*modeFlag)(nil)

func (mf *modeFlag) String() string { return ledstrip.Mode(*mf).String() }

// Set implements pflag.Value.
func (mf *modeFlag) Set(v string) error {
	m, err := ledstrip.ParseMode(v)
	if err != nil {
		return err
	}
	*mf = modeFlag(m)
	return nil
}

// Type implements pflag.Value.
func (mf *modeFlag) Type() string { return "ledstrip.Mode" }

func main() {
	var (
		configPath = pflag.String("config", "ledstrip.yaml", "path to the YAML configuration")
		driverName = pflag.String("driver", "sim", "driver: sim | pwm | spi")
		pixels     = pflag.Int("pixels", 30, "number of pixels")
		portName   = pflag.String("port", "P0", "expansion board port, e.g. P0 or P6/P7")
		pin        = pflag.Uint32("pin", 0, "output pin, overrides --port")
		brightness = pflag.Int("brightness", 25, "brightness in percent")
		addr       = pflag.String("addr", ":8080", "control server listen address, empty to disable")
		demo       = pflag.Bool("demo", false, "run a rotating rainbow")
		debug      = pflag.Bool("debug", false, "enable debug logging")
		mode       = modeFlag(ledstrip.ModeGRB)
	)
	pflag.Var(&mode, "mode", "byte layout: grb | rgbw | rgb")
	pflag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	ledstrip.SetLogger(log.With().Str("component", "ledstrip").Logger())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config not loaded, using defaults")
		cfg = config.Default()
	}
	// flags given on the command line win
	if pflag.CommandLine.Changed("driver") {
		cfg.Driver = *driverName
	}
	if pflag.CommandLine.Changed("pixels") {
		cfg.Pixels = *pixels
	}
	if pflag.CommandLine.Changed("port") {
		cfg.Port = *portName
		cfg.Pin = nil
	}
	if pflag.CommandLine.Changed("pin") {
		cfg.Pin = pin
	}
	if pflag.CommandLine.Changed("mode") {
		cfg.Mode = mode.String()
	}
	if pflag.CommandLine.Changed("brightness") {
		cfg.Brightness = *brightness
	}
	if pflag.CommandLine.Changed("addr") {
		cfg.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	stripMode, _ := ledstrip.ParseMode(cfg.Mode)

	drv, closer := openDriver(cfg, stripMode)
	monitored := control.MonitorDriver(drv)

	var strip *ledstrip.Simple
	if cfg.Pin == nil && stripMode == ledstrip.ModeGRB {
		port, _ := ledstrip.ParsePort(cfg.Port)
		strip = ledstrip.NewSimple(monitored, port, cfg.Pixels)
	} else {
		strip = ledstrip.NewAdvanced(monitored, cfg.StripPin(), cfg.Pixels, stripMode)
	}
	if v := strip.SetBrightness(cfg.Brightness); v != ledstrip.Accepted {
		log.Warn().Int("brightness", cfg.Brightness).Stringer("result", v).Msg("brightness out of range")
	}
	if cfg.MatrixWidth > 0 {
		strip.Strip().SetMatrixWidth(cfg.MatrixWidth)
	}
	log.Info().
		Str("driver", cfg.Driver).
		Uint32("pin", strip.Strip().Pin()).
		Int("pixels", strip.Strip().Length()).
		Stringer("mode", stripMode).
		Msg("strip ready")

	reg := prometheus.NewRegistry()
	control.RegisterMonitoring(reg)
	reg.MustRegister(collectors.NewGoCollector())

	srv := control.New(strip, log.With().Str("component", "control").Logger())
	runCtx, stopRun := context.WithCancel(context.Background())
	go srv.Run(runCtx)

	var httpSrv *http.Server
	if cfg.Addr != "" {
		httpSrv = &http.Server{
			Addr:         cfg.Addr,
			Handler:      srv.Handler(reg),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", cfg.Addr).Msg("control server starting")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("control server crashed")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *demo {
		go runDemo(ctx, srv)
	}
	<-ctx.Done()
	log.Info().Msg("shutting down")

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		cancel()
	}
	if _, err := srv.Do(runCtx, control.Command{Op: "off"}); err != nil {
		log.Warn().Err(err).Msg("turn off")
	}
	stopRun()
	if closer != nil {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("driver close")
		}
	}
}

// openDriver returns the configured driver, or the sim driver if the hardware cannot be used.
func openDriver(cfg *config.Config, mode ledstrip.Mode) (ledstrip.Driver, io.Closer) {
	switch cfg.Driver {
	case "pwm":
		d, err := openPWM(cfg, mode)
		if err == nil {
			return d, d
		}
		log.Warn().Err(err).Str("driver", "pwm").Msg("pwm init failed, falling back to sim")
	case "spi":
		freq := physic.Frequency(cfg.SPI.Frequency) * physic.Hertz
		d, err := spi.Open(cfg.SPI.Dev, cfg.Pixels, mode, freq, log.With().Str("component", "spi").Logger())
		if err == nil {
			return d, d
		}
		log.Warn().Err(err).Str("driver", "spi").Str("dev", cfg.SPI.Dev).Msg("spi init failed, falling back to sim")
	}
	d := sim.New(log.With().Str("component", "sim").Logger())
	return d, d
}

func openPWM(cfg *config.Config, mode ledstrip.Mode) (*pwm.Driver, error) {
	d := pwm.New(log.With().Str("component", "pwm").Logger())
	if err := d.SetDMAChannel(cfg.PWM.DMAChannel); err != nil {
		return nil, err
	}
	if err := d.SetFrequency(cfg.PWM.Frequency); err != nil {
		return nil, err
	}
	if err := d.AddStrip(cfg.StripPin(), cfg.Pixels, mode, cfg.PWM.Invert); err != nil {
		return nil, err
	}
	if err := d.Initialize(); err != nil {
		return nil, errors.Wrap(err, "pwm")
	}
	return d, nil
}

// runDemo shows a rainbow and rotates it until ctx is done.
func runDemo(ctx context.Context, srv *control.Server) {
	if _, err := srv.Do(ctx, control.Command{Op: "rainbow", Start: 0, End: 359}); err != nil {
		return
	}
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := srv.Do(ctx, control.Command{Op: "rotate", Value: 1}); err != nil {
				return
			}
		}
	}
}
