package pwm

import (
	"os"
	"time"

	"github.com/DerLukas15/rpihardware"
	"github.com/DerLukas15/rpimemmap"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Bus offsets of the peripherals
const (
	clockBusOffset uint32 = 0x00101000
	pwmBusOffset   uint32 = 0x0020c000
	dmaBusOffset   uint32 = 0x00007000
)

// Clock manager
const (
	clkPwmCtl uint32 = 0xa0
	clkPwmDiv uint32 = 0xa4

	clkPasswd    uint32 = 0x5a000000
	clkCtlSrcOsc uint32 = 1 << 0
	clkCtlEnab   uint32 = 1 << 4
	clkCtlKill   uint32 = 1 << 5
	clkCtlBusy   uint32 = 1 << 7
)

// PWM
const (
	pwmCtl  uint32 = 0x00
	pwmSta  uint32 = 0x04
	pwmDmac uint32 = 0x08
	pwmRng1 uint32 = 0x10
	pwmFif1 uint32 = 0x18
	pwmRng2 uint32 = 0x20

	pwmDmacEnab uint32 = 1 << 31

	pwmCtlPwen1 uint32 = 1 << 0
	pwmCtlMode1 uint32 = 1 << 1
	pwmCtlPola1 uint32 = 1 << 4
	pwmCtlUsef1 uint32 = 1 << 5
	pwmCtlClrf1 uint32 = 1 << 6
	pwmCtlPwen2 uint32 = 1 << 8
	pwmCtlMode2 uint32 = 1 << 9
	pwmCtlPola2 uint32 = 1 << 12
	pwmCtlUsef2 uint32 = 1 << 13

	pwmStaBerr uint32 = 1 << 8
)

// DMA channel and control block
const (
	dmaCs       uint32 = 0x00
	dmaConblkAd uint32 = 0x04
	dmaDebug    uint32 = 0x20
	dmaEnable   uint32 = 0xff0

	dmaCsReset                 uint32 = 1 << 31
	dmaCsWaitOutstandingWrites uint32 = 1 << 28
	dmaCsInt                   uint32 = 1 << 2
	dmaCsEnd                   uint32 = 1 << 1
	dmaCsActive                uint32 = 1 << 0

	cbTi         uint32 = 0 * 4
	cbSrc        uint32 = 1 * 4
	cbDest       uint32 = 2 * 4
	cbLength     uint32 = 3 * 4
	cbStride     uint32 = 4 * 4
	cbNext       uint32 = 5 * 4
	cbTiWaitResp uint32 = 1 << 3
	cbTiDestDreq uint32 = 1 << 6
	cbTiSrcInc   uint32 = 1 << 8
	cbTiNoWide   uint32 = 1 << 26
)

var (
	clkDivi        = func(val uint32) uint32 { return (val & 0xfff) << 12 }
	pwmDmacPanic   = func(val uint32) uint32 { return (val & 0xff) << 8 }
	pwmDmacDreq    = func(val uint32) uint32 { return val & 0xff }
	dmaCsPanicPrio = func(val uint32) uint32 { return (val & 0xf) << 20 }
	dmaCsPrio      = func(val uint32) uint32 { return (val & 0xf) << 16 }
	cbTiPermap     = func(val uint32) uint32 { return (val & 0x1f) << 16 }
	dmaChannelReg  = func(ch uint32, r uint32) uint32 { return ch*0x100 + r }
)

//peripheral is one mapped memory region, either device registers or uncached DMA memory.
type peripheral struct {
	name string
	mem  rpimemmap.MemMap
}

func (p *peripheral) mapRegisters(busOffset uint32) error {
	if p.mem != nil {
		return nil
	}
	mem := rpimemmap.NewPeripheral(uint32(os.Getpagesize()))
	if err := mem.Map(busOffset, rpimemmap.MemDevDefault, 0); err != nil {
		return errors.Wrapf(err, "map %s", p.name)
	}
	p.mem = mem
	return nil
}

func (p *peripheral) mapUncached(size uint32, info *rpihardware.Hardware) error {
	if err := p.unmap(); err != nil {
		return err
	}
	mem := rpimemmap.NewUncached(size)
	allocationFlags := rpimemmap.UncachedMemFlagDirect
	if info.RPiType == rpihardware.RPiType1 {
		allocationFlags = 0xc
	}
	if err := mem.Map(0, "", allocationFlags); err != nil {
		return errors.Wrapf(err, "allocate %s", p.name)
	}
	p.mem = mem
	return nil
}

func (p *peripheral) reg(offset uint32) *uint32 {
	return rpimemmap.Reg32(p.mem, offset)
}

func (p *peripheral) unmap() error {
	if p.mem == nil {
		return nil
	}
	if err := p.mem.Unmap(); err != nil {
		return errors.Wrapf(err, "unmap %s", p.name)
	}
	p.mem = nil
	return nil
}

func (p *peripheral) String() string {
	if p.mem == nil {
		return p.name + ": unmapped"
	}
	return p.name + ": " + p.mem.String()
}

//hardware holds every mapping the PWM output needs.
type hardware struct {
	info  *rpihardware.Hardware
	clock peripheral
	pwm   peripheral
	dma   peripheral
	cb    peripheral // DMA control block
	data  peripheral // PWM words read by DMA
	log   zerolog.Logger
}

func newHardware(log zerolog.Logger) hardware {
	return hardware{
		clock: peripheral{name: "clock"},
		pwm:   peripheral{name: "pwm"},
		dma:   peripheral{name: "dma"},
		cb:    peripheral{name: "dma control block"},
		data:  peripheral{name: "pwm data"},
		log:   log,
	}
}

func (h *hardware) enableDMA(channel uint32) error {
	if err := h.dma.mapRegisters(dmaBusOffset); err != nil {
		return err
	}
	h.log.Debug().Stringer("map", &h.dma).Msg("dma mapped")
	*h.dma.reg(dmaEnable) |= 1 << channel
	return nil
}

func (h *hardware) startDMA(channel uint32) {
	*h.dma.reg(dmaChannelReg(channel, dmaCs)) = dmaCsReset
	time.Sleep(10 * time.Microsecond)
	*h.dma.reg(dmaChannelReg(channel, dmaCs)) = dmaCsInt | dmaCsEnd
	time.Sleep(10 * time.Microsecond)
	*h.dma.reg(dmaChannelReg(channel, dmaConblkAd)) = h.cb.mem.BusAddr()
	*h.dma.reg(dmaChannelReg(channel, dmaDebug)) = 7
	*h.dma.reg(dmaChannelReg(channel, dmaCs)) = dmaCsWaitOutstandingWrites | dmaCsPanicPrio(15) | dmaCsPrio(15)
	*h.dma.reg(dmaChannelReg(channel, dmaCs)) |= dmaCsActive
	time.Sleep(20 * time.Microsecond)
}

func (h *hardware) stopDMA(channel uint32) {
	if h.dma.mem == nil {
		return
	}
	*h.dma.reg(dmaChannelReg(channel, dmaCs)) = dmaCsReset
}

// the PWM clock runs at three times the output frequency
func (h *hardware) startClock(frequency uint32) error {
	if err := h.clock.mapRegisters(clockBusOffset); err != nil {
		return err
	}
	h.stopClock()
	*h.clock.reg(clkPwmDiv) = clkPasswd | clkDivi(h.info.OscFreq/(bitsPerOutputBit*frequency))
	*h.clock.reg(clkPwmCtl) = clkPasswd | clkCtlSrcOsc
	*h.clock.reg(clkPwmCtl) = clkPasswd | clkCtlSrcOsc | clkCtlEnab
	time.Sleep(10 * time.Microsecond)
	for *h.clock.reg(clkPwmCtl)&clkCtlBusy == 0 {
		time.Sleep(1 * time.Microsecond)
	}
	h.log.Debug().Uint32("frequency", frequency).Msg("pwm clock running")
	return nil
}

func (h *hardware) stopClock() {
	if h.clock.mem == nil {
		return
	}
	*h.clock.reg(clkPwmCtl) = clkPasswd | clkCtlKill
	time.Sleep(10 * time.Microsecond)
	for *h.clock.reg(clkPwmCtl)&clkCtlBusy != 0 {
		time.Sleep(1 * time.Microsecond)
	}
}

//startPWM configures both PWM channels for serialiser mode fed from the FIFO and allocates
//dataSize bytes of DMA memory with a control block pointing at the FIFO.
func (h *hardware) startPWM(frequency uint32, active, inverted [2]bool, dataSize uint32) error {
	if err := h.startClock(frequency); err != nil {
		return errors.Wrap(err, "pwm clock")
	}
	if err := h.pwm.mapRegisters(pwmBusOffset); err != nil {
		return err
	}
	h.log.Debug().Stringer("map", &h.pwm).Msg("pwm mapped")

	*h.pwm.reg(pwmRng1) = 32 // bits per word
	*h.pwm.reg(pwmRng2) = 32
	time.Sleep(10 * time.Microsecond)
	*h.pwm.reg(pwmCtl) = pwmCtlClrf1
	time.Sleep(10 * time.Microsecond)
	*h.pwm.reg(pwmDmac) = pwmDmacEnab | pwmDmacPanic(7) | pwmDmacDreq(3)
	time.Sleep(10 * time.Microsecond)

	var ctl, enable uint32
	if active[0] {
		ctl |= pwmCtlUsef1 | pwmCtlMode1
		enable |= pwmCtlPwen1
		if inverted[0] {
			ctl |= pwmCtlPola1
		}
	}
	if active[1] {
		ctl |= pwmCtlUsef2 | pwmCtlMode2
		enable |= pwmCtlPwen2
		if inverted[1] {
			ctl |= pwmCtlPola2
		}
	}
	*h.pwm.reg(pwmCtl) = ctl
	time.Sleep(10 * time.Microsecond)
	*h.pwm.reg(pwmCtl) |= enable
	time.Sleep(10 * time.Microsecond)

	if err := h.data.mapUncached(dataSize, h.info); err != nil {
		return err
	}
	h.log.Debug().Uint32("bytes", dataSize).Stringer("map", &h.data).Msg("pwm data allocated")

	if err := h.cb.mapUncached(uint32(os.Getpagesize()), h.info); err != nil {
		return err
	}
	*h.cb.reg(cbTi) = cbTiNoWide | cbTiWaitResp | cbTiDestDreq | cbTiSrcInc | cbTiPermap(5)
	*h.cb.reg(cbSrc) = h.data.mem.BusAddr()
	*h.cb.reg(cbDest) = h.pwm.mem.BusAddr() + pwmFif1
	*h.cb.reg(cbLength) = dataSize
	*h.cb.reg(cbStride) = 0
	*h.cb.reg(cbNext) = 0
	return nil
}

func (h *hardware) busError() error {
	if h.pwm.mem == nil {
		return nil
	}
	if *h.pwm.reg(pwmSta)&pwmStaBerr != 0 {
		*h.pwm.reg(pwmSta) = pwmStaBerr
		return ErrBusError
	}
	return nil
}

//stopPWM switches the PWM off and frees every mapping but the DMA registers,
//which other users of the DMA controller may still need.
func (h *hardware) stopPWM() error {
	if h.pwm.mem != nil {
		*h.pwm.reg(pwmCtl) = 0
	}
	h.stopClock()
	for _, p := range []*peripheral{&h.pwm, &h.clock, &h.data, &h.cb} {
		if err := p.unmap(); err != nil {
			return err
		}
	}
	return nil
}

func (h *hardware) writeWords(words []uint32) {
	for i, w := range words {
		*h.data.reg(uint32(i * 4)) = w
	}
}
