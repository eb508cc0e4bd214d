package pwm

import (
	"testing"

	"github.com/DerLukas15/rpigpio"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DerLukas15/ledstrip"
)

func TestEncodeSymbols(t *testing.T) {
	words := make([]uint32, 2)
	assert.Equal(t, 0, encode(words, []byte{0xff}, 0, 1))
	assert.Equal(t, uint32(0xDB6DB600), words[0])

	assert.Equal(t, 0, encode(words, []byte{0x00}, 0, 1))
	assert.Equal(t, uint32(0x92492400), words[0])
}

func TestEncodeInterleaved(t *testing.T) {
	words := make([]uint32, 4)
	assert.Equal(t, 2, encode(words, []byte{0xff, 0x00}, 0, 2))
	assert.Equal(t, []uint32{0xDB6DB692, 0, 0x49240000, 0}, words)

	encode(words, []byte{0xff, 0x00}, 1, 2)
	assert.Equal(t, []uint32{0xDB6DB692, 0xDB6DB692, 0x49240000, 0x49240000}, words)
}

func TestEncodeOverwrites(t *testing.T) {
	words := []uint32{0xffffffff}
	encode(words, []byte{0x00}, 0, 1)
	assert.Equal(t, uint32(0x924924ff), words[0])
}

func TestChannelBytes(t *testing.T) {
	assert.Equal(t, uint32(64), channelBytes(9))
	assert.Equal(t, uint32(40), channelBytes(0))
	for n := 1; n < 300; n++ {
		needed := (n*8*bitsPerOutputBit + 31) / 32 * 4
		assert.GreaterOrEqual(t, int(channelBytes(n)), needed, "%d bytes", n)
	}
}

func TestWaitTime(t *testing.T) {
	assert.Equal(t, int64(390), waitTime(9, Frequency800k))
	assert.Equal(t, int64(480), waitTime(9, Frequency400k))
	assert.Equal(t, int64(resetTime), waitTime(0, Frequency800k))
}

func TestPinTable(t *testing.T) {
	for _, tc := range []struct {
		pin     uint32
		channel int
		mode    rpigpio.Mode
	}{
		{12, 0, rpigpio.ModeAlternate0},
		{18, 0, rpigpio.ModeAlternate5},
		{13, 1, rpigpio.ModeAlternate0},
		{19, 1, rpigpio.ModeAlternate5},
		{45, 1, rpigpio.ModeAlternate0},
	} {
		def, err := pwmPins.lookup(tc.pin)
		require.NoError(t, err)
		assert.Equal(t, tc.channel, def.channel, "gpio %d", tc.pin)
		assert.Equal(t, tc.mode, def.altMode, "gpio %d", tc.pin)
	}
	_, err := pwmPins.lookup(4)
	assert.Equal(t, ErrPinNotAllowed, errors.Cause(err))
}

func TestAddStrip(t *testing.T) {
	d := New(zerolog.Nop())
	require.NoError(t, d.AddStrip(18, 10, ledstrip.ModeRGBW, false))
	assert.Len(t, d.channels[0].data, 40)
	assert.Equal(t, rpigpio.ModeAlternate5, d.channels[0].altMode)

	err := d.AddStrip(12, 10, ledstrip.ModeGRB, false)
	assert.Equal(t, ErrChannelUsed, errors.Cause(err))

	err = d.AddStrip(7, 10, ledstrip.ModeGRB, false)
	assert.Equal(t, ErrPinNotAllowed, errors.Cause(err))

	require.NoError(t, d.AddStrip(13, 5, ledstrip.ModeGRB, true))
	assert.True(t, d.channels[1].invert)
	assert.Equal(t, 1, d.channelOf(13))
	assert.Equal(t, -1, d.channelOf(12))
}

func TestSettings(t *testing.T) {
	d := New(zerolog.Nop())
	assert.Equal(t, DefaultDMAChannel, d.dmaChannel)
	assert.Equal(t, Frequency800k, d.frequency)

	assert.NoError(t, d.SetFrequency(Frequency400k))
	assert.Equal(t, ErrWrongFrequency, errors.Cause(d.SetFrequency(1000)))
	assert.Equal(t, Frequency400k, d.frequency)
	assert.NoError(t, d.SetDMAChannel(5))
	assert.Equal(t, uint32(5), d.dmaChannel)
}

func TestNotInitialized(t *testing.T) {
	d := New(zerolog.Nop())
	require.NoError(t, d.AddStrip(18, 2, ledstrip.ModeGRB, false))
	assert.Equal(t, ErrNotInitialized, errors.Cause(d.SendBuffer(make([]byte, 6), 18)))
	assert.NoError(t, d.Stop())
}

func TestInitializeWithoutStrips(t *testing.T) {
	d := New(zerolog.Nop())
	assert.Equal(t, ErrNoActiveChannel, errors.Cause(d.Initialize()))
}

func TestRenderBothChannels(t *testing.T) {
	d := New(zerolog.Nop())
	require.NoError(t, d.AddStrip(18, 1, ledstrip.ModeGRB, false))
	require.NoError(t, d.AddStrip(19, 1, ledstrip.ModeGRB, false))
	d.wordStep = 2
	d.words = make([]uint32, 2*channelBytes(3)/4)
	d.words[len(d.words)-1] = 0xffffffff
	copy(d.channels[0].data, []byte{0xff, 0xff, 0xff})
	copy(d.channels[1].data, []byte{0x00, 0x00, 0x00})

	assert.Equal(t, int64(24*1250/1000+resetTime), d.render())
	// 72 PWM bits per channel
	assert.Equal(t, uint32(0xDB6DB6DB), d.words[0])
	assert.Equal(t, uint32(0x92492492), d.words[1])
	assert.Equal(t, uint32(0), d.words[len(d.words)-1])
}
