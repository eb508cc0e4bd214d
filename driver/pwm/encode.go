package pwm

//encode serialises data MSB first into words, three PWM bits per data bit.
//Writing starts at bit 31 of words[first]; the following words of the channel are step apart.
//It returns the index of the last word touched.
func encode(words []uint32, data []byte, first, step int) int {
	pos := first
	bitPos := 31
	for _, curByte := range data {
		for k := 7; k >= 0; k-- {
			symbol := symbolLow
			if curByte&(1<<uint(k)) != 0 {
				symbol = symbolHigh
			}
			for l := bitsPerOutputBit - 1; l >= 0; l-- {
				if symbol&(1<<uint(l)) != 0 {
					words[pos] |= 1 << uint(bitPos)
				} else {
					words[pos] &^= 1 << uint(bitPos)
				}
				bitPos--
				if bitPos < 0 {
					pos += step
					bitPos = 31
				}
			}
		}
	}
	return pos
}

//channelBytes is the DMA buffer size one channel needs for n transmit bytes, including the
//trailing low words that latch the frame.
func channelBytes(n int) uint32 {
	bits := uint32(n * 8 * bitsPerOutputBit)
	return (bits>>3)&^uint32(0x7) + 8 + 32
}

//waitTime is the time in µs a frame of n transmit bytes occupies the line, reset included.
func waitTime(n int, frequency uint32) int64 {
	// ns per bit
	bitTime := int64(2500)
	if frequency == Frequency800k {
		bitTime = 1250
	}
	return int64(n*8)*bitTime/1000 + resetTime
}
