package ledstrip

//pixelBuffer holds the transmit bytes of a strip and, with the same indexing, the logical
//channels they were derived from. Every write goes through both so they never drift apart.
//Sub range views share one pixelBuffer.
type pixelBuffer struct {
	mode    Mode
	stride  int
	wire    []byte  // brightness scaled, in strip byte order
	logical []uint8 // unscaled, always R, G, B[, W]
}

func newPixelBuffer(numPixels int, mode Mode) *pixelBuffer {
	stride := mode.Stride()
	return &pixelBuffer{
		mode:    mode,
		stride:  stride,
		wire:    make([]byte, numPixels*stride),
		logical: make([]uint8, numPixels*stride),
	}
}

// Len returns the number of pixels.
func (b *pixelBuffer) Len() int {
	return len(b.wire) / b.stride
}

//rescale derives a transmit byte from a logical channel.
func rescale(logical uint8, brightness uint8) uint8 {
	if brightness < 255 {
		return uint8((uint32(logical) * uint32(brightness)) >> 8)
	}
	return logical
}

// write stores the logical color of pixel i and its scaled transmit bytes. White is left alone.
func (b *pixelBuffer) write(i int, red, green, blue, brightness uint8) {
	offset := i * b.stride
	b.logical[offset+0] = red
	b.logical[offset+1] = green
	b.logical[offset+2] = blue
	b.setWire(offset, rescale(red, brightness), rescale(green, brightness), rescale(blue, brightness))
}

func (b *pixelBuffer) writeWhite(i int, white, brightness uint8) {
	if b.stride < 4 {
		return
	}
	offset := i*b.stride + 3
	b.logical[offset] = white
	b.wire[offset] = rescale(white, brightness)
}

func (b *pixelBuffer) setWire(offset int, red, green, blue uint8) {
	if b.mode == ModeRGB {
		b.wire[offset+0] = red
		b.wire[offset+1] = green
	} else {
		b.wire[offset+0] = green
		b.wire[offset+1] = red
	}
	b.wire[offset+2] = blue
}

// reapply re-derives the transmit bytes of pixel i from its logical color.
func (b *pixelBuffer) reapply(i int, brightness uint8) {
	offset := i * b.stride
	l := b.logical[offset : offset+b.stride]
	b.setWire(offset, rescale(l[0], brightness), rescale(l[1], brightness), rescale(l[2], brightness))
	if b.stride == 4 {
		b.wire[offset+3] = rescale(l[3], brightness)
	}
}

func (b *pixelBuffer) color(i int) Color {
	offset := i * b.stride
	return RGB(int(b.logical[offset]), int(b.logical[offset+1]), int(b.logical[offset+2]))
}

func (b *pixelBuffer) white(i int) uint8 {
	if b.stride < 4 {
		return 0
	}
	return b.logical[i*b.stride+3]
}

// lit reports if any logical channel of pixels [start,start+n) is non zero.
func (b *pixelBuffer) lit(start, n int) bool {
	for _, v := range b.logical[start*b.stride : (start+n)*b.stride] {
		if v > 0 {
			return true
		}
	}
	return false
}

// zeroWire blanks the transmit bytes of pixels [start,start+n). Logical colors stay.
func (b *pixelBuffer) zeroWire(start, n int) {
	zero(b.wire[start*b.stride : (start+n)*b.stride])
}

func (b *pixelBuffer) zeroLogical(start, n int) {
	zero(b.logical[start*b.stride : (start+n)*b.stride])
}

// scaleWire scales the transmit bytes of pixel i by factor/256 without touching the logical color.
func (b *pixelBuffer) scaleWire(i int, factor int) {
	offset := i * b.stride
	for j := 0; j < b.stride; j++ {
		b.wire[offset+j] = uint8((int(b.wire[offset+j]) * factor) >> 8)
	}
}

func (b *pixelBuffer) wireRange(start, n int) []byte {
	return b.wire[start*b.stride : (start+n)*b.stride]
}

// shift moves pixels [start,start+n) by offset positions away from start. Vacated pixels become black.
func (b *pixelBuffer) shift(start, n, offset int) {
	if offset == 0 || n <= 0 {
		return
	}
	src := func(i int) int { return i - offset }
	remap(b.wire, start, n, b.stride, src)
	remap(b.logical, start, n, b.stride, src)
}

// rotate is shift with wrap around.
func (b *pixelBuffer) rotate(start, n, offset int) {
	if n <= 0 {
		return
	}
	offset = ((offset % n) + n) % n
	if offset == 0 {
		return
	}
	src := func(i int) int { return (i - offset + n) % n }
	remap(b.wire, start, n, b.stride, src)
	remap(b.logical, start, n, b.stride, src)
}

// remap rebuilds pixels [start,start+n) of data so that pixel i holds old pixel src(i).
// Sources outside [0,n) give black.
func remap(data []byte, start, n, stride int, src func(i int) int) {
	seg := data[start*stride : (start+n)*stride]
	tmp := make([]byte, len(seg))
	for i := 0; i < n; i++ {
		from := src(i)
		if from < 0 || from >= n {
			continue
		}
		copy(tmp[i*stride:(i+1)*stride], seg[from*stride:(from+1)*stride])
	}
	copy(seg, tmp)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
