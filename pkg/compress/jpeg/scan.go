package jpeg

import "fmt"

// readScanHeader parses the SOS body and resolves every referenced table,
// returning the per-channel scan state in SOS order.
func (d *decoder) readScanHeader() ([]*scanChannel, error) {
	if d.frame == nil {
		return nil, fmt.Errorf("%w: SOS before SOF0", ErrMalformedSegment)
	}
	sz, err := d.readSegmentLength()
	if err != nil {
		return nil, err
	}
	if sz < 1 {
		return nil, fmt.Errorf("%w: empty SOS payload", ErrMalformedSegment)
	}
	count, err := d.br.ReadByte()
	if err != nil {
		return nil, err
	}
	sz--
	if count < 1 || int(count) > len(d.frame.Channels) {
		return nil, fmt.Errorf("%w: %d channels in scan of a %d-channel frame",
			ErrMalformedSegment, count, len(d.frame.Channels))
	}
	if count > 3 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedColorspace, count)
	}
	if sz < 2*int(count)+3 {
		return nil, fmt.Errorf("%w: SOS payload of %d bytes for %d channels", ErrMalformedSegment, sz, count)
	}

	hMax, vMax := d.frame.samplingMax()
	channels := make([]*scanChannel, count)
	for i := range channels {
		id, err := d.br.ReadByte()
		if err != nil {
			return nil, err
		}
		ids, err := d.br.ReadByte()
		if err != nil {
			return nil, err
		}
		sz -= 2

		ch, err := d.frame.channelByID(id)
		if err != nil {
			return nil, err
		}
		dcID, acID := ids>>4, ids&0x0F
		dc, ok := d.huff[huffKey{class: classDC, id: dcID}]
		if !ok {
			return nil, fmt.Errorf("%w: missing DC huffman table %d", ErrMalformedTable, dcID)
		}
		ac, ok := d.huff[huffKey{class: classAC, id: acID}]
		if !ok {
			return nil, fmt.Errorf("%w: missing AC huffman table %d", ErrMalformedTable, acID)
		}
		quant, ok := d.quant[ch.QuantID]
		if !ok {
			return nil, fmt.Errorf("%w: missing quantization table %d", ErrMalformedTable, ch.QuantID)
		}
		if hMax%int(ch.H) != 0 || vMax%int(ch.V) != 0 {
			return nil, fmt.Errorf("%w: sampling %dx%d against maximum %dx%d",
				ErrUnsupportedProfile, ch.H, ch.V, hMax, vMax)
		}

		stride := 8 * int(ch.H)
		channels[i] = &scanChannel{
			ch:     ch,
			dc:     dc,
			ac:     ac,
			quant:  quant,
			plane:  make([]uint8, stride*8*int(ch.V)),
			stride: stride,
			sx:     hMax / int(ch.H),
			sy:     vMax / int(ch.V),
		}
	}

	// Baseline invariant: spectral selection 0..63, no successive
	// approximation.
	ss, err := d.br.ReadByte()
	if err != nil {
		return nil, err
	}
	se, err := d.br.ReadByte()
	if err != nil {
		return nil, err
	}
	ahal, err := d.br.ReadByte()
	if err != nil {
		return nil, err
	}
	sz -= 3
	if ss != 0 || se != 63 || ahal != 0 {
		return nil, fmt.Errorf("%w: scan parameters Ss=%d Se=%d AhAl=%#02x", ErrUnsupportedProfile, ss, se, ahal)
	}
	if err := d.br.Skip(sz); err != nil {
		return nil, err
	}
	return channels, nil
}

// decodeSymbol feeds bits to the Huffman walk until a symbol emerges.
func (d *decoder) decodeSymbol(t *HuffmanTree) (uint8, error) {
	for {
		bit, err := d.br.ReadBits(1)
		if err != nil {
			return 0, err
		}
		sym, ok, err := t.Step(bit)
		if err != nil {
			return 0, err
		}
		if ok {
			return sym, nil
		}
	}
}

// readBlock decodes one 8x8 block into zig-zag order: a DC size symbol and
// signed difference against the channel predictor, then AC run/size pairs
// until end-of-block or position 63.
func (d *decoder) readBlock(sc *scanChannel) ([blockSize]int16, error) {
	var zz [blockSize]int16

	dcSize, err := d.decodeSymbol(sc.dc)
	if err != nil {
		return zz, err
	}
	if dcSize > 15 {
		return zz, fmt.Errorf("%w: DC size symbol %d", ErrMalformedStream, dcSize)
	}
	diff, err := d.br.ReadBitsSigned(int(dcSize))
	if err != nil {
		return zz, err
	}
	sc.pred += diff
	zz[0] = sc.pred

	for k := 1; k < blockSize; {
		sym, err := d.decodeSymbol(sc.ac)
		if err != nil {
			return zz, err
		}
		if sym == 0 { // EOB: remaining positions stay zero
			break
		}
		run := int(sym >> 4)
		size := int(sym & 0x0F)
		if size == 0 && run != 15 {
			return zz, fmt.Errorf("%w: AC run of %d zeros with empty coefficient", ErrMalformedStream, run)
		}
		if k+run >= blockSize {
			return zz, fmt.Errorf("%w: coefficient overrun past position 63", ErrMalformedStream)
		}
		k += run
		v, err := d.br.ReadBitsSigned(size) // ZRL carries a zero 16th entry
		if err != nil {
			return zz, err
		}
		zz[k] = v
		k++
	}
	return zz, nil
}

// decodeScan runs the MCU loop: channels in SOS order, blocks row-major
// within a channel, each block reconstructed into the channel's reusable
// sample plane, then the MCU's pixel rectangle is converted and written to
// the raster. Coordinates beyond the frame rectangle are discarded.
func (d *decoder) decodeScan(channels []*scanChannel) error {
	hMax, vMax := d.frame.samplingMax()
	mcuPxW, mcuPxH := 8*hMax, 8*vMax
	mcuW := (d.frame.Width + mcuPxW - 1) / mcuPxW
	mcuH := (d.frame.Height + mcuPxH - 1) / mcuPxH

	convert := YCbCrToRGB
	if d.opts.FastColor {
		convert = YCbCrToRGBFast
	}

	for mcuY := 0; mcuY < mcuH; mcuY++ {
		for mcuX := 0; mcuX < mcuW; mcuX++ {
			for _, sc := range channels {
				for blockV := 0; blockV < int(sc.ch.V); blockV++ {
					for blockH := 0; blockH < int(sc.ch.H); blockH++ {
						zz, err := d.readBlock(sc)
						if err != nil {
							return err
						}
						reconstructBlock(&zz, sc.quant, sc.plane[blockV*8*sc.stride+blockH*8:], sc.stride)
					}
				}
			}
			d.emitMCU(channels, mcuY, mcuX, mcuPxW, mcuPxH, convert)
		}
	}
	return nil
}

// emitMCU samples every channel plane with nearest-neighbour replication,
// converts to RGB and writes the MCU's pixel rectangle into the raster.
func (d *decoder) emitMCU(channels []*scanChannel, mcuY, mcuX, mcuPxW, mcuPxH int, convert func(y, cb, cr uint8) RGB) {
	baseY := mcuY * mcuPxH
	baseX := mcuX * mcuPxW
	for my := 0; my < mcuPxH; my++ {
		y := baseY + my
		if y >= d.frame.Height {
			break
		}
		for mx := 0; mx < mcuPxW; mx++ {
			x := baseX + mx
			if x >= d.frame.Width {
				break
			}
			// Missing chroma channels sit at the neutral midpoint.
			lum, cb, cr := uint8(0), uint8(128), uint8(128)
			for i, sc := range channels {
				s := sc.plane[(my/sc.sy)*sc.stride+mx/sc.sx]
				switch i {
				case 0:
					lum = s
				case 1:
					cb = s
				case 2:
					cr = s
				}
			}
			d.raw.set(y, x, convert(lum, cb, cr))
		}
	}
}

// reconstructBlock runs the coefficient pipeline for one block:
// dequantization and inverse zig-zag fused into one pass, IDCT, then level
// shift and clamp into the destination plane window.
func reconstructBlock(zz *[blockSize]int16, quant *QuantTable, dst []uint8, stride int) {
	var f [blockSize]float64
	for i := 0; i < blockSize; i++ {
		f[i] = float64(int32(zz[zigZag[i]]) * int32(quant.Values[i]))
	}
	idct8x8(&f)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			dst[row*stride+col] = clampSample(roundHalfAway(f[row*8+col]) + 128)
		}
	}
}

func clampSample(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
