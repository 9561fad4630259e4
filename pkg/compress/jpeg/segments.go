package jpeg

import "fmt"

// readMarkerKind reads the next two-byte marker and classifies it. SOF
// markers other than SOF0 are recognized but unsupported coding processes;
// everything else outside the dispatch table is an unsupported marker.
func (d *decoder) readMarkerKind() (markerKind, error) {
	code, err := d.br.ReadUint16()
	if err != nil {
		return 0, err
	}
	kind, ok := kindOf(code)
	if !ok {
		if isSOF(code) {
			return 0, fmt.Errorf("%w: %s frame (0x%04X)", ErrUnsupportedProfile, markerName(code), code)
		}
		return 0, fmt.Errorf("%w: 0x%04X", ErrUnsupportedMarker, code)
	}
	return kind, nil
}

// readSegmentLength reads the big-endian length field that opens every
// non-SOI/EOI segment and returns the number of payload bytes that follow
// it. The declared length includes the two length bytes themselves.
func (d *decoder) readSegmentLength() (int, error) {
	sz, err := d.br.ReadUint16()
	if err != nil {
		return 0, err
	}
	if sz < 2 {
		return 0, fmt.Errorf("%w: declared length %d", ErrMalformedSegment, sz)
	}
	return int(sz) - 2, nil
}

// readComment captures a COM segment payload. Only the first comment in
// the file is retained.
func (d *decoder) readComment() error {
	sz, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	body := make([]byte, sz)
	for i := range body {
		body[i], err = d.br.ReadByte()
		if err != nil {
			return err
		}
	}
	if !d.haveComment {
		d.comment = string(body)
		d.haveComment = true
	}
	return nil
}

// skipSegment discards a length-framed segment payload. APPn payloads,
// including JFIF density fields and Exif, are thrown away unconditionally.
func (d *decoder) skipSegment() error {
	sz, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	return d.br.Skip(sz)
}

// readQuantTables parses a DQT body: one or more tables, each a
// precision/id byte followed by 64 entries in zig-zag scan order. Stored
// tables are reordered into natural order.
func (d *decoder) readQuantTables() error {
	sz, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	for sz > 0 {
		pq, err := d.br.ReadByte()
		if err != nil {
			return err
		}
		sz--
		precision := pq >> 4
		id := pq & 0x0F
		var width int
		switch precision {
		case 0:
			width = 1
		case 1:
			width = 2
		default:
			return fmt.Errorf("%w: quantization element precision %d", ErrMalformedSegment, precision)
		}
		if sz < blockSize*width {
			return fmt.Errorf("%w: DQT payload short of %d entries", ErrMalformedSegment, blockSize)
		}
		sz -= blockSize * width

		var scan [blockSize]uint16
		for i := range scan {
			if width == 1 {
				v, err := d.br.ReadByte()
				if err != nil {
					return err
				}
				scan[i] = uint16(v)
			} else {
				v, err := d.br.ReadUint16()
				if err != nil {
					return err
				}
				scan[i] = v
			}
		}

		if _, dup := d.quant[id]; dup {
			return fmt.Errorf("%w: duplicate quantization table %d", ErrMalformedTable, id)
		}
		tab := &QuantTable{ID: id}
		for i := range tab.Values {
			tab.Values[i] = scan[zigZag[i]]
		}
		d.quant[id] = tab
	}
	return nil
}

// readHuffmanTables parses a DHT body: one or more tables, each a class/id
// byte, 16 code length counts, then the symbol values.
func (d *decoder) readHuffmanTables() error {
	sz, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	for sz > 0 {
		if sz < 1+maxCodeLength {
			return fmt.Errorf("%w: DHT payload of %d bytes", ErrMalformedSegment, sz)
		}
		tc, err := d.br.ReadByte()
		if err != nil {
			return err
		}
		sz--
		class := tableClass(tc >> 4)
		id := tc & 0x0F
		if class != classDC && class != classAC {
			return fmt.Errorf("%w: huffman table class %d", ErrMalformedSegment, tc>>4)
		}

		lengths := make([]uint8, maxCodeLength)
		total := 0
		for i := range lengths {
			lengths[i], err = d.br.ReadByte()
			if err != nil {
				return err
			}
			total += int(lengths[i])
		}
		sz -= maxCodeLength
		if total > sz {
			return fmt.Errorf("%w: DHT declares %d symbols, %d bytes remain", ErrMalformedSegment, total, sz)
		}
		values := make([]uint8, total)
		for i := range values {
			values[i], err = d.br.ReadByte()
			if err != nil {
				return err
			}
		}
		sz -= total

		key := huffKey{class: class, id: id}
		if _, dup := d.huff[key]; dup {
			return fmt.Errorf("%w: duplicate %s huffman table %d", ErrMalformedTable, class, id)
		}
		tree := &HuffmanTree{}
		if err := tree.Build(lengths, values); err != nil {
			return err
		}
		d.huff[key] = tree
	}
	return nil
}

// readFrameHeader parses the SOF0 body. Baseline requires 8-bit precision,
// non-zero dimensions, 1..4 channels and a residual length of exactly
// 6 + 3*channels.
func (d *decoder) readFrameHeader() error {
	if d.frame != nil {
		return fmt.Errorf("%w: more than one frame header", ErrUnsupportedProfile)
	}
	sz, err := d.readSegmentLength()
	if err != nil {
		return err
	}
	if sz < 6 {
		return fmt.Errorf("%w: SOF0 payload of %d bytes", ErrMalformedSegment, sz)
	}

	precision, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	height, err := d.br.ReadUint16()
	if err != nil {
		return err
	}
	width, err := d.br.ReadUint16()
	if err != nil {
		return err
	}
	count, err := d.br.ReadByte()
	if err != nil {
		return err
	}

	if precision != 8 {
		return fmt.Errorf("%w: sample precision %d", ErrUnsupportedProfile, precision)
	}
	if height == 0 || width == 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrMalformedSegment, width, height)
	}
	if count < 1 || count > 4 {
		return fmt.Errorf("%w: %d channels in frame", ErrMalformedSegment, count)
	}
	if sz != 6+3*int(count) {
		return fmt.Errorf("%w: SOF0 length %d for %d channels", ErrMalformedSegment, sz, count)
	}

	frame := &FrameHeader{
		Precision: precision,
		Height:    int(height),
		Width:     int(width),
		Channels:  make([]Channel, count),
	}
	for i := range frame.Channels {
		id, err := d.br.ReadByte()
		if err != nil {
			return err
		}
		hv, err := d.br.ReadByte()
		if err != nil {
			return err
		}
		quantID, err := d.br.ReadByte()
		if err != nil {
			return err
		}
		h, v := hv>>4, hv&0x0F
		if h < 1 || h > 4 || v < 1 || v > 4 {
			return fmt.Errorf("%w: sampling factors %dx%d for channel %d", ErrMalformedSegment, h, v, id)
		}
		for _, prev := range frame.Channels[:i] {
			if prev.ID == id {
				return fmt.Errorf("%w: duplicate channel id %d", ErrMalformedSegment, id)
			}
		}
		frame.Channels[i] = Channel{ID: id, H: h, V: v, QuantID: quantID}
	}
	d.frame = frame
	return nil
}
