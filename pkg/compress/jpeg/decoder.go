package jpeg

import (
	"fmt"
	"io"
)

// decoder owns the tables and headers produced by segment parsing and
// drives the scan. The raster is materialized internally so that a failing
// decode never leaks a partial image to the caller.
type decoder struct {
	br   *BitReader
	opts Options

	frame       *FrameHeader
	quant       map[uint8]*QuantTable
	huff        map[huffKey]*HuffmanTree
	comment     string
	haveComment bool
	scanned     bool

	raw *RawImage
}

func newDecoder(r io.Reader, opts *Options) *decoder {
	d := &decoder{
		br:    NewBitReader(r),
		quant: make(map[uint8]*QuantTable),
		huff:  make(map[huffKey]*HuffmanTree),
	}
	if opts != nil {
		d.opts = *opts
	}
	return d
}

// run processes the marker stream from SOI to EOI. With headerOnly set it
// stops once the frame header is known, leaving the entropy data unread.
func (d *decoder) run(headerOnly bool) error {
	kind, err := d.readMarkerKind()
	if err != nil || kind != markerBeginFile {
		return fmt.Errorf("%w: first marker is not SOI", ErrNoSOI)
	}

	for {
		kind, err := d.readMarkerKind()
		if err != nil {
			return err
		}
		switch kind {
		case markerEndFile:
			if !d.scanned {
				return fmt.Errorf("%w: EOI before any scan", ErrMalformedStream)
			}
			return nil
		case markerBeginFile:
			return fmt.Errorf("%w: second SOI marker", ErrMalformedSegment)
		case markerComment:
			err = d.readComment()
		case markerApp:
			err = d.skipSegment()
		case markerQuant:
			err = d.readQuantTables()
		case markerHuffman:
			err = d.readHuffmanTables()
		case markerFrame:
			err = d.readFrameHeader()
			if err == nil && headerOnly {
				return nil
			}
		case markerScan:
			if d.scanned {
				return fmt.Errorf("%w: multi-scan file", ErrUnsupportedProfile)
			}
			channels, herr := d.readScanHeader()
			if herr != nil {
				return herr
			}
			d.raw = newRawImage(d.frame.Width, d.frame.Height)
			if err = d.decodeScan(channels); err == nil {
				d.br.Align()
				d.scanned = true
			}
		}
		if err != nil {
			return err
		}
	}
}

// decode runs the full pipeline and returns the finished raster.
func (d *decoder) decode() (*RawImage, error) {
	if err := d.run(false); err != nil {
		return nil, err
	}
	d.raw.Comment = d.comment
	return d.raw, nil
}
