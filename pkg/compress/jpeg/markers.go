// Package jpeg implements a baseline JPEG decoder: sequential DCT, Huffman
// entropy coding, 8-bit sample precision as specified in ITU-T Rec. T.81 |
// ISO/IEC 10918-1. Progressive, hierarchical, arithmetic-coded and lossless
// processes are not supported, nor are restart intervals.
package jpeg

import "fmt"

// JPEG marker codes (ITU-T T.81 Table B.1)
const (
	MarkerSOI = 0xFFD8 // Start of image
	MarkerEOI = 0xFFD9 // End of image

	MarkerSOF0 = 0xFFC0 // Baseline DCT frame header
	MarkerDHT  = 0xFFC4 // Define Huffman table(s)
	MarkerDQT  = 0xFFDB // Define quantization table(s)
	MarkerSOS  = 0xFFDA // Start of scan
	MarkerDRI  = 0xFFDD // Define restart interval

	MarkerCOM   = 0xFFFE // Comment
	MarkerAPP0  = 0xFFE0 // Application segment 0 (JFIF)
	MarkerAPP15 = 0xFFEF // Application segment 15
)

// markerKind is the dispatch variant over recognized marker codes. The scan
// over a file is a state machine driven by this tag.
type markerKind int

const (
	markerBeginFile markerKind = iota
	markerEndFile
	markerComment
	markerApp
	markerQuant
	markerFrame
	markerHuffman
	markerScan
)

// kindOf classifies a marker code. The second return reports whether the
// code is recognized at all; unrecognized codes are fatal for the decode.
func kindOf(code uint16) (markerKind, bool) {
	switch {
	case code == MarkerSOI:
		return markerBeginFile, true
	case code == MarkerEOI:
		return markerEndFile, true
	case code == MarkerCOM:
		return markerComment, true
	case code == MarkerDQT:
		return markerQuant, true
	case code == MarkerSOF0:
		return markerFrame, true
	case code == MarkerDHT:
		return markerHuffman, true
	case code == MarkerSOS:
		return markerScan, true
	case code >= MarkerAPP0 && code <= MarkerAPP15:
		return markerApp, true
	}
	return 0, false
}

// isSOF reports whether code is any start-of-frame marker. SOF1..SOF15
// (minus DHT/JPG/DAC which share the 0xFFCn block) signal coding processes
// beyond baseline.
func isSOF(code uint16) bool {
	if code < 0xFFC0 || code > 0xFFCF {
		return false
	}
	switch code {
	case MarkerDHT, 0xFFC8, 0xFFCC: // DHT, JPG, DAC
		return false
	}
	return true
}

// markerName returns the conventional short name for a marker code, used by
// the structure analyzer.
func markerName(code uint16) string {
	switch code {
	case MarkerSOI:
		return "SOI"
	case MarkerEOI:
		return "EOI"
	case MarkerSOF0:
		return "SOF0"
	case MarkerDHT:
		return "DHT"
	case MarkerDQT:
		return "DQT"
	case MarkerSOS:
		return "SOS"
	case MarkerDRI:
		return "DRI"
	case MarkerCOM:
		return "COM"
	}
	if code >= MarkerAPP0 && code <= MarkerAPP15 {
		return fmt.Sprintf("APP%d", code-MarkerAPP0)
	}
	return "UNKNOWN"
}
