package jpeg

import (
	"image"
	"image/color"
	"io"
)

// Options configures a decode.
type Options struct {
	// FastColor selects the integer fixed-point YCbCr conversion instead
	// of the floating-point reference. Output stays within one level per
	// component of the reference for chroma near neutral; the gap grows
	// with the chroma deflection and reaches several levels at the extremes.
	FastColor bool
}

// ImageSink receives a decoded image. The decoder calls SetBounds exactly
// once, before any pixel, then SetPixel for every (y, x) inside the
// bounds, and SetComment with the file's comment (empty when absent).
type ImageSink interface {
	SetBounds(width, height int)
	SetPixel(y, x int, c RGB)
	SetComment(comment string)
}

// RawImage is a decoded raster: interleaved RGB rows plus the comment
// embedded in the file. It implements ImageSink.
type RawImage struct {
	Width, Height int
	Comment       string
	Pix           []uint8 // R, G, B per pixel, row-major
}

func newRawImage(width, height int) *RawImage {
	return &RawImage{Width: width, Height: height, Pix: make([]uint8, 3*width*height)}
}

// SetBounds reallocates the raster for the given dimensions.
func (r *RawImage) SetBounds(width, height int) {
	*r = RawImage{Width: width, Height: height, Pix: make([]uint8, 3*width*height)}
}

// SetPixel stores one pixel.
func (r *RawImage) SetPixel(y, x int, c RGB) {
	r.set(y, x, c)
}

// SetComment stores the file comment.
func (r *RawImage) SetComment(comment string) {
	r.Comment = comment
}

func (r *RawImage) set(y, x int, c RGB) {
	i := 3 * (y*r.Width + x)
	r.Pix[i] = c.R
	r.Pix[i+1] = c.G
	r.Pix[i+2] = c.B
}

// At returns the pixel at (y, x).
func (r *RawImage) At(y, x int) RGB {
	i := 3 * (y*r.Width + x)
	return RGB{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2]}
}

// Plane extracts a single component plane: 0 for R, 1 for G, 2 for B.
func (r *RawImage) Plane(c int) []uint8 {
	plane := make([]uint8, r.Width*r.Height)
	for i := range plane {
		plane[i] = r.Pix[3*i+c]
	}
	return plane
}

// DecodeRaw decodes a baseline JPEG stream into a RawImage.
func DecodeRaw(r io.Reader, opts *Options) (*RawImage, error) {
	return newDecoder(r, opts).decode()
}

// DecodeInto decodes a baseline JPEG stream and replays the finished
// raster into sink. The sink sees nothing when the decode fails.
func DecodeInto(r io.Reader, sink ImageSink, opts *Options) error {
	raw, err := DecodeRaw(r, opts)
	if err != nil {
		return err
	}
	sink.SetBounds(raw.Width, raw.Height)
	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			sink.SetPixel(y, x, raw.At(y, x))
		}
	}
	sink.SetComment(raw.Comment)
	return nil
}

// Decode reads a baseline JPEG image.
func Decode(r io.Reader) (image.Image, error) {
	raw, err := DecodeRaw(r, nil)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, raw.Width, raw.Height))
	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			c := raw.At(y, x)
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img, nil
}

// DecodeConfig returns the image configuration without decoding the
// entropy data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	d := newDecoder(r, nil)
	if err := d.run(true); err != nil {
		return image.Config{}, err
	}
	model := color.Model(color.RGBAModel)
	if len(d.frame.Channels) == 1 {
		model = color.GrayModel
	}
	return image.Config{
		Width:      d.frame.Width,
		Height:     d.frame.Height,
		ColorModel: model,
	}, nil
}

// Register format with image package
func init() {
	image.RegisterFormat("jpeg", "\xff\xd8\xff", Decode, DecodeConfig)
}
