package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/jpegs/pkg/compress/jpeg"
	"github.com/jpfielding/jpegs/pkg/compress/rle"
)

// NewDecodeCmd creates the decode cobra command
func NewDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "baseline JPEG decode",
		Long:  "Decodes a baseline JPEG file and writes the raster as PNG or raw component planes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closer, err := openInput(ctx, cmd, args)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer()
			}

			fast, _ := cmd.Flags().GetBool("fast")
			raw, err := jpeg.DecodeRaw(in, &jpeg.Options{FastColor: fast})
			if err != nil {
				return fmt.Errorf("decode failed: %w", err)
			}
			slog.InfoContext(ctx, "decoded", "width", raw.Width, "height", raw.Height, "comment", raw.Comment)

			outPath, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "png":
				return writePNG(raw, outPath)
			case "raw":
				compress, _ := cmd.Flags().GetBool("compress")
				return writePlanes(raw, outPath, compress)
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "JPEG URI to decode (file path, http(s) URL, or - for stdin)")
	pf.StringP("out", "o", "decoded.png", "output path")
	pf.StringP("format", "f", "png", "output format (png|raw)")
	pf.Bool("fast", false, "use the integer fixed-point color conversion")
	pf.Bool("compress", false, "PackBits-compress raw component planes")
	return cmd
}

// openInput resolves the --uri flag (or first argument) into a reader.
func openInput(ctx context.Context, cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	path, _ := cmd.Flags().GetString("uri")
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	path = strings.TrimPrefix(path, "file://")
	switch {
	case path == "":
		return nil, nil, fmt.Errorf("input is required. Use --uri flag or provide as argument")
	case path == "-":
		return os.Stdin, nil, nil
	case strings.HasPrefix(path, "http"):
		cl := &http.Client{
			Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create request: %v", err)
		}
		resp, err := cl.Do(req)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to download: %v", err)
		}
		return resp.Body, func() { resp.Body.Close() }, nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file: %v", err)
		}
		return f, func() { f.Close() }, nil
	}
}

func writePNG(raw *jpeg.RawImage, outPath string) error {
	img := image.NewRGBA(image.Rect(0, 0, raw.Width, raw.Height))
	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			c := raw.At(y, x)
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// writePlanes dumps the R, G and B component planes as <out>.[rgb],
// optionally PackBits-compressed.
func writePlanes(raw *jpeg.RawImage, outPath string, compress bool) error {
	for c, suffix := range []string{".r", ".g", ".b"} {
		plane := raw.Plane(c)
		if compress {
			plane = rle.Encode(plane)
		}
		if err := os.WriteFile(outPath+suffix, plane, 0644); err != nil {
			return err
		}
	}
	return nil
}
