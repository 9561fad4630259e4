package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpfielding/jpegs/pkg/compress/jpeg"
	"github.com/jpfielding/jpegs/pkg/util"
)

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze JPEG file structure",
		Long:  "Walks the marker structure of a JPEG file and displays segments, tables and frame metadata without decoding the image data.",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closer, err := openInput(ctx, cmd, args)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer()
			}

			rep, err := jpeg.Analyze(in)
			if err != nil {
				return fmt.Errorf("analyze error: %w", err)
			}

			switch format, _ := cmd.Flags().GetString("format"); format {
			case "json":
				out := struct {
					ID string `json:"id"`
					*jpeg.Report
				}{ID: util.HashUUID(rep), Report: rep}
				j, _ := json.MarshalIndent(out, "", "  ")
				os.Stdout.Write(j)
				fmt.Println()
			default:
				printReport(rep)
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("uri", "u", "", "JPEG URI to analyze (file path, http(s) URL, or - for stdin)")
	pf.StringP("format", "f", "text", "output format (text|json)")
	return cmd
}

func printReport(rep *jpeg.Report) {
	fmt.Printf("Report ID: %s\n\n", util.HashUUID(rep))
	fmt.Println("=== Segments ===")
	for _, s := range rep.Segments {
		fmt.Printf("%8d  %-6s (0x%04X)  %d bytes\n", s.Offset, s.Name, s.Marker, s.Length)
	}
	fmt.Println()
	if rep.Frame != nil {
		fmt.Println("=== Frame ===")
		fmt.Printf("Precision: %d\n", rep.Frame.Precision)
		fmt.Printf("Size: %dx%d\n", rep.Frame.Width, rep.Frame.Height)
		for _, c := range rep.Frame.Channels {
			fmt.Printf("Channel %d: sampling %dx%d, quant table %d\n", c.ID, c.H, c.V, c.QuantID)
		}
		fmt.Println()
	}
	fmt.Printf("Quantization tables: %v\n", rep.QuantIDs)
	fmt.Printf("Huffman DC tables: %v\n", rep.HuffmanDC)
	fmt.Printf("Huffman AC tables: %v\n", rep.HuffmanAC)
	fmt.Printf("Entropy-coded bytes: %d\n", rep.EntropySize)
	if rep.Comment != "" {
		fmt.Printf("Comment: %q\n", rep.Comment)
	}
}
