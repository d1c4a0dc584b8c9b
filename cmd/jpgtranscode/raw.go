package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davesmith10/jpgtranscode/internal/color"
	"github.com/davesmith10/jpgtranscode/internal/ir"
	"github.com/davesmith10/jpgtranscode/internal/jpeg"
	"github.com/davesmith10/jpgtranscode/internal/transcode"
)

// rawFormat names the packed 8-bit R,G,B layout of .raw files.
const rawFormat = "RGB8"

// rawMeta is the JSON sidecar written next to a raw pixel file.
type rawMeta struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
	SrcComponents int    `json:"src_components,omitempty"`
	SrcQuality    int    `json:"src_quality,omitempty"`
	ICC           string `json:"icc,omitempty"` // path of the extracted ICC profile
}

func sidecarPath(rawPath, ext string) string {
	return strings.TrimSuffix(rawPath, ".raw") + ext
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a JPEG to raw RGB (raw output + JSON sidecar)",
		Args:  cobra.NoArgs,
		RunE:  runDecode,
	}
	cmd.Flags().StringP("input", "i", "", "Input JPEG file")
	cmd.Flags().StringP("output", "o", "", "Output raw RGB file")
	cmd.Flags().Int("scale", 1, "Decode at 1/N size (1, 2, 4, 8)")
	cmd.Flags().Int("max-pixels", transcode.DefaultMaxPixels, "Refuse sources with more pixels than this (negative = no limit)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	scale, _ := cmd.Flags().GetInt("scale")
	maxPixels, _ := cmd.Flags().GetInt("max-pixels")
	cmd.SilenceUsage = true

	data, err := readInput(inputPath)
	if err != nil {
		return err
	}

	opts := jpeg.DecodeOptions{Scale: scale, MaxPixels: max(maxPixels, 0)}
	info, err := jpeg.Probe(data, opts)
	if err != nil {
		return withExit(exitTranscode, fmt.Errorf("decoding: %w", err))
	}
	decoded, err := jpeg.DecodeRGB(data, opts)
	if err != nil {
		if errors.Is(err, ir.ErrAllocation) {
			return withExit(exitAllocation, fmt.Errorf("decoding: %w", err))
		}
		return withExit(exitTranscode, fmt.Errorf("decoding: %w", err))
	}

	if err := os.WriteFile(outputPath, decoded.Pixels, 0644); err != nil {
		return withExit(exitWrite, fmt.Errorf("writing raw RGB: %w", err))
	}

	meta := rawMeta{
		Width:         decoded.Width,
		Height:        decoded.Height,
		Format:        rawFormat,
		SrcComponents: info.NumComponents,
		SrcQuality:    info.Quality,
	}
	if keepProfile(decoded.ICC) {
		meta.ICC = sidecarPath(outputPath, ".icc")
		if err := os.WriteFile(meta.ICC, decoded.ICC, 0644); err != nil {
			return withExit(exitWrite, fmt.Errorf("writing ICC profile: %w", err))
		}
	}

	metaJSON, _ := json.MarshalIndent(meta, "", "  ")
	metaPath := sidecarPath(outputPath, ".json")
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return withExit(exitWrite, fmt.Errorf("writing sidecar: %w", err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Decoded %dx%d → raw RGB (%d bytes)\n", decoded.Width, decoded.Height, len(decoded.Pixels))
	fmt.Fprintf(out, "Sidecar: %s\n", metaPath)
	return nil
}

// keepProfile reports whether icc can describe the RGB pixels written out.
func keepProfile(icc []byte) bool {
	if icc == nil {
		return false
	}
	pi, err := color.ParseProfileInfo(icc)
	return err == nil && pi.MatchesComponents(ir.BytesPerPixel)
}

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode raw RGB data to JPEG",
		Long: "Encode raw RGB data to JPEG. Dimensions and the ICC profile come from\n" +
			"the JSON sidecar written by decode unless given as flags.",
		Args: cobra.NoArgs,
		RunE: runEncode,
	}
	cmd.Flags().StringP("input", "i", "", "Input raw RGB file")
	cmd.Flags().StringP("output", "o", "", "Output JPEG file")
	cmd.Flags().String("icc", "", "ICC profile to embed")
	cmd.Flags().Int("width", 0, "Image width")
	cmd.Flags().Int("height", 0, "Image height")
	cmd.Flags().IntP("quality", "q", 85, "JPEG quality (0-100)")
	cmd.Flags().Bool("optimize", false, "Compute optimal Huffman tables")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

func runEncode(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	inputPath, _ := flags.GetString("input")
	outputPath, _ := flags.GetString("output")
	iccPath, _ := flags.GetString("icc")
	width, _ := flags.GetInt("width")
	height, _ := flags.GetInt("height")
	quality, _ := flags.GetInt("quality")
	optimize, _ := flags.GetBool("optimize")

	if !flags.Changed("width") || !flags.Changed("height") || !flags.Changed("icc") {
		meta, err := readSidecar(sidecarPath(inputPath, ".json"))
		switch {
		case err == nil:
			if !flags.Changed("width") {
				width = meta.Width
			}
			if !flags.Changed("height") {
				height = meta.Height
			}
			if !flags.Changed("icc") {
				iccPath = meta.ICC
			}
		case !flags.Changed("width") || !flags.Changed("height"):
			return withExit(exitUsage, fmt.Errorf("--width and --height are required without a sidecar: %w", err))
		}
	}
	if width <= 0 || height <= 0 {
		return withExit(exitUsage, fmt.Errorf("invalid dimensions %dx%d", width, height))
	}
	cmd.SilenceUsage = true

	pixels, err := readInput(inputPath)
	if err != nil {
		return err
	}
	if expected := width * height * ir.BytesPerPixel; len(pixels) != expected {
		return withExit(exitUsage, fmt.Errorf("expected %d bytes for %dx%d RGB, got %d", expected, width, height, len(pixels)))
	}

	img := &ir.RGBImage{Width: width, Height: height, Pixels: pixels}
	if iccPath != "" {
		if img.ICC, err = color.LoadProfile(iccPath); err != nil {
			if errors.Is(err, color.ErrInvalidProfile) {
				return withExit(exitUsage, err)
			}
			return withExit(exitOpen, err)
		}
	}

	encoded, err := jpeg.EncodeRGB(img, jpeg.EncoderOptions{
		Quality:         quality,
		OptimizeCoding:  optimize,
		InitialCapacity: len(pixels) / 8,
	})
	if err != nil {
		return withExit(exitTranscode, fmt.Errorf("encoding: %w", err))
	}

	if err := os.WriteFile(outputPath, encoded, 0644); err != nil {
		return withExit(exitWrite, fmt.Errorf("writing output: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Encoded %dx%d RGB → %s (%d bytes)\n", width, height, outputPath, len(encoded))
	return nil
}

func readSidecar(path string) (*rawMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta rawMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing sidecar %s: %w", path, err)
	}
	if meta.Format != rawFormat {
		return nil, fmt.Errorf("sidecar %s: unsupported format %q", path, meta.Format)
	}
	return &meta, nil
}
