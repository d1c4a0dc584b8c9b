package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davesmith10/jpgtranscode/internal/color"
	"github.com/davesmith10/jpgtranscode/internal/jpeg"
)

func newIdentifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify [file]",
		Short: "Inspect JPEG header and ICC profile info",
		Args:  cobra.ExactArgs(1),
		RunE:  runIdentify,
	}
	cmd.Flags().Int("scale", 1, "Report dimensions when decoding at 1/N size")
	return cmd
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	scale, _ := cmd.Flags().GetInt("scale")
	cmd.SilenceUsage = true

	data, err := os.ReadFile(path)
	if err != nil {
		return withExit(exitOpen, fmt.Errorf("reading %s: %w", path, err))
	}

	info, err := jpeg.Probe(data, jpeg.DecodeOptions{Scale: scale})
	if err != nil {
		return withExit(exitTranscode, fmt.Errorf("parsing %s: %w", path, err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:        %s\n", path)
	fmt.Fprintf(out, "Dimensions:  %d x %d\n", info.ImageWidth, info.ImageHeight)
	if info.Width != info.ImageWidth || info.Height != info.ImageHeight {
		fmt.Fprintf(out, "Scaled 1/%d: %d x %d\n", scale, info.Width, info.Height)
	}
	fmt.Fprintf(out, "Components:  %d (%d bpp)\n", info.NumComponents, info.BitsPerPixel)
	fmt.Fprintf(out, "Color space: %s\n", info.ColorSpace)
	fmt.Fprintf(out, "Progressive: %t\n", info.Progressive)
	if info.Quality > 0 {
		fmt.Fprintf(out, "Quality:     ~%d\n", info.Quality)
	}
	fmt.Fprintf(out, "File size:   %d bytes (%.1f KB)\n", len(data), float64(len(data))/1024)

	if info.ICC != nil {
		pi, err := color.ParseProfileInfo(info.ICC)
		if err != nil {
			fmt.Fprintf(out, "ICC profile: present (%d bytes) but invalid: %v\n", len(info.ICC), err)
		} else {
			fmt.Fprintf(out, "ICC profile: %d bytes\n", len(info.ICC))
			fmt.Fprintf(out, "  Version:     %s\n", pi.Version)
			fmt.Fprintf(out, "  Color space: %s\n", color.ColorSpaceName(pi.ColorSpace))
			fmt.Fprintf(out, "  PCS:         %s\n", color.ColorSpaceName(pi.PCS))
			fmt.Fprintf(out, "  Class:       %s\n", color.ProfileClassName(pi.Class))
		}
	} else {
		fmt.Fprintln(out, "ICC profile: none")
	}

	return nil
}
