package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/davesmith10/jpgtranscode/internal/color"
	"github.com/davesmith10/jpgtranscode/internal/config"
	"github.com/davesmith10/jpgtranscode/internal/ir"
	"github.com/davesmith10/jpgtranscode/internal/transcode"
)

// maxInputSize bounds the buffer allocated for the input file.
const maxInputSize = 1 << 30

func newTranscodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcode",
		Short: "Decode a JPEG and re-encode it at a new quality",
		Args:  cobra.NoArgs,
		RunE:  runTranscode,
	}
	cmd.Flags().IntP("quality", "q", 75, "Output JPEG quality (0-100)")
	cmd.Flags().StringP("input", "i", "", "Input JPEG file")
	cmd.Flags().StringP("output", "o", "", "Output JPEG file")
	cmd.Flags().String("config", "", "YAML config file")
	cmd.Flags().Int("scale", 1, "Decode at 1/N size (1, 2, 4, 8)")
	cmd.Flags().Bool("keep-icc", false, "Carry the source ICC profile into the output")
	cmd.Flags().String("icc", "", "ICC profile to embed instead of the source one")
	cmd.Flags().Bool("optimize", false, "Compute optimal Huffman tables")
	cmd.Flags().Int("max-pixels", 0, "Refuse sources with more pixels than this (default 100M, negative = no limit)")
	return cmd
}

// loadConfig merges the config file, if any, with explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	} else if !flags.Changed("quality") {
		return nil, errors.New("quality is required: pass -q N or --config")
	}

	if flags.Changed("quality") {
		cfg.Quality, _ = flags.GetInt("quality")
	}
	if flags.Changed("input") {
		cfg.Input, _ = flags.GetString("input")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("scale") {
		cfg.Scale, _ = flags.GetInt("scale")
	}
	if flags.Changed("keep-icc") {
		cfg.KeepICC, _ = flags.GetBool("keep-icc")
	}
	if flags.Changed("icc") {
		cfg.ICC, _ = flags.GetString("icc")
	}
	if flags.Changed("optimize") {
		cfg.Optimize, _ = flags.GetBool("optimize")
	}
	if flags.Changed("max-pixels") {
		cfg.MaxPixels, _ = flags.GetInt("max-pixels")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTranscode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return withExit(exitUsage, err)
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return withExit(exitUsage, err)
	}
	cmd.SilenceUsage = true

	var icc []byte
	if cfg.ICC != "" {
		if icc, err = color.LoadProfile(cfg.ICC); err != nil {
			if errors.Is(err, color.ErrInvalidProfile) {
				return withExit(exitUsage, err)
			}
			return withExit(exitOpen, err)
		}
	}

	src, err := readInput(cfg.Input)
	if err != nil {
		return err
	}

	res, err := transcode.Run(src, transcode.Options{
		Quality:        cfg.Quality,
		Scale:          cfg.Scale,
		KeepICC:        cfg.KeepICC,
		ICC:            icc,
		OptimizeCoding: cfg.Optimize,
		MaxPixels:      cfg.MaxPixels,
	})
	if err != nil {
		if errors.Is(err, ir.ErrAllocation) {
			return withExit(exitAllocation, fmt.Errorf("transcoding %s: %w", cfg.Input, err))
		}
		return withExit(exitTranscode, fmt.Errorf("transcoding %s: %w", cfg.Input, err))
	}

	if err := os.WriteFile(cfg.Output, res.Data, 0644); err != nil {
		return withExit(exitWrite, fmt.Errorf("writing output: %w", err))
	}

	slog.Info("jpgtranscode: wrote output",
		"session", res.SessionID,
		"input", cfg.Input,
		"output", cfg.Output,
		"in_bytes", len(src),
		"out_bytes", len(res.Data),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Transcoded %dx%d q%d → %s (%d bytes, was %d)\n",
		res.Width, res.Height, cfg.Quality, cfg.Output, len(res.Data), len(src))
	return nil
}

// readInput loads the whole input file, mapping each failure to its exit code.
func readInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, withExit(exitOpen, fmt.Errorf("opening input: %w", err))
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, withExit(exitStat, fmt.Errorf("stat input: %w", err))
	}
	if !st.Mode().IsRegular() {
		return nil, withExit(exitStat, fmt.Errorf("input %s is not a regular file", path))
	}
	if st.Size() > maxInputSize {
		return nil, withExit(exitAllocation,
			fmt.Errorf("%w: input is %d bytes (max %d)", ir.ErrAllocation, st.Size(), maxInputSize))
	}

	buf := make([]byte, st.Size())
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, withExit(exitOpen, fmt.Errorf("reading input: %w", err))
	}
	return buf, nil
}
