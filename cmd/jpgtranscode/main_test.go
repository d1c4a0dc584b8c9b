package main

import (
	"bytes"
	"errors"
	"image"
	stdjpeg "image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 24, 16))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 0xFF, 0xFF
	}
	var buf bytes.Buffer
	if err := stdjpeg.Encode(&buf, img, &stdjpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "in.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the command tree and returns stdout and the exit code.
func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err != nil {
		t.Logf("%v: %v", args, err)
	}
	return out.String(), exitCode(err)
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != exitOK {
		t.Error("nil error should exit 0")
	}
	if exitCode(errors.New("unknown flag")) != exitUsage {
		t.Error("plain errors are usage errors")
	}
	wrapped := errors.Join(errors.New("context"), withExit(exitWrite, errors.New("disk full")))
	if exitCode(wrapped) != exitWrite {
		t.Errorf("wrapped exit error: got %d", exitCode(wrapped))
	}
}

func TestTranscodeCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	out := filepath.Join(dir, "out.jpg")

	stdout, code := run(t, "transcode", "-q", "40", "-i", in, "-o", out, "--log-level", "warn")
	if code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout, "24x16") {
		t.Errorf("unexpected output %q", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("output file is not a JPEG")
	}
}

func TestTranscodeCommandConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	out := filepath.Join(dir, "scaled.jpg")
	cfgPath := filepath.Join(dir, "cfg.yaml")
	body := "input: " + in + "\noutput: " + out + "\nquality: 60\nscale: 2\nlog_level: error\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, code := run(t, "transcode", "--config", cfgPath)
	if code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout, "12x8") {
		t.Errorf("expected half-size output, got %q", stdout)
	}
}

// writeHugeFrame copies the fixture with its SOF0 header claiming 65500x65500.
func writeHugeFrame(t *testing.T, dir, fixture string) string {
	t.Helper()
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	for i := 2; i+8 < len(data); i += 2 + (int(data[i+2])<<8 | int(data[i+3])) {
		if data[i+1] == 0xC0 {
			data[i+5], data[i+6], data[i+7], data[i+8] = 0xFF, 0xDC, 0xFF, 0xDC
			path := filepath.Join(dir, "huge.jpg")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			return path
		}
	}
	t.Fatal("no SOF0 marker in fixture")
	return ""
}

func TestTranscodeCommandExitCodes(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	huge := writeHugeFrame(t, dir, in)
	bad := filepath.Join(dir, "bad.jpg")
	if err := os.WriteFile(bad, []byte("not a jpeg at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.jpg")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing quality", []string{"transcode", "-i", in, "-o", out}, exitUsage},
		{"quality out of range", []string{"transcode", "-q", "101", "-i", in, "-o", out}, exitUsage},
		{"bad scale", []string{"transcode", "-q", "50", "--scale", "3", "-i", in, "-o", out}, exitUsage},
		{"unknown flag", []string{"transcode", "--frobnicate"}, exitUsage},
		{"missing input", []string{"transcode", "-q", "50", "-i", filepath.Join(dir, "nope.jpg"), "-o", out}, exitOpen},
		{"input is a directory", []string{"transcode", "-q", "50", "-i", dir, "-o", out}, exitStat},
		{"pixel limit", []string{"transcode", "-q", "50", "--max-pixels", "10", "-i", in, "-o", out}, exitAllocation},
		{"oversized frame header", []string{"transcode", "-q", "50", "-i", huge, "-o", out}, exitAllocation},
		{"oversized frame header, no cap", []string{"transcode", "-q", "50", "--max-pixels=-1", "-i", huge, "-o", out}, exitAllocation},
		{"malformed input", []string{"transcode", "-q", "50", "-i", bad, "-o", out}, exitTranscode},
		{"unwritable output", []string{"transcode", "-q", "50", "-i", in, "-o", filepath.Join(dir, "no", "such", "dir.jpg")}, exitWrite},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, code := run(t, tc.args...); code != tc.want {
				t.Errorf("expected exit %d, got %d", tc.want, code)
			}
		})
	}
}

func TestIdentifyCommand(t *testing.T) {
	in := writeFixture(t, t.TempDir())

	stdout, code := run(t, "identify", in)
	if code != exitOK {
		t.Fatalf("exit code %d", code)
	}
	for _, want := range []string{"24 x 16", "YCbCr", "~90", "ICC profile: none"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("identify output missing %q:\n%s", want, stdout)
		}
	}

	if _, code := run(t, "identify"); code != exitUsage {
		t.Errorf("missing argument: expected exit %d, got %d", exitUsage, code)
	}
}

func TestIdentifyEmbeddedProfile(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	icc := make([]byte, 256)
	icc[2] = 0x01 // declared size 256
	copy(icc[12:16], "mntr")
	copy(icc[16:20], "RGB ")
	copy(icc[20:24], "XYZ ")
	copy(icc[36:40], "acsp")
	iccPath := filepath.Join(dir, "p.icc")
	if err := os.WriteFile(iccPath, icc, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "tagged.jpg")
	if _, code := run(t, "transcode", "-q", "80", "-i", in, "-o", out, "--icc", iccPath); code != exitOK {
		t.Fatalf("transcode exit code %d", code)
	}

	stdout, code := run(t, "identify", out)
	if code != exitOK {
		t.Fatalf("identify exit code %d", code)
	}
	if !strings.Contains(stdout, "ICC profile: 256 bytes") || !strings.Contains(stdout, "Display") {
		t.Errorf("unexpected identify output:\n%s", stdout)
	}
}

func TestDecodeEncodeCommands(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir)
	raw := filepath.Join(dir, "pixels.raw")

	if _, code := run(t, "decode", "-i", in, "-o", raw); code != exitOK {
		t.Fatalf("decode exit code %d", code)
	}
	pixels, err := os.ReadFile(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(pixels) != 24*16*3 {
		t.Errorf("expected %d raw bytes, got %d", 24*16*3, len(pixels))
	}
	meta, err := readSidecar(filepath.Join(dir, "pixels.json"))
	if err != nil {
		t.Fatalf("reading sidecar: %v", err)
	}
	if meta.Width != 24 || meta.Height != 16 || meta.SrcComponents != 3 || meta.SrcQuality != 90 {
		t.Errorf("unexpected sidecar %+v", meta)
	}

	out := filepath.Join(dir, "again.jpg")
	if _, code := run(t, "encode", "-i", raw, "-o", out, "-q", "80"); code != exitOK {
		t.Fatalf("encode exit code %d", code)
	}
	stdout, code := run(t, "identify", out)
	if code != exitOK || !strings.Contains(stdout, "24 x 16") || !strings.Contains(stdout, "~80") {
		t.Errorf("identify of re-encoded file (exit %d):\n%s", code, stdout)
	}
}

func TestEncodeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "bare.raw")
	if err := os.WriteFile(raw, make([]byte, 4*4*3), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.jpg")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no sidecar, no dimensions", []string{"encode", "-i", raw, "-o", out}, exitUsage},
		{"size mismatch", []string{"encode", "-i", raw, "-o", out, "--width", "5", "--height", "4"}, exitUsage},
		{"bad quality", []string{"encode", "-i", raw, "-o", out, "--width", "4", "--height", "4", "-q", "120"}, exitTranscode},
		{"explicit dimensions", []string{"encode", "-i", raw, "-o", out, "--width", "4", "--height", "4"}, exitOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, code := run(t, tc.args...); code != tc.want {
				t.Errorf("expected exit %d, got %d", tc.want, code)
			}
		})
	}
}

func TestDecodeCommandOversizedFrame(t *testing.T) {
	dir := t.TempDir()
	huge := writeHugeFrame(t, dir, writeFixture(t, dir))

	if _, code := run(t, "decode", "-i", huge, "-o", filepath.Join(dir, "x.raw")); code != exitAllocation {
		t.Errorf("expected exit %d, got %d", exitAllocation, code)
	}
}
