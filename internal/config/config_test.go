package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.OutputScale)
	assert.Equal(t, 4, cfg.RenderOversample)
	assert.Equal(t, 1, cfg.ImageOversample)
	assert.False(t, cfg.TextRecognitionEnabled)
}

func TestOversample_ByInputKind(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4, cfg.Oversample(false))
	assert.Equal(t, 1, cfg.Oversample(true), "image pixels are not oversampled by default")

	cfg.ImageOversample = 2
	assert.Equal(t, 2, cfg.Oversample(true))
}

func TestOddKernel(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{-3, 0},
		{1, 1},
		{3, 3},
		{4, 5},
		{6, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OddKernel(tt.in), "OddKernel(%d)", tt.in)
	}
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.DenoiseStrength = 4
	cfg.ThresholdBlockSize = 10
	cfg.Format = "DXF"
	cfg.Thinning = "Zhang-Suen"
	cfg.Normalize()

	assert.Equal(t, 5, cfg.DenoiseStrength)
	assert.Equal(t, 11, cfg.ThresholdBlockSize)
	assert.Equal(t, FormatDXF, cfg.Format)
	assert.Equal(t, ThinningZhangSuen, cfg.Thinning)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero scale", func(o *Options) { o.OutputScale = 0 }},
		{"negative scale", func(o *Options) { o.OutputScale = -25.4 }},
		{"oversample below one", func(o *Options) { o.RenderOversample = 0 }},
		{"image oversample below one", func(o *Options) { o.ImageOversample = 0 }},
		{"simplify zero", func(o *Options) { o.SimplifyFactor = 0 }},
		{"simplify too large", func(o *Options) { o.SimplifyFactor = 0.2 }},
		{"negative denoise", func(o *Options) { o.DenoiseStrength = -1 }},
		{"confidence above 100", func(o *Options) { o.TextConfidenceThreshold = 101 }},
		{"confidence negative", func(o *Options) { o.TextConfidenceThreshold = -1 }},
		{"even block", func(o *Options) { o.ThresholdBlockSize = 8 }},
		{"tiny block", func(o *Options) { o.ThresholdBlockSize = 1 }},
		{"unknown method", func(o *Options) { o.ThresholdMethod = "otsu" }},
		{"unknown thinning", func(o *Options) { o.Thinning = "medial-axis" }},
		{"unknown text source", func(o *Options) { o.TextSource = "cloud" }},
		{"unknown format", func(o *Options) { o.Format = "dwg" }},
		{"zero workers", func(o *Options) { o.Workers = 0 }},
		{"bad log level", func(o *Options) { o.LogLevel = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "error should wrap ErrInvalid: %v", err)
		})
	}
}

func TestLoad_Flags(t *testing.T) {
	cfg, rest, err := Load("pdf2cad", []string{
		"--output-scale=25.4",
		"--oversample", "2",
		"--image-oversample=3",
		"--denoise=4",
		"--text",
		"--text-confidence=80",
		"--format=svg",
		"drawing.pdf",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 25.4, cfg.OutputScale)
	assert.Equal(t, 2, cfg.RenderOversample)
	assert.Equal(t, 3, cfg.ImageOversample)
	assert.Equal(t, 5, cfg.DenoiseStrength, "even kernel must be coerced")
	assert.True(t, cfg.TextRecognitionEnabled)
	assert.Equal(t, 80, cfg.TextConfidenceThreshold)
	assert.Equal(t, FormatSVG, cfg.Format)
	assert.Equal(t, []string{"drawing.pdf"}, rest)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PDF2CAD_OUTPUT_SCALE", "0.3528")
	t.Setenv("PDF2CAD_THRESHOLD_METHOD", "mean")

	cfg, _, err := Load("pdf2cad", nil, io.Discard)
	require.NoError(t, err)
	assert.InDelta(t, 0.3528, cfg.OutputScale, 1e-9)
	assert.Equal(t, ThresholdMean, cfg.ThresholdMethod)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("PDF2CAD_WORKERS", "8")

	cfg, _, err := Load("pdf2cad", []string{"--workers=2"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdf2cad.yaml")
	content := "simplify: 0.01\nthinning: none\ntext-source: pdf\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, _, err := Load("pdf2cad", []string{"--config", path}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0.01, cfg.SimplifyFactor)
	assert.Equal(t, ThinningNone, cfg.Thinning)
	assert.Equal(t, TextSourcePDF, cfg.TextSource)
}

func TestLoad_InvalidValue(t *testing.T) {
	_, _, err := Load("pdf2cad", []string{"--output-scale=0"}, io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, _, err := Load("pdf2cad", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}, io.Discard)
	require.Error(t, err)
}

func TestLoad_OutputDirShorthand(t *testing.T) {
	cfg, rest, err := Load("pdf2cad", []string{"-o", "out", "a.pdf", "b.png"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, []string{"a.pdf", "b.png"}, rest)
}

func TestLoad_LogLevelEnvIsLowercased(t *testing.T) {
	t.Setenv("PDF2CAD_LOG_LEVEL", "DEBUG")

	cfg, _, err := Load("pdf2cad", nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}
