package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Output formats
	FormatDXF = "dxf"
	FormatSVG = "svg"

	// Threshold methods
	ThresholdGaussian = "gaussian"
	ThresholdMean     = "mean"

	// Thinning algorithms
	ThinningZhangSuen = "zhang-suen"
	ThinningNone      = "none"

	// Text sources
	TextSourceAuto = "auto"
	TextSourceOCR  = "ocr"
	TextSourcePDF  = "pdf"

	// Default values
	DefaultOutputScale             = 1.0
	DefaultRenderOversample        = 4
	DefaultImageOversample         = 1
	DefaultSimplifyFactor          = 0.002
	DefaultDenoiseStrength         = 3
	DefaultTextConfidenceThreshold = 60
	DefaultThresholdBlockSize      = 11
	DefaultThresholdOffset         = 2.0
	DefaultTextMaskPadding         = 2
	DefaultOCRLanguage             = "eng"
	DefaultLogLevel                = "info"
	DefaultWorkers                 = 1

	// EnvPrefix is prepended to every environment variable, e.g. PDF2CAD_OUTPUT_SCALE.
	EnvPrefix = "PDF2CAD"
)

// ErrInvalid is wrapped by every validation failure returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Options holds every tunable of the tracing pipeline and its front ends.
type Options struct {
	// Geometry
	OutputScale      float64 // multiplies every output coordinate
	RenderOversample int     // raster pixels per PDF point
	ImageOversample  int     // raster pixels per input image pixel
	SimplifyFactor   float64 // perimeter-relative simplification tolerance
	MinContourPoints int     // raw border walks shorter than this are dropped

	// Raster cleanup
	DenoiseStrength    int     // median kernel size, 0 disables
	ThresholdMethod    string  // "gaussian" or "mean"
	ThresholdBlockSize int     // adaptive threshold neighbourhood, odd
	ThresholdOffset    float64 // subtracted from the local mean
	Thinning           string  // "zhang-suen" or "none"

	// Text
	TextRecognitionEnabled  bool
	TextConfidenceThreshold int
	TextSource              string
	OCRLanguage             string
	TextMaskPadding         int

	// Front end
	Format     string
	OutputDir  string // empty writes next to each input
	Workers    int
	LogLevel   string
	PreviewDir string
}

// Default returns the options used when nothing is configured.
func Default() Options {
	return Options{
		OutputScale:             DefaultOutputScale,
		RenderOversample:        DefaultRenderOversample,
		ImageOversample:         DefaultImageOversample,
		SimplifyFactor:          DefaultSimplifyFactor,
		DenoiseStrength:         DefaultDenoiseStrength,
		ThresholdMethod:         ThresholdGaussian,
		ThresholdBlockSize:      DefaultThresholdBlockSize,
		ThresholdOffset:         DefaultThresholdOffset,
		Thinning:                ThinningZhangSuen,
		TextConfidenceThreshold: DefaultTextConfidenceThreshold,
		TextSource:              TextSourceAuto,
		OCRLanguage:             DefaultOCRLanguage,
		TextMaskPadding:         DefaultTextMaskPadding,
		Format:                  FormatDXF,
		Workers:                 DefaultWorkers,
		LogLevel:                DefaultLogLevel,
	}
}

// OddKernel coerces a median kernel size to a valid centered window.
// Zero stays zero (disabled); even sizes move up to the next odd size.
func OddKernel(k int) int {
	if k <= 0 {
		return 0
	}
	if k%2 == 0 {
		return k + 1
	}
	return k
}

// Normalize coerces values that have a single obvious valid neighbour.
func (o *Options) Normalize() {
	o.DenoiseStrength = OddKernel(o.DenoiseStrength)
	if o.ThresholdBlockSize > 0 && o.ThresholdBlockSize%2 == 0 {
		o.ThresholdBlockSize++
	}
	o.ThresholdMethod = strings.ToLower(o.ThresholdMethod)
	o.Thinning = strings.ToLower(o.Thinning)
	o.TextSource = strings.ToLower(o.TextSource)
	o.Format = strings.ToLower(o.Format)
	o.LogLevel = strings.ToLower(o.LogLevel)
}

// Oversample is the raster scale for a source. Image inputs are already
// pixels and are rendered at ImageOversample; PDF pages use RenderOversample.
func (o Options) Oversample(pixelInput bool) int {
	if pixelInput {
		return o.ImageOversample
	}
	return o.RenderOversample
}

// Validate checks that the options describe a runnable pipeline.
func (o Options) Validate() error {
	if !(o.OutputScale > 0) {
		return fmt.Errorf("%w: output scale must be positive, got %g", ErrInvalid, o.OutputScale)
	}
	if o.RenderOversample < 1 {
		return fmt.Errorf("%w: render oversample must be >= 1, got %d", ErrInvalid, o.RenderOversample)
	}
	if o.ImageOversample < 1 {
		return fmt.Errorf("%w: image oversample must be >= 1, got %d", ErrInvalid, o.ImageOversample)
	}
	if !(o.SimplifyFactor > 0 && o.SimplifyFactor <= 0.1) {
		return fmt.Errorf("%w: simplify factor must be in (0, 0.1], got %g", ErrInvalid, o.SimplifyFactor)
	}
	if o.DenoiseStrength < 0 {
		return fmt.Errorf("%w: denoise strength must be >= 0, got %d", ErrInvalid, o.DenoiseStrength)
	}
	if o.TextConfidenceThreshold < 0 || o.TextConfidenceThreshold > 100 {
		return fmt.Errorf("%w: text confidence threshold must be in [0, 100], got %d", ErrInvalid, o.TextConfidenceThreshold)
	}
	if o.ThresholdBlockSize < 3 || o.ThresholdBlockSize%2 == 0 {
		return fmt.Errorf("%w: threshold block size must be odd and >= 3, got %d", ErrInvalid, o.ThresholdBlockSize)
	}
	if o.MinContourPoints < 0 {
		return fmt.Errorf("%w: min contour points must be >= 0", ErrInvalid)
	}
	if o.TextMaskPadding < 0 {
		return fmt.Errorf("%w: text mask padding must be >= 0", ErrInvalid)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalid, o.Workers)
	}

	if err := oneOf("threshold method", o.ThresholdMethod, ThresholdGaussian, ThresholdMean); err != nil {
		return err
	}
	if err := oneOf("thinning", o.Thinning, ThinningZhangSuen, ThinningNone); err != nil {
		return err
	}
	if err := oneOf("text source", o.TextSource, TextSourceAuto, TextSourceOCR, TextSourcePDF); err != nil {
		return err
	}
	if err := oneOf("format", o.Format, FormatDXF, FormatSVG); err != nil {
		return err
	}
	if err := oneOf("log level", o.LogLevel, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q (must be one of: %s)", ErrInvalid, field, value, strings.Join(allowed, ", "))
}

// Load resolves options from defaults, an optional config file, PDF2CAD_*
// environment variables and command line flags, in increasing precedence.
// It returns the remaining positional arguments.
func Load(name string, args []string, stderr io.Writer) (Options, []string, error) {
	cfg := Default()

	v := viper.New()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)

	setupViperEnvironment(v, cfg)
	defineFlags(fs, cfg)
	fs.String("config", "", "Optional config file (yaml, toml or json)")
	setupUsage(fs, name, stderr)

	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return cfg, nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	populateFromViper(v, &cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	return cfg, fs.Args(), nil
}

// setupViperEnvironment configures the env prefix and defaults.
func setupViperEnvironment(v *viper.Viper, cfg Options) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("output-scale", cfg.OutputScale)
	v.SetDefault("oversample", cfg.RenderOversample)
	v.SetDefault("image-oversample", cfg.ImageOversample)
	v.SetDefault("simplify", cfg.SimplifyFactor)
	v.SetDefault("min-contour-points", cfg.MinContourPoints)
	v.SetDefault("denoise", cfg.DenoiseStrength)
	v.SetDefault("threshold-method", cfg.ThresholdMethod)
	v.SetDefault("threshold-block", cfg.ThresholdBlockSize)
	v.SetDefault("threshold-offset", cfg.ThresholdOffset)
	v.SetDefault("thinning", cfg.Thinning)
	v.SetDefault("text", cfg.TextRecognitionEnabled)
	v.SetDefault("text-confidence", cfg.TextConfidenceThreshold)
	v.SetDefault("text-source", cfg.TextSource)
	v.SetDefault("ocr-lang", cfg.OCRLanguage)
	v.SetDefault("text-padding", cfg.TextMaskPadding)
	v.SetDefault("format", cfg.Format)
	v.SetDefault("output-dir", cfg.OutputDir)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("preview-dir", cfg.PreviewDir)
}

// defineFlags sets up all command line flags.
func defineFlags(fs *pflag.FlagSet, cfg Options) {
	fs.Float64("output-scale", cfg.OutputScale, "Multiplier applied to every output coordinate (e.g. 0.3528 for pt->mm)")
	fs.Int("oversample", cfg.RenderOversample, "Raster pixels per point when rendering PDF pages")
	fs.Int("image-oversample", cfg.ImageOversample, "Raster pixels per input pixel for image sources")
	fs.Float64("simplify", cfg.SimplifyFactor, "Polyline tolerance as a fraction of each contour's perimeter, (0, 0.1]")
	fs.Int("min-contour-points", cfg.MinContourPoints, "Drop traced borders with fewer pixels than this (0 keeps all)")
	fs.Int("denoise", cfg.DenoiseStrength, "Median filter kernel size (0 disables, even values round up)")
	fs.String("threshold-method", cfg.ThresholdMethod, "Adaptive threshold weighting: gaussian or mean")
	fs.Int("threshold-block", cfg.ThresholdBlockSize, "Adaptive threshold neighbourhood size in pixels (odd)")
	fs.Float64("threshold-offset", cfg.ThresholdOffset, "Constant subtracted from the local mean")
	fs.String("thinning", cfg.Thinning, "Skeletonization algorithm: zhang-suen or none")
	fs.Bool("text", cfg.TextRecognitionEnabled, "Detect text, emit it as TEXT entities and mask it before tracing")
	fs.Int("text-confidence", cfg.TextConfidenceThreshold, "Minimum text detection confidence, 0-100")
	fs.String("text-source", cfg.TextSource, "Text detector: auto, ocr or pdf")
	fs.String("ocr-lang", cfg.OCRLanguage, "Tesseract language code(s), e.g. eng or eng+deu")
	fs.Int("text-padding", cfg.TextMaskPadding, "Pixels added around each masked text box")
	fs.String("format", cfg.Format, "Output format: dxf or svg")
	fs.StringP("output-dir", "o", cfg.OutputDir, "Directory for converted drawings (default: next to each input)")
	fs.Int("workers", cfg.Workers, "Pages processed concurrently")
	fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("preview-dir", cfg.PreviewDir, "Write a PNG per page showing traced geometry over the raster")
}

// setupUsage configures the custom usage message.
func setupUsage(fs *pflag.FlagSet, name string, w io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(w, "Usage: %s [options] <input.pdf|image|dir>...\n", name)
		fmt.Fprintf(w, "\nTrace scanned drawings into CAD polylines.\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nEvery option can also be set as %s_<NAME>, e.g. %s_OUTPUT_SCALE=25.4\n", EnvPrefix, EnvPrefix)
	}
}

// populateFromViper fills the options from viper.
func populateFromViper(v *viper.Viper, cfg *Options) {
	cfg.OutputScale = v.GetFloat64("output-scale")
	cfg.RenderOversample = v.GetInt("oversample")
	cfg.ImageOversample = v.GetInt("image-oversample")
	cfg.SimplifyFactor = v.GetFloat64("simplify")
	cfg.MinContourPoints = v.GetInt("min-contour-points")
	cfg.DenoiseStrength = v.GetInt("denoise")
	cfg.ThresholdMethod = v.GetString("threshold-method")
	cfg.ThresholdBlockSize = v.GetInt("threshold-block")
	cfg.ThresholdOffset = v.GetFloat64("threshold-offset")
	cfg.Thinning = v.GetString("thinning")
	cfg.TextRecognitionEnabled = v.GetBool("text")
	cfg.TextConfidenceThreshold = v.GetInt("text-confidence")
	cfg.TextSource = v.GetString("text-source")
	cfg.OCRLanguage = v.GetString("ocr-lang")
	cfg.TextMaskPadding = v.GetInt("text-padding")
	cfg.Format = v.GetString("format")
	cfg.OutputDir = v.GetString("output-dir")
	cfg.Workers = v.GetInt("workers")
	cfg.LogLevel = v.GetString("log-level")
	cfg.PreviewDir = v.GetString("preview-dir")
}
