// Package config holds the configuration of one image-ocr invocation.
//
// Values come from built-in defaults, then IMAGE_OCR_* environment variables
// (optionally seeded from a .env file), then command-line flags. Cache
// directories for the OCR engine are resolved into an explicit CacheDirs value
// instead of being read from the environment by the engine itself.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables supplying flag defaults.
const (
	EnvLang         = "IMAGE_OCR_LANG"
	EnvMaxDimension = "IMAGE_OCR_MAX_DIMENSION"
	EnvDeskew       = "IMAGE_OCR_DESKEW"
	EnvMinSkew      = "IMAGE_OCR_MIN_SKEW"
	EnvMaxSkew      = "IMAGE_OCR_MAX_SKEW"
	EnvBackground   = "IMAGE_OCR_BACKGROUND"
	EnvEngine       = "IMAGE_OCR_ENGINE"
	EnvEngineCmd    = "IMAGE_OCR_ENGINE_CMD"
	EnvLogLevel     = "IMAGE_OCR_LOG_LEVEL"
	EnvTempDir      = "IMAGE_OCR_TMPDIR"
)

// Engine names.
const (
	EngineTesseract = "tesseract"
	EngineExec      = "exec"
)

// Config is the complete configuration of one invocation.
type Config struct {
	// Image is the path of the input image.
	Image string

	// Lang is the caller's language code; blank means "en".
	Lang string

	// MaxDimension bounds the longer image side; 0 disables downscaling.
	MaxDimension int

	// AutoOrient applies EXIF orientation when decoding.
	AutoOrient bool

	// Deskew enables skew correction, applied when the measured angle's
	// absolute value lies in [MinSkew, MaxSkew] degrees.
	Deskew  bool
	MinSkew float64
	MaxSkew float64

	// Background is the hex color used for alpha matting and rotation fill.
	Background string

	// Engine selects the OCR backend: "tesseract" or "exec".
	Engine string

	// EngineCmd is the command run by the exec engine.
	EngineCmd string

	// AngleClassification enables text orientation detection in the engine.
	AngleClassification bool

	// LogLevel is a logrus level name.
	LogLevel string

	// TempDir holds transient images; empty means the system default.
	TempDir string

	// Cache is resolved from IMAGE_OCR_HOME and friends.
	Cache CacheDirs
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Lang:                "en",
		MaxDimension:        1800,
		AutoOrient:          true,
		Deskew:              true,
		MinSkew:             0.5,
		MaxSkew:             30,
		Background:          "#ffffff",
		Engine:              EngineTesseract,
		AngleClassification: true,
		LogLevel:            "warn",
	}
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// FromEnv returns Default overridden by IMAGE_OCR_* variables read through getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str(EnvLang, &cfg.Lang)
	integer(EnvMaxDimension, &cfg.MaxDimension)
	boolean(EnvDeskew, &cfg.Deskew)
	float(EnvMinSkew, &cfg.MinSkew)
	float(EnvMaxSkew, &cfg.MaxSkew)
	str(EnvBackground, &cfg.Background)
	str(EnvEngine, &cfg.Engine)
	str(EnvEngineCmd, &cfg.EngineCmd)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvTempDir, &cfg.TempDir)
	cfg.Cache = ResolveCacheDirs(getenv)

	return cfg, errors.Join(errs...)
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Image) == "" {
		errs = append(errs, errors.New("image path is required"))
	}
	if c.MaxDimension < 0 {
		errs = append(errs, fmt.Errorf("max dimension must not be negative, got %d", c.MaxDimension))
	}
	if c.MinSkew < 0 || c.MaxSkew < c.MinSkew {
		errs = append(errs, fmt.Errorf("invalid skew window [%g, %g]", c.MinSkew, c.MaxSkew))
	}
	switch c.Engine {
	case EngineTesseract:
	case EngineExec:
		if strings.TrimSpace(c.EngineCmd) == "" {
			errs = append(errs, errors.New("exec engine requires an engine command"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown engine %q", c.Engine))
	}
	return errors.Join(errs...)
}
