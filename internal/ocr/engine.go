package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-ocr/internal/config"
)

// DefaultLanguage is used when no language, or a blank one, is requested.
const DefaultLanguage = "en"

// ErrEngineUnavailable marks failures to load or initialize an OCR engine,
// as opposed to failures while recognizing a particular image.
var ErrEngineUnavailable = errors.New("OCR engine unavailable")

// RawResult is an engine's recognition output in the PaddleOCR layout:
//
//	[ page, ... ]
//	page      = [ detection, ... ]   (or null for a page without text)
//	detection = [ box, [ text, confidence ] ]
//	box       = [ [x, y], ... ]
//
// Elements are loosely typed because external engines hand this structure
// over as JSON; Normalize validates every entry.
type RawResult []any

// InitOptions configures an engine before recognition.
type InitOptions struct {
	// Language is the caller's language code, e.g. "en". Engines map it to
	// their own code space.
	Language string

	// AngleClassification enables orientation detection of text lines.
	AngleClassification bool

	// Cache holds the directories the engine may use for model data.
	Cache config.CacheDirs
}

// Engine is an OCR backend.
//
// Init is called once per invocation before Recognize. Close is always
// called, even when Init failed, and must tolerate that.
type Engine interface {
	Name() string
	Init(ctx context.Context, opts InitOptions) error
	Recognize(ctx context.Context, imagePath string) (RawResult, error)
	Close() error
}

// StdoutGuard diverts the process standard output for the duration of an
// engine call and returns a function restoring it.
type StdoutGuard func() (restore func(), err error)

// Invoker runs one engine against one image.
type Invoker struct {
	Engine Engine

	// Guard, when set, wraps Init and Recognize so engine chatter on standard
	// output cannot reach the caller's JSON stream.
	Guard StdoutGuard

	Log *logrus.Entry
}

// Run initializes the engine, recognizes imagePath and normalizes the output.
//
// The reported duration covers Recognize only. Init failures are returned
// wrapping ErrEngineUnavailable; every other failure is returned as is.
func (iv *Invoker) Run(ctx context.Context, imagePath string, opts InitOptions) (*Result, error) {
	opts.Language = NormalizeLanguage(opts.Language)
	log := iv.logger().WithFields(logrus.Fields{"engine": iv.Engine.Name(), "lang": opts.Language})

	if iv.Guard != nil {
		restore, err := iv.Guard()
		if err != nil {
			return nil, fmt.Errorf("failed to redirect stdout: %w", err)
		}
		defer restore()
	}

	defer func() {
		if err := iv.Engine.Close(); err != nil {
			log.WithError(err).Debug("engine close failed")
		}
	}()

	log.Debug("initializing engine")
	if err := iv.Engine.Init(ctx, opts); err != nil {
		if !errors.Is(err, ErrEngineUnavailable) {
			err = fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		}
		return nil, err
	}

	start := time.Now()
	raw, err := iv.Engine.Recognize(ctx, imagePath)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("recognition failed: %w", err)
	}

	res := Normalize(raw, elapsed)
	log.WithFields(logrus.Fields{
		"lines":       len(res.Lines),
		"duration_ms": res.DurationMs,
	}).Debug("recognition finished")
	return res, nil
}

func (iv *Invoker) logger() *logrus.Entry {
	if iv.Log != nil {
		return iv.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// NormalizeLanguage trims lang and substitutes DefaultLanguage when blank.
func NormalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}
