// Package pipeline runs one OCR invocation end to end.
//
// The stages run in order and stop at the first fatal error:
//
//	validate → preprocess → invoke → emit
//
// Validate checks that the input exists. Preprocess normalizes the image and
// optionally corrects skew, producing transient files. Invoke runs the OCR
// engine and normalizes its output. Emit writes the result as one JSON line.
//
// Every transient file is removed before Run returns, on success and failure
// alike. On failure nothing is written to the output.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/image-ocr/internal/config"
	"github.com/ironsheep/image-ocr/internal/imaging"
	"github.com/ironsheep/image-ocr/internal/ocr"
)

// Pipeline holds the collaborators of a run.
type Pipeline struct {
	Engine ocr.Engine

	// Guard diverts standard output while the engine runs. Optional.
	Guard ocr.StdoutGuard

	// Out receives the JSON result.
	Out io.Writer

	Log *logrus.Entry
}

// Run processes cfg.Image and writes the result to p.Out.
//
// Failures are returned as *Error carrying the stage and exit code.
func (p *Pipeline) Run(ctx context.Context, cfg config.Config) (*ocr.Result, error) {
	log := p.logger().WithField("image", cfg.Image)

	log.WithField("stage", StageValidate).Debug("entering stage")
	if _, err := os.Stat(cfg.Image); err != nil {
		return nil, &Error{Stage: StageValidate, Code: ExitImageNotFound, Path: cfg.Image, Err: fmt.Errorf("%w: %w", ErrImageNotFound, err)}
	}
	background, err := imaging.ParseColor(cfg.Background)
	if err != nil {
		return nil, &Error{Stage: StageValidate, Code: ExitFailure, Path: cfg.Image, Err: err}
	}

	scope := imaging.NewTempScope(cfg.TempDir)
	scope.OnRemove = func(path string, err error) {
		if err != nil {
			log.WithError(err).WithField("path", path).Debug("failed to remove transient file")
		}
	}
	defer scope.Cleanup()

	log.WithField("stage", StagePreprocess).Debug("entering stage")
	prepared, err := p.preprocess(cfg, background, scope, log)
	if err != nil {
		return nil, &Error{Stage: StagePreprocess, Code: ExitFailure, Path: cfg.Image, Err: err}
	}

	for _, err := range cfg.Cache.Ensure() {
		log.WithError(err).Debug("failed to create cache directory")
	}

	log.WithField("stage", StageInvoke).Debug("entering stage")
	invoker := &ocr.Invoker{Engine: p.Engine, Guard: p.Guard, Log: log}
	res, err := invoker.Run(ctx, prepared, ocr.InitOptions{
		Language:            cfg.Lang,
		AngleClassification: cfg.AngleClassification,
		Cache:               cfg.Cache,
	})
	if err != nil {
		code := ExitFailure
		if errors.Is(err, ocr.ErrEngineUnavailable) {
			code = ExitEngineUnavailable
		}
		return nil, &Error{Stage: StageInvoke, Code: code, Path: cfg.Image, Err: err}
	}

	log.WithField("stage", StageEmit).Debug("entering stage")
	if err := Emit(p.Out, res); err != nil {
		return nil, &Error{Stage: StageEmit, Code: ExitFailure, Path: cfg.Image, Err: err}
	}
	return res, nil
}

// preprocess returns the path of the image handed to the engine. The
// normalized file is released as soon as a deskewed copy supersedes it.
func (p *Pipeline) preprocess(cfg config.Config, bg color.NRGBA, scope *imaging.TempScope, log *logrus.Entry) (string, error) {
	normalized, err := imaging.Normalize(cfg.Image, imaging.NormalizeOptions{
		MaxDimension: cfg.MaxDimension,
		AutoOrient:   cfg.AutoOrient,
		Inspect: func(info *imaging.ImageInfo) {
			log.WithFields(logrus.Fields{
				"width":     info.Width,
				"height":    info.Height,
				"format":    info.Format,
				"has_alpha": info.HasAlpha,
				"bytes":     info.FileSizeBytes,
			}).Debug("input decoded")
		},
	}, scope)
	if err != nil {
		return "", err
	}

	if !cfg.Deskew {
		return normalized, nil
	}

	res := imaging.Deskew(normalized, imaging.DeskewOptions{
		MinAngle:   cfg.MinSkew,
		MaxAngle:   cfg.MaxSkew,
		Background: bg,
	}, scope)

	entry := log.WithFields(logrus.Fields{"deskew": res.Status.String(), "angle": res.Angle})
	if res.Err != nil {
		entry = entry.WithError(res.Err)
	}
	entry.Debug("skew correction finished")

	if res.Status == imaging.DeskewApplied {
		scope.Release(normalized)
	}
	return res.Path, nil
}

// Emit writes res as a single JSON line. HTML-sensitive and non-ASCII
// characters are written as is.
func Emit(w io.Writer, res *ocr.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func (p *Pipeline) logger() *logrus.Entry {
	if p.Log != nil {
		return p.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
