//go:build !cgo

package ocr

import (
	"context"
	"fmt"
)

// TesseractEngine is unavailable in builds without cgo.
type TesseractEngine struct{}

// NewTesseractEngine returns an engine whose Init always fails.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Init(ctx context.Context, opts InitOptions) error {
	return fmt.Errorf("%w: built without cgo", ErrEngineUnavailable)
}

func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (RawResult, error) {
	return nil, fmt.Errorf("%w: built without cgo", ErrEngineUnavailable)
}

func (e *TesseractEngine) Close() error { return nil }

// TesseractVersion returns "" because no Tesseract library is linked.
func TesseractVersion() string { return "" }
