//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes text with the Tesseract library through cgo.
//
// Training data is looked up in the cache home's tessdata directory when it
// exists, and in the library's default location otherwise.
type TesseractEngine struct {
	client *gosseract.Client
}

// NewTesseractEngine returns an engine that is not initialized yet.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

// Name implements Engine.
func (e *TesseractEngine) Name() string { return "tesseract" }

// Init creates the Tesseract client and forces the library to load its
// language data, so missing traineddata is reported here rather than during
// recognition.
func (e *TesseractEngine) Init(ctx context.Context, opts InitOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client := gosseract.NewClient()
	e.client = client

	if dir := opts.Cache.TessdataDir(); dir != "" {
		if err := client.SetTessdataPrefix(dir); err != nil {
			return fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(strings.Split(TesseractLanguage(opts.Language), "+")...); err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}

	mode := gosseract.PSM_AUTO
	if opts.AngleClassification {
		mode = gosseract.PSM_AUTO_OSD
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	probe, err := probeImage()
	if err != nil {
		return err
	}
	if err := client.SetImageFromBytes(probe); err != nil {
		return fmt.Errorf("failed to set probe image: %w", err)
	}
	if _, err := client.Text(); err != nil {
		return fmt.Errorf("failed to initialize tesseract: %w", err)
	}
	return nil
}

// Recognize implements Engine. Each Tesseract text line becomes one detection
// whose box is the line's bounding rectangle.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string) (RawResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: tesseract engine not initialized", ErrEngineUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := e.client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("failed to get text lines: %w", err)
	}

	page := make([]any, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		page = append(page, []any{
			rectPolygon(b.Box),
			[]any{text, b.Confidence / 100.0},
		})
	}
	return RawResult{page}, nil
}

// Close implements Engine.
func (e *TesseractEngine) Close() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

// TesseractVersion returns the linked Tesseract library version.
func TesseractVersion() string {
	return gosseract.Version()
}

// rectPolygon lists the corners of r clockwise from top-left.
func rectPolygon(r image.Rectangle) []any {
	x1, y1 := float64(r.Min.X), float64(r.Min.Y)
	x2, y2 := float64(r.Max.X), float64(r.Max.Y)
	return []any{
		[]any{x1, y1},
		[]any{x2, y1},
		[]any{x2, y2},
		[]any{x1, y2},
	}
}

// probeImage is a small blank page used to make Tesseract load its models.
func probeImage() ([]byte, error) {
	var buf bytes.Buffer
	blank := imaging.New(32, 32, color.White)
	if err := imaging.Encode(&buf, blank, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode probe image: %w", err)
	}
	return buf.Bytes(), nil
}
