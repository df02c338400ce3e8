package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Default skew acceptance window, in degrees. Angles below the minimum are
// treated as noise; angles above the maximum as a misdetection.
const (
	DefaultMinSkew = 0.5
	DefaultMaxSkew = 30.0
)

// ErrNoForeground is reported when binarization leaves no text pixels to measure.
var ErrNoForeground = errors.New("no foreground pixels after binarization")

// DeskewOptions controls Deskew.
type DeskewOptions struct {
	// MinAngle and MaxAngle bound the absolute skew, in degrees, that is corrected.
	MinAngle float64
	MaxAngle float64

	// Background fills transparent areas and the corners exposed by rotation.
	Background color.NRGBA
}

// DefaultDeskewOptions returns the default window with a white background.
func DefaultDeskewOptions() DeskewOptions {
	return DeskewOptions{
		MinAngle:   DefaultMinSkew,
		MaxAngle:   DefaultMaxSkew,
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// DeskewStatus describes what Deskew did.
type DeskewStatus int

const (
	// DeskewFailed means the input could not be analyzed; Err holds the cause.
	DeskewFailed DeskewStatus = iota
	// DeskewSkipped means the measured angle fell outside the correction window.
	DeskewSkipped
	// DeskewApplied means a rotated copy was written.
	DeskewApplied
)

func (s DeskewStatus) String() string {
	switch s {
	case DeskewApplied:
		return "applied"
	case DeskewSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// DeskewResult is the outcome of Deskew. Path is always usable: it is either
// the rotated transient file or the unchanged input path.
type DeskewResult struct {
	Path   string
	Status DeskewStatus
	// Angle is the measured skew in degrees; zero when measurement failed.
	Angle float64
	Err   error
}

// Deskew corrects small rotational skew of the image at path.
//
// It never fails the caller: on any problem the input path is returned with
// Status DeskewFailed and the cause in Err.
//
// # Algorithm
//
//  1. Composite transparency against opts.Background
//  2. Grayscale, 3x3 Gaussian blur, Otsu threshold, inverted so text is foreground
//  3. Minimum-area rectangle around all foreground pixels
//  4. Fold the rectangle angle from [-90, 0) into [-45, 45)
//  5. If opts.MinAngle <= |angle| <= opts.MaxAngle, rotate the full-color image
//     about its center by -angle with Catmull-Rom interpolation, filling
//     exposed corners with opts.Background, and write it into scope
func Deskew(path string, opts DeskewOptions, scope *TempScope) DeskewResult {
	fallback := func(err error) DeskewResult {
		return DeskewResult{Path: path, Status: DeskewFailed, Err: err}
	}

	img, err := Load(path, false)
	if err != nil {
		return fallback(err)
	}
	flat := Flatten(img, opts.Background)

	angle, err := MeasureSkew(flat)
	if err != nil {
		return fallback(err)
	}

	abs := math.Abs(angle)
	if abs < opts.MinAngle || abs > opts.MaxAngle {
		return DeskewResult{Path: path, Status: DeskewSkipped, Angle: angle}
	}

	rotated := Rotate(flat, -angle, opts.Background)
	out, err := scope.WritePNG(rotated, "image-ocr-deskew")
	if err != nil {
		return fallback(err)
	}
	return DeskewResult{Path: out, Status: DeskewApplied, Angle: angle}
}

// Flatten composites img over an opaque bg-colored canvas. Images without an
// alpha-capable color model are only converted to NRGBA.
func Flatten(img image.Image, bg color.NRGBA) *image.NRGBA {
	if !hasAlpha(img) {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	bg.A = 0xff
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// MeasureSkew returns the dominant text skew of img in degrees, in [-45, 45).
// Positive values mean lines descend to the right.
func MeasureSkew(img image.Image) (float64, error) {
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return 0, fmt.Errorf("image too small to measure skew: %dx%d", b.Dx(), b.Dy())
	}

	mask := Binarize(img)
	hull := foregroundHull(mask, func(v uint8) bool { return v != 0 })
	if len(hull) == 0 {
		return 0, ErrNoForeground
	}
	rect, ok := MinAreaRect(hull)
	if !ok {
		return 0, ErrNoForeground
	}

	angle := rect.Angle
	if angle < -45 {
		angle += 90
	}
	return angle, nil
}

// Binarize converts img to an inverted binary mask: dark pixels (text) are
// 255, light pixels (paper) are 0. The cut-off is chosen with Otsu's method
// on a 3x3 Gaussian-blurred grayscale copy.
func Binarize(img image.Image) *image.Gray {
	gray := effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114)
	blurred := blur.Gaussian(gray, 1.0)

	hist := histogram.NewRGBAHistogram(blurred)
	t := OtsuThreshold(hist.R.Bins)

	var mask *image.Gray
	if t >= 255 {
		mask = image.NewGray(blurred.Bounds())
	} else {
		// Threshold marks >= level as white; text is <= t.
		mask = segment.Threshold(blurred, uint8(t+1))
	}
	for i, v := range mask.Pix {
		mask.Pix[i] = 255 - v
	}
	return mask
}

// OtsuThreshold returns the level t that maximizes between-class variance
// when splitting a 256-bin histogram into [0, t] and (t, 255]. A histogram
// with a single populated bin yields 0.
func OtsuThreshold(bins []int) int {
	total := 0
	sum := 0.0
	for i, n := range bins {
		total += n
		sum += float64(i * n)
	}
	if total == 0 {
		return 0
	}

	var (
		wB, sumB float64
		best     = -1.0
		level    int
	)
	for t, n := range bins {
		wB += float64(n)
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * n)
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	return level
}

// Rotate turns img about its center by degrees (positive is clockwise on
// screen) keeping the original canvas size. Exposed corners are filled with bg.
func Rotate(img image.Image, degrees float64, bg color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	bg.A = 0xff
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2
	dcx, dcy := float64(b.Dx())/2, float64(b.Dy())/2

	// Source to destination: translate center to origin, rotate, move to dst center.
	s2d := f64.Aff3{
		cos, -sin, dcx - cos*cx + sin*cy,
		sin, cos, dcy - sin*cx - cos*cy,
	}
	draw.CatmullRom.Transform(dst, s2d, img, b, draw.Over, nil)
	return dst
}
