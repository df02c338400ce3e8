package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultMaxDimension bounds the longer side of a normalized image.
const DefaultMaxDimension = 1800

// NormalizeOptions controls Normalize.
type NormalizeOptions struct {
	// MaxDimension is the largest allowed width or height in pixels.
	// Zero or a negative value disables downscaling.
	MaxDimension int

	// AutoOrient applies the EXIF orientation tag when decoding.
	AutoOrient bool

	// Inspect, when set, receives metadata of the decoded input.
	Inspect func(info *ImageInfo)
}

// Normalize converts the image at path into an opaque RGB PNG owned by scope.
//
// Alpha is discarded rather than composited: every pixel keeps its color
// values and becomes fully opaque. When opts.MaxDimension is positive and the
// longer side exceeds it, the image is downscaled with the Lanczos filter,
// preserving aspect ratio. Images are never upscaled.
//
// Returns the path of the new transient file. A decode or write failure is
// returned as an error; nothing is left on disk once scope is cleaned up.
func Normalize(path string, opts NormalizeOptions, scope *TempScope) (string, error) {
	img, err := Load(path, opts.AutoOrient)
	if err != nil {
		return "", err
	}
	if opts.Inspect != nil {
		if info, err := Describe(path, img); err == nil {
			opts.Inspect(info)
		}
	}

	out := ToOpaqueRGB(img)
	if w, h, ok := FitWithin(out.Bounds().Dx(), out.Bounds().Dy(), opts.MaxDimension); ok {
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}

	return scope.WritePNG(out, "image-ocr-norm")
}

// ToOpaqueRGB returns a copy of img with every alpha value forced to 255.
func ToOpaqueRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// FitWithin computes the dimensions of a w×h image scaled so that its longer
// side equals max. ok is false when no downscaling is needed or max is not
// positive. Each returned dimension is at least 1.
func FitWithin(w, h, max int) (nw, nh int, ok bool) {
	if max <= 0 || w <= 0 || h <= 0 {
		return w, h, false
	}
	longer := w
	if h > longer {
		longer = h
	}
	if longer <= max {
		return w, h, false
	}

	scale := float64(max) / float64(longer)
	nw = int(float64(w)*scale + 0.5)
	nh = int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	if w >= h {
		nw = max
	} else {
		nh = max
	}
	return nw, nh, true
}
