package ocr

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Line is one recognized text line.
type Line struct {
	// Text is the recognized text as reported by the engine.
	Text string `json:"text"`

	// Confidence is the recognition confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Box is the text-region polygon as [x, y] points, usually four corners
	// clockwise from top-left. Omitted when the engine reported no geometry.
	Box [][]float64 `json:"box,omitempty"`
}

// Block groups lines. Results currently carry a single block holding every line.
type Block struct {
	Lines []Line `json:"lines"`
}

// Result is the final output of one invocation.
type Result struct {
	// Text is every line's text joined with newlines, trimmed.
	Text string `json:"text"`

	Lines  []Line  `json:"lines"`
	Blocks []Block `json:"blocks"`

	// AvgConfidence is the mean confidence of Lines, or 0 when there are none.
	AvgConfidence float64 `json:"avgConfidence"`

	// DurationMs is the wall-clock time spent in the engine's recognition call.
	DurationMs int64 `json:"durationMs"`
}

// Normalize turns an engine's raw output into a Result.
//
// Detections with blank text are dropped. Entries that do not have the
// expected shape (wrong arity, non-string text, non-numeric confidence, a box
// that is not a list of numeric pairs) are skipped without failing the rest.
func Normalize(raw RawResult, elapsed time.Duration) *Result {
	lines := make([]Line, 0)
	parts := make([]string, 0)
	sum := 0.0

	for _, page := range raw {
		dets, ok := page.([]any)
		if !ok {
			continue
		}
		for _, det := range dets {
			line, ok := parseDetection(det)
			if !ok || strings.TrimSpace(line.Text) == "" {
				continue
			}
			lines = append(lines, line)
			parts = append(parts, line.Text)
			sum += line.Confidence
		}
	}

	avg := 0.0
	if len(lines) > 0 {
		avg = sum / float64(len(lines))
	}

	return &Result{
		Text:          strings.TrimSpace(strings.Join(parts, "\n")),
		Lines:         lines,
		Blocks:        []Block{{Lines: lines}},
		AvgConfidence: avg,
		DurationMs:    elapsed.Milliseconds(),
	}
}

// parseDetection reads [box, [text, confidence]]. Extra trailing elements are
// tolerated.
func parseDetection(v any) (Line, bool) {
	det, ok := v.([]any)
	if !ok || len(det) < 2 {
		return Line{}, false
	}

	info, ok := det[1].([]any)
	if !ok || len(info) < 2 {
		return Line{}, false
	}
	text, ok := info[0].(string)
	if !ok {
		return Line{}, false
	}
	conf, ok := toFloat(info[1])
	if !ok {
		return Line{}, false
	}

	var box [][]float64
	if det[0] != nil {
		if box, ok = parseBox(det[0]); !ok {
			return Line{}, false
		}
	}

	return Line{Text: text, Confidence: conf, Box: box}, true
}

func parseBox(v any) ([][]float64, bool) {
	pts, ok := v.([]any)
	if !ok {
		return nil, false
	}
	box := make([][]float64, 0, len(pts))
	for _, p := range pts {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			return nil, false
		}
		x, okX := toFloat(pair[0])
		y, okY := toFloat(pair[1])
		if !okX || !okY {
			return nil, false
		}
		box = append(box, []float64{x, y})
	}
	return box, true
}

// toFloat accepts the numeric forms produced by JSON decoding and by engines
// building RawResult directly. NaN and infinities are rejected so the result
// always serializes.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
