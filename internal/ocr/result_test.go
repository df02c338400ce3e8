package ocr

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

// detection builds a raw [box, [text, confidence]] entry with a unit box.
func detection(text string, conf any) []any {
	return []any{
		[]any{[]any{0.0, 0.0}, []any{10.0, 0.0}, []any{10.0, 5.0}, []any{0.0, 5.0}},
		[]any{text, conf},
	}
}

func TestNormalize_SingleLine(t *testing.T) {
	raw := RawResult{[]any{detection("HELLO", 0.95)}}

	res := Normalize(raw, 42*time.Millisecond)

	if res.Text != "HELLO" {
		t.Errorf("Text: got %q, want %q", res.Text, "HELLO")
	}
	if len(res.Lines) != 1 {
		t.Fatalf("Lines: got %d, want 1", len(res.Lines))
	}
	if res.Lines[0].Confidence != 0.95 {
		t.Errorf("Confidence: got %v, want 0.95", res.Lines[0].Confidence)
	}
	if res.AvgConfidence != 0.95 {
		t.Errorf("AvgConfidence: got %v, want 0.95", res.AvgConfidence)
	}
	if res.DurationMs != 42 {
		t.Errorf("DurationMs: got %d, want 42", res.DurationMs)
	}
	if len(res.Blocks) != 1 || len(res.Blocks[0].Lines) != 1 {
		t.Errorf("Blocks: got %+v, want one block with one line", res.Blocks)
	}
	if len(res.Lines[0].Box) != 4 {
		t.Errorf("Box: got %d points, want 4", len(res.Lines[0].Box))
	}
}

func TestNormalize_MultipleLines(t *testing.T) {
	raw := RawResult{[]any{
		detection("first", 0.9),
		detection("second", 0.7),
	}}

	res := Normalize(raw, 0)

	if res.Text != "first\nsecond" {
		t.Errorf("Text: got %q", res.Text)
	}
	if math.Abs(res.AvgConfidence-0.8) > 1e-9 {
		t.Errorf("AvgConfidence: got %v, want 0.8", res.AvgConfidence)
	}
	if res.Lines[0].Text != "first" || res.Lines[1].Text != "second" {
		t.Errorf("line order not preserved: %+v", res.Lines)
	}
}

func TestNormalize_MultiplePages(t *testing.T) {
	raw := RawResult{
		[]any{detection("page one", 0.5)},
		nil,
		[]any{detection("page three", 1.0)},
	}

	res := Normalize(raw, 0)

	if res.Text != "page one\npage three" {
		t.Errorf("Text: got %q", res.Text)
	}
	if len(res.Lines) != 2 {
		t.Errorf("Lines: got %d, want 2", len(res.Lines))
	}
}

func TestNormalize_Empty(t *testing.T) {
	tests := []struct {
		name string
		raw  RawResult
	}{
		{"nil", nil},
		{"empty", RawResult{}},
		{"null page", RawResult{nil}},
		{"empty page", RawResult{[]any{}}},
		{"only blank text", RawResult{[]any{detection("   ", 0.9), detection("", 0.8)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.raw, 0)
			if res.Text != "" {
				t.Errorf("Text: got %q, want empty", res.Text)
			}
			if res.Lines == nil || len(res.Lines) != 0 {
				t.Errorf("Lines: got %#v, want empty non-nil slice", res.Lines)
			}
			if res.AvgConfidence != 0 {
				t.Errorf("AvgConfidence: got %v, want 0", res.AvgConfidence)
			}
		})
	}
}

func TestNormalize_BlankLinesExcludedFromAverage(t *testing.T) {
	raw := RawResult{[]any{
		detection("keep", 0.6),
		detection(" \t", 0.0),
	}}

	res := Normalize(raw, 0)

	if len(res.Lines) != 1 {
		t.Fatalf("Lines: got %d, want 1", len(res.Lines))
	}
	if res.AvgConfidence != 0.6 {
		t.Errorf("AvgConfidence: got %v, want 0.6", res.AvgConfidence)
	}
}

func TestNormalize_TextTrimmedButLinesVerbatim(t *testing.T) {
	raw := RawResult{[]any{
		detection("  indented", 0.9),
		detection("trailing  ", 0.9),
	}}

	res := Normalize(raw, 0)

	if res.Text != "indented\ntrailing" {
		t.Errorf("Text: got %q", res.Text)
	}
	if res.Lines[0].Text != "  indented" {
		t.Errorf("line text should be kept as reported, got %q", res.Lines[0].Text)
	}
}

func TestNormalize_MalformedEntriesSkipped(t *testing.T) {
	raw := RawResult{
		"not a page",
		[]any{
			"not a detection",
			[]any{nil},
			[]any{nil, "not a tuple"},
			[]any{nil, []any{42, 0.9}},
			[]any{nil, []any{"bad confidence", "high"}},
			[]any{"bad box", []any{"text", 0.9}},
			[]any{[]any{[]any{1.0}}, []any{"short point", 0.9}},
			[]any{nil, []any{"nan", math.NaN()}},
			detection("good", 0.75),
			[]any{nil, []any{"no box", 0.25}},
		},
	}

	res := Normalize(raw, 0)

	if len(res.Lines) != 2 {
		t.Fatalf("Lines: got %d (%+v), want 2", len(res.Lines), res.Lines)
	}
	if res.Lines[0].Text != "good" || res.Lines[1].Text != "no box" {
		t.Errorf("unexpected lines: %+v", res.Lines)
	}
	if res.Lines[1].Box != nil {
		t.Errorf("Box: got %v, want nil", res.Lines[1].Box)
	}
	if res.AvgConfidence != 0.5 {
		t.Errorf("AvgConfidence: got %v, want 0.5", res.AvgConfidence)
	}
}

func TestNormalize_NumericForms(t *testing.T) {
	raw := RawResult{[]any{
		detection("float32", float32(0.5)),
		detection("int", 1),
		detection("number", json.Number("0.25")),
		detection("string", "0.75"),
	}}

	res := Normalize(raw, 0)

	if len(res.Lines) != 4 {
		t.Fatalf("Lines: got %d, want 4", len(res.Lines))
	}
	want := []float64{0.5, 1, 0.25, 0.75}
	for i, w := range want {
		if res.Lines[i].Confidence != w {
			t.Errorf("line %d confidence: got %v, want %v", i, res.Lines[i].Confidence, w)
		}
	}
}

func TestResult_JSON(t *testing.T) {
	res := Normalize(RawResult{[]any{[]any{nil, []any{"<a&b>", 0.5}}}}, 7*time.Millisecond)

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"text", "lines", "blocks", "avgConfidence", "durationMs"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if strings.Contains(string(data), `"box"`) {
		t.Errorf("box should be omitted when absent: %s", data)
	}
}
