package ocr

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ironsheep/image-ocr/internal/config"
)

// writeScript creates an executable shell script and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "engine.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestExecEngine_Recognize(t *testing.T) {
	script := writeScript(t, `echo '[[[[[0,0],[10,0],[10,5],[0,5]],["HELLO",0.95]]]]'`)

	eng := NewExecEngine(script)
	if err := eng.Init(context.Background(), InitOptions{Language: "en"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer eng.Close()

	raw, err := eng.Recognize(context.Background(), "/tmp/img.png")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	res := Normalize(raw, 0)
	if res.Text != "HELLO" || res.AvgConfidence != 0.95 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(res.Lines[0].Box) != 4 {
		t.Errorf("box: got %v", res.Lines[0].Box)
	}
}

func TestExecEngine_Arguments(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args.txt")
	script := writeScript(t, `echo "$@" > "`+out+`"; echo '[]'`)

	eng := NewExecEngine(script + " --fast")
	if err := eng.Init(context.Background(), InitOptions{Language: "de"}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := eng.Recognize(context.Background(), "/tmp/page.png"); err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read args: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "--fast /tmp/page.png de" {
		t.Errorf("args: got %q", got)
	}
}

func TestExecEngine_CacheEnvironment(t *testing.T) {
	out := filepath.Join(t.TempDir(), "env.txt")
	script := writeScript(t, `echo "$IMAGE_OCR_HOME|$XDG_CACHE_HOME" > "`+out+`"; echo '[]'`)

	cache := config.CacheDirs{Root: "/data/ocr", Home: "/data/ocr/home", XDGCache: "/data/ocr/cache"}
	eng := NewExecEngine(script)
	if err := eng.Init(context.Background(), InitOptions{Cache: cache}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := eng.Recognize(context.Background(), "img.png"); err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read env: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "/data/ocr|/data/ocr/cache" {
		t.Errorf("env: got %q", got)
	}
}

func TestExecEngine_NonListOutput(t *testing.T) {
	script := writeScript(t, `echo '{"error": null}'`)

	eng := NewExecEngine(script)
	if err := eng.Init(context.Background(), InitOptions{}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	raw, err := eng.Recognize(context.Background(), "img.png")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("expected empty result, got %v", raw)
	}
}

func TestExecEngine_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-zero exit", `echo "model crashed" >&2; exit 4`},
		{"invalid json", `echo 'not json'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := writeScript(t, tt.body)

			var stderr bytes.Buffer
			eng := NewExecEngine(script)
			eng.Stderr = &stderr
			if err := eng.Init(context.Background(), InitOptions{}); err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			if _, err := eng.Recognize(context.Background(), "img.png"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExecEngine_InitMissingCommand(t *testing.T) {
	for _, cmd := range []string{"", "/nonexistent/ocr-engine"} {
		eng := NewExecEngine(cmd)
		err := eng.Init(context.Background(), InitOptions{})
		if !errors.Is(err, ErrEngineUnavailable) {
			t.Errorf("command %q: expected ErrEngineUnavailable, got %v", cmd, err)
		}
	}
}

func TestExecEngine_RecognizeWithoutInit(t *testing.T) {
	eng := NewExecEngine("true")
	if _, err := eng.Recognize(context.Background(), "img.png"); !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("expected ErrEngineUnavailable, got %v", err)
	}
}
