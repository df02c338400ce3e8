package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ExecEngine runs an external recognizer once per image.
//
// The command is invoked as "<command> <image> <language>". It must print the
// raw result in the PaddleOCR layout as JSON on standard output; its standard
// error is passed through. The cache directories are exported to the child
// through IMAGE_OCR_HOME, PADDLEOCR_HOME, HOME and XDG_CACHE_HOME.
type ExecEngine struct {
	// Command is a program name or path, optionally followed by fixed
	// arguments separated by spaces.
	Command string

	// Stderr receives the child's standard error; nil means os.Stderr.
	Stderr io.Writer

	path string
	args []string
	lang string
	env  []string
}

// NewExecEngine returns an engine running command.
func NewExecEngine(command string) *ExecEngine {
	return &ExecEngine{Command: command}
}

// Name implements Engine.
func (e *ExecEngine) Name() string { return "exec" }

// Init resolves the command on PATH.
func (e *ExecEngine) Init(ctx context.Context, opts InitOptions) error {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		return fmt.Errorf("%w: no engine command configured", ErrEngineUnavailable)
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	e.path = path
	e.args = fields[1:]
	e.lang = opts.Language
	e.env = append(os.Environ(), opts.Cache.Environ()...)
	return nil
}

// Recognize implements Engine. A non-zero exit status or output that is not
// valid JSON is an error; valid JSON that is not a list yields no lines.
func (e *ExecEngine) Recognize(ctx context.Context, imagePath string) (RawResult, error) {
	if e.path == "" {
		return nil, fmt.Errorf("%w: exec engine not initialized", ErrEngineUnavailable)
	}

	args := append(append([]string{}, e.args...), imagePath, e.lang)
	cmd := exec.CommandContext(ctx, e.path, args...)
	cmd.Env = e.env

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = e.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("engine command exited with status %d", exitErr.ExitCode())
		}
		return nil, fmt.Errorf("failed to run engine command: %w", err)
	}

	return decodeRawResult(stdout.Bytes())
}

// Close implements Engine.
func (e *ExecEngine) Close() error { return nil }

func decodeRawResult(data []byte) (RawResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return RawResult{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode engine output: %w", err)
	}

	pages, ok := v.([]any)
	if !ok {
		return RawResult{}, nil
	}
	return RawResult(pages), nil
}
