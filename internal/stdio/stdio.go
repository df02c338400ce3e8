// Package stdio keeps the process standard output reserved for the final
// JSON document.
//
// OCR libraries print progress and warnings to standard output, sometimes
// from C code that bypasses os.Stdout. RedirectStdout points file descriptor 1
// at standard error while such code runs, where the platform allows it, and
// always swaps os.Stdout for os.Stderr.
package stdio

import (
	"os"
	"sync"
)

var mu sync.Mutex

// RedirectStdout sends standard output to standard error until the returned
// function is called. The restore function is safe to call more than once.
// Redirections do not nest; callers must restore before redirecting again.
func RedirectStdout() (restore func(), err error) {
	mu.Lock()
	defer mu.Unlock()

	undo, err := redirectFD()
	if err != nil {
		return nil, err
	}

	saved := os.Stdout
	os.Stdout = os.Stderr

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			os.Stdout = saved
			undo()
		})
	}, nil
}
