//go:build linux

package stdio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// redirectFD duplicates stderr onto fd 1 and returns a function putting the
// original fd 1 back.
func redirectFD() (func(), error) {
	saved, err := unix.Dup(unix.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate stdout: %w", err)
	}

	if err := unix.Dup3(unix.Stderr, unix.Stdout, 0); err != nil {
		unix.Close(saved)
		return nil, fmt.Errorf("failed to redirect stdout: %w", err)
	}

	return func() {
		_ = unix.Dup3(saved, unix.Stdout, 0)
		_ = unix.Close(saved)
	}, nil
}
