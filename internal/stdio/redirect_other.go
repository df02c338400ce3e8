//go:build !linux

package stdio

// redirectFD is a no-op; only os.Stdout is swapped on this platform.
func redirectFD() (func(), error) {
	return func() {}, nil
}
