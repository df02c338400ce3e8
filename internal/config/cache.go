package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Cache directory environment variables, in precedence order.
const (
	// EnvHome is the primary cache home override.
	EnvHome = "IMAGE_OCR_HOME"

	// EnvLegacyHome is honored when EnvHome is unset, for deployments that
	// configured the PaddleOCR helper this tool replaces.
	EnvLegacyHome = "PADDLEOCR_HOME"
)

// DefaultCacheHome is used when neither EnvHome nor EnvLegacyHome is set.
var DefaultCacheHome = filepath.Join(os.TempDir(), "image-ocr")

// CacheDirs are the directories an OCR engine may write model data and
// caches into.
type CacheDirs struct {
	// Root is the cache home itself.
	Root string

	// Home replaces $HOME for engines when the process has no usable home
	// (unset, empty, or "/").
	Home string

	// XDGCache is $XDG_CACHE_HOME for engines.
	XDGCache string
}

// ResolveCacheDirs computes the cache directories from environment lookups.
//
// Precedence for Root: EnvHome, then EnvLegacyHome, then DefaultCacheHome.
// Home is $HOME unless that is empty or "/", in which case it is Root/home.
// XDGCache is $XDG_CACHE_HOME, or Root/cache when unset.
func ResolveCacheDirs(getenv func(string) string) CacheDirs {
	root := firstNonBlank(getenv(EnvHome), getenv(EnvLegacyHome), DefaultCacheHome)

	home := strings.TrimSpace(getenv("HOME"))
	if home == "" || home == "/" {
		home = filepath.Join(root, "home")
	}

	xdg := firstNonBlank(getenv("XDG_CACHE_HOME"), filepath.Join(root, "cache"))

	return CacheDirs{Root: root, Home: home, XDGCache: xdg}
}

// Ensure creates every directory that does not exist yet. Failures are
// returned for logging only; a missing cache directory is never fatal.
func (c CacheDirs) Ensure() []error {
	var errs []error
	for _, dir := range []string{c.Root, c.Home, c.XDGCache} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Environ returns the variables an external engine process needs to find the
// cache, in os/exec "KEY=value" form. Later entries win over an inherited
// environment when appended to os.Environ().
func (c CacheDirs) Environ() []string {
	if c.Root == "" {
		return nil
	}
	return []string{
		EnvHome + "=" + c.Root,
		EnvLegacyHome + "=" + c.Root,
		"HOME=" + c.Home,
		"XDG_CACHE_HOME=" + c.XDGCache,
	}
}

// TessdataDir returns Root/tessdata when that directory exists, or "".
func (c CacheDirs) TessdataDir() string {
	if c.Root == "" {
		return ""
	}
	dir := filepath.Join(c.Root, "tessdata")
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
