package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-ocr/internal/config"
	"github.com/ironsheep/image-ocr/internal/logging"
	"github.com/ironsheep/image-ocr/internal/ocr"
	"github.com/ironsheep/image-ocr/internal/pipeline"
	"github.com/ironsheep/image-ocr/internal/stdio"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
// Standard output receives only the JSON result (or version/help text).
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	failure := color.New(color.FgRed)

	if err := config.LoadDotEnv(".env"); err != nil {
		failure.Fprintln(stderr, err)
	}

	cfg, envErr := config.FromEnv(os.Getenv)
	code := pipeline.ExitOK

	root := newRootCmd(&cfg, stdout, stderr, &code)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if envErr != nil {
			failure.Fprintf(stderr, "ignoring invalid environment: %v\n", envErr)
		}
	}

	if err := root.ExecuteContext(ctx); err != nil {
		failure.Fprintln(stderr, err)
		fmt.Fprintln(stderr, "Run 'image-ocr --help' for usage.")
		return pipeline.ExitFailure
	}
	return code
}

func newRootCmd(cfg *config.Config, stdout, stderr io.Writer, code *int) *cobra.Command {
	var noDeskew, noAutoOrient, noAngleCls bool

	cmd := &cobra.Command{
		Use:   "image-ocr [flags] <image>",
		Short: "Extract text from an image as JSON",
		Long: `image-ocr recognizes the text in one image and prints a single JSON line:

  {"text": ..., "lines": [{"text", "confidence", "box"}], "blocks": [...],
   "avgConfidence": ..., "durationMs": ...}

The image is converted to opaque RGB, downscaled to --max-dimension and
deskewed before recognition. Diagnostics go to standard error.

Exit codes:
  0  success
  1  image not found
  2  OCR engine unavailable
  3  any other failure

Environment variables:
  IMAGE_OCR_HOME          cache home for engine data (fallback PADDLEOCR_HOME)
  IMAGE_OCR_LANG          default language
  IMAGE_OCR_ENGINE        default engine
  IMAGE_OCR_LOG_LEVEL     log level (debug, info, warn, error)
  IMAGE_OCR_*             defaults for the other flags`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cfg.Image != "" && cfg.Image != args[0] {
					return errors.New("image given both as argument and --image")
				}
				cfg.Image = args[0]
			}
			cfg.Deskew = cfg.Deskew && !noDeskew
			cfg.AutoOrient = cfg.AutoOrient && !noAutoOrient
			cfg.AngleClassification = cfg.AngleClassification && !noAngleCls
			if err := cfg.Validate(); err != nil {
				return err
			}
			*code = recognize(cmd.Context(), *cfg, stdout, stderr)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Image, "image", "i", cfg.Image, "path of the image to recognize")
	f.StringVarP(&cfg.Lang, "lang", "l", cfg.Lang, "language code, e.g. en, de, ch")
	f.IntVar(&cfg.MaxDimension, "max-dimension", cfg.MaxDimension, "downscale so the longer side is at most this many pixels (0 disables)")
	f.Float64Var(&cfg.MinSkew, "min-skew", cfg.MinSkew, "smallest skew angle in degrees that is corrected")
	f.Float64Var(&cfg.MaxSkew, "max-skew", cfg.MaxSkew, "largest skew angle in degrees that is corrected")
	f.StringVar(&cfg.Background, "background", cfg.Background, "hex color for transparency and rotation fill")
	f.StringVar(&cfg.Engine, "engine", cfg.Engine, "OCR engine: tesseract or exec")
	f.StringVar(&cfg.EngineCmd, "engine-cmd", cfg.EngineCmd, "command run by the exec engine as '<cmd> <image> <lang>'")
	f.StringVar(&cfg.TempDir, "tmpdir", cfg.TempDir, "directory for transient images")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	f.BoolVar(&noDeskew, "no-deskew", false, "disable skew correction")
	f.BoolVar(&noAutoOrient, "no-auto-orient", false, "ignore the EXIF orientation tag")
	f.BoolVar(&noAngleCls, "no-angle-cls", false, "disable text orientation detection")

	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "image-ocr %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			if v := ocr.TesseractVersion(); v != "" {
				fmt.Fprintf(stdout, "  Tesseract:  %s\n", v)
			}
		},
	}
}

// recognize runs the pipeline and reports failures on stderr.
func recognize(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) int {
	log := logging.ForRun(logging.New(stderr, cfg.LogLevel))
	log.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
		"engine":  cfg.Engine,
	}).Debug("image-ocr starting")

	p := &pipeline.Pipeline{
		Engine: newEngine(cfg, stderr),
		Guard:  stdio.RedirectStdout,
		Out:    stdout,
		Log:    log,
	}

	if _, err := p.Run(ctx, cfg); err != nil {
		color.New(color.FgRed).Fprintln(stderr, err)
		return pipeline.ExitCode(err)
	}
	return pipeline.ExitOK
}

func newEngine(cfg config.Config, stderr io.Writer) ocr.Engine {
	if cfg.Engine == config.EngineExec {
		eng := ocr.NewExecEngine(cfg.EngineCmd)
		eng.Stderr = stderr
		return eng
	}
	return ocr.NewTesseractEngine()
}
