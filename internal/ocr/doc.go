// Package ocr runs an OCR engine on a prepared image and normalizes its output.
//
// # Engines
//
// An Engine is initialized once per invocation, asked to recognize one image,
// and closed. Two engines are provided:
//
//   - TesseractEngine: the Tesseract library via gosseract/v2 (requires cgo).
//   - ExecEngine: any external command printing PaddleOCR-style JSON.
//
// Tesseract must be installed together with the traineddata for the requested
// language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A tessdata directory inside the cache home (IMAGE_OCR_HOME) takes precedence
// over the system location.
//
// # Languages
//
// Callers pass short codes such as "en", "de" or "ch". TesseractLanguage maps
// them to Tesseract names ("eng", "deu", "chi_sim"); ExecEngine forwards them
// unchanged.
//
// # Raw and Normalized Results
//
// Engines return a RawResult, a loosely typed list of pages of
// [box, [text, confidence]] detections. Normalize converts it into a Result:
// blank detections and malformed entries are dropped, the remaining lines keep
// engine order, Text joins them with newlines, and AvgConfidence is their mean
// (0 when there are none).
//
// # Error Handling
//
// Invoker.Run wraps failures to create or initialize an engine with
// ErrEngineUnavailable. Failures while recognizing are returned unwrapped so
// callers can tell the two apart.
package ocr
