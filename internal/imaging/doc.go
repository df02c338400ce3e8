// Package imaging prepares raster images for OCR.
//
// Preparation runs in two steps, each writing a new transient PNG:
//
//   - Normalize: decode any supported format, force the image opaque RGB and
//     optionally bound its longer side.
//   - Deskew: measure the dominant text skew of a binarized copy and rotate the
//     full-color image to undo small skews. Deskew never fails its caller; the
//     outcome is reported through DeskewResult.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner; X
// increases rightward and Y increases downward. Angles are in degrees and a
// positive rotation turns the image clockwise on screen.
//
// # Transient Files
//
// Every file written by this package is created through a TempScope. The
// owner of the scope defers Cleanup, which removes every file still owned by
// the scope regardless of how the caller exits. Superseded files can be
// released earlier with Release.
//
// # Error Handling
//
// Normalize returns errors for:
//   - Missing or unreadable files
//   - Data that is not a decodable image
//   - Temporary file I/O errors
//
// Deskew reports the same conditions, plus images without any foreground
// pixels, as a DeskewFailed status and keeps the input path.
package imaging
