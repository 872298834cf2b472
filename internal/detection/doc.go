// Package detection finds text on a page so it can be emitted as annotations
// and kept out of the traced geometry.
//
// A Detector returns word regions in raster pixel coordinates with a
// confidence from 0 to 100. Select then splits them by a confidence
// threshold: every region at or above it becomes a text annotation in output
// space and a rectangle to erase from the working raster; regions below it
// are neither annotated nor masked.
//
// # Detectors
//
//   - LayerDetector reads the document's own text layer (confidence 100).
//   - The ocr package provides a Tesseract-backed detector.
//   - Auto prefers the text layer and falls back to its secondary detector
//     when the page has none.
//
// # Coordinate System
//
// Region bounds use the raster convention: origin top-left, Y down, (X1, Y1)
// inclusive and (X2, Y2) exclusive. Annotations are anchored at the lower-left
// corner of their region after the page transform, i.e. in Y-up output space.
package detection
