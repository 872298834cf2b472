// Package ocr provides Optical Character Recognition (OCR) functionality using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2) as a
// detection.Detector: a rendered page goes in, word regions with bounding
// boxes and a 0-100 confidence come out.
//
// # Build Tags
//
// gosseract links against libtesseract through cgo, so the engine is only
// compiled in with the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Without the tag every detection returns ErrOCRNotEnabled, which the
// pipeline reports as a per-page detection failure.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// Set TESSDATA_PREFIX or Detector.TessdataPrefix when the data lives outside
// Tesseract's default search path.
//
// # Supported Languages
//
// The default language is English ("eng"). Other languages can be specified
// using their Tesseract language codes, and combined with '+' ("eng+deu").
//
// # Recognition Mode
//
// Drawings scatter short labels across the sheet, so pages are recognised
// with sparse-text page segmentation and read back at word level (RIL_WORD).
package ocr
