//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

const backend = "gosseract"

// recognize runs Tesseract over an encoded image and returns word boxes.
func (d *Detector) recognize(ctx context.Context, encoded []byte) ([]word, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if d.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(d.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(d.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if err := client.SetImageFromBytes(encoded); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Get word-level bounding boxes
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, word{Box: box.Box, Text: box.Word, Confidence: box.Confidence})
	}
	return words, nil
}

// engineVersion returns the linked Tesseract version.
func engineVersion() (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	version := client.Version()
	if version == "" {
		return "", fmt.Errorf("tesseract did not report a version")
	}
	return version, nil
}
