//go:build !ocr

package ocr

import "context"

const backend = "none"

func (d *Detector) recognize(ctx context.Context, encoded []byte) ([]word, error) {
	return nil, ErrOCRNotEnabled
}

func engineVersion() (string, error) {
	return "", ErrOCRNotEnabled
}
