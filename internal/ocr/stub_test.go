//go:build !ocr

package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/ironsheep/pdf2cad/internal/imaging"
)

func TestStub_DetectNotEnabled(t *testing.T) {
	_, err := NewDetector("eng").Detect(context.Background(), imaging.NewPage(20, 20, 1), nil)
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("got %v, want ErrOCRNotEnabled", err)
	}
}

func TestStub_Info(t *testing.T) {
	info := GetInfo("eng")
	if info.Available {
		t.Error("OCR should not be available without the ocr tag")
	}
	if info.Backend != "none" {
		t.Errorf("Backend = %q, want none", info.Backend)
	}
}
