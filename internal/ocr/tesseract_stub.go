//go:build !ocr

package ocr

// This is the stub used when the "ocr" build tag is not set, so the
// default build needs neither cgo nor a system Tesseract install.
//
// To enable the local backend, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// and install Tesseract with the jpn and jpn_vert trained data.

// NewTesseractBlockService reports that Tesseract support was not compiled in.
func NewTesseractBlockService() (BlockService, error) {
	return nil, NewOCRError("NewTesseractBlockService", ErrTesseractNotEnabled, "")
}
