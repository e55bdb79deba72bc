package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/gabriel-vasile/mimetype"
)

var (
	allowedImageExtensions = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}}
	allowedImageTypes      = []string{"image/jpeg", "image/png", "image/gif"}
	errImagesOnly          = fmt.Errorf("%w: images only (jpeg, jpg, png, gif)", apperrors.ErrValidation)
	errPDFOnly             = fmt.Errorf("%w: only pdf documents are accepted", apperrors.ErrValidation)
)

func imageExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return "", errImagesOnly
	}
	return ext, nil
}

func detectImage(filePath string) (*mimetype.MIME, error) {
	detected, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, err
	}
	if !detected.Is(allowedImageTypes[0]) && !detected.Is(allowedImageTypes[1]) && !detected.Is(allowedImageTypes[2]) {
		return nil, errImagesOnly
	}
	return detected, nil
}

func detectPDF(filePath string) error {
	detected, err := mimetype.DetectFile(filePath)
	if err != nil {
		return err
	}
	if !detected.Is("application/pdf") {
		return errPDFOnly
	}
	return nil
}

func tooLarge(limit int64) error {
	return fmt.Errorf("%w: file exceeds the %d byte limit", apperrors.ErrValidation, limit)
}
