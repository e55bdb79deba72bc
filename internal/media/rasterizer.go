package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

const (
	defaultPdftoppmBinary = "pdftoppm"
	defaultRasterDensity  = 100
)

// Rasterizer renders the first page of a PDF to a PNG file.
type Rasterizer interface {
	RasterizeFirstPage(ctx context.Context, pdfPath string, outputPrefix string) (string, error)
}

// PopplerRasterizer shells out to poppler's pdftoppm.
type PopplerRasterizer struct {
	binary  string
	density int
}

// NewPopplerRasterizer uses binary, or pdftoppm from PATH when empty.
func NewPopplerRasterizer(binary string) *PopplerRasterizer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultPdftoppmBinary
	}
	return &PopplerRasterizer{binary: binary, density: defaultRasterDensity}
}

func (r *PopplerRasterizer) RasterizeFirstPage(ctx context.Context, pdfPath string, outputPrefix string) (string, error) {
	command := exec.CommandContext(ctx, r.binary,
		"-png",
		"-f", "1",
		"-l", "1",
		"-r", strconv.Itoa(r.density),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)
	output, err := command.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(output)))
	}
	pngPath := outputPrefix + ".png"
	if _, err := os.Stat(pngPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("pdftoppm produced no output for %s", pdfPath)
		}
		return "", err
	}
	return pngPath, nil
}
