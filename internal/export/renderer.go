// Package export renders a board to a PDF document.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Prabisha01/de/internal/boards"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	fontFamily      = "Helvetica"
	fontSize        = 12
	lineHeight      = 14
	contentType     = "application/pdf"
	pageSize        = "A4"
	pageUnit        = "pt"
	pageOrientation = "P"
)

var supportedImageTypes = map[string]string{".jpg": "JPG", ".jpeg": "JPG", ".png": "PNG", ".gif": "GIF"}

// LocalResolver maps a media reference to a file on local disk.
type LocalResolver interface {
	LocalPath(ref string) (string, bool)
}

// Renderer paints text and locally stored image elements in ascending rank order.
// Other element types, and images held outside the local store, are skipped.
type Renderer struct {
	resolver LocalResolver
	logger   *zap.Logger
}

// NewRenderer constructs a Renderer.
func NewRenderer(resolver LocalResolver, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{resolver: resolver, logger: logger}
}

// ContentType is the MIME type of rendered documents.
func (r *Renderer) ContentType() string {
	return contentType
}

// Filename is the attachment name for an exported board.
func (r *Renderer) Filename(board boards.Board) string {
	return fmt.Sprintf("board-%s.pdf", board.ID)
}

// Render writes the board as a single-page PDF to w.
func (r *Renderer) Render(w io.Writer, board boards.Board) error {
	document := fpdf.New(pageOrientation, pageUnit, pageSize, "")
	document.SetTitle(board.BoardName, true)
	document.SetAutoPageBreak(false, 0)
	document.AddPage()
	document.SetFont(fontFamily, "", fontSize)
	translate := document.UnicodeTranslatorFromDescriptor("")

	for _, element := range paintOrder(board.Elements) {
		switch element.Type {
		case boards.ElementTypeText:
			document.SetXY(element.Position.X, element.Position.Y)
			document.Write(lineHeight, translate(element.Content))
		case boards.ElementTypeImage:
			r.paintImage(document, board.ID, element)
		}
	}
	return document.Output(w)
}

func (r *Renderer) paintImage(document *fpdf.Fpdf, boardID string, element boards.Element) {
	ref := strings.TrimSpace(element.Src)
	if ref == "" {
		ref = strings.TrimSpace(element.Content)
	}
	if r.resolver == nil || ref == "" {
		return
	}
	path, ok := r.resolver.LocalPath(ref)
	if !ok {
		r.logger.Debug("export skipped non-local image", zap.String("board_id", boardID), zap.String("ref", ref))
		return
	}
	imageType, ok := supportedImageTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return
	}
	options := fpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	document.RegisterImageOptions(path, options)
	if !document.Ok() {
		r.logger.Warn("export skipped unreadable image",
			zap.String("board_id", boardID),
			zap.String("ref", ref),
			zap.Error(document.Error()))
		document.ClearError()
		return
	}
	document.ImageOptions(path, element.Position.X, element.Position.Y, element.Size.Width, element.Size.Height, false, options, 0, "")
}

func paintOrder(elements boards.Elements) boards.Elements {
	ordered := make(boards.Elements, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(left, right int) bool {
		return ordered[left].Rank < ordered[right].Rank
	})
	return ordered
}
