package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Prabisha01/de/internal/apperrors"
	"github.com/Prabisha01/de/internal/ids"
	"go.uber.org/zap"
)

const (
	defaultMaxImageBytes int64 = 2 << 20
	defaultMaxPDFBytes   int64 = 20 << 20
	pdfImagePrefix             = "pdf-"
)

var (
	// ErrNoFile reports an upload request that carried no file.
	ErrNoFile = fmt.Errorf("%w: no file uploaded", apperrors.ErrBadRequest)

	errMissingImageStore = errors.New("image store is required")
	errMissingLocalStore = errors.New("local store is required")
	errMissingRasterizer = errors.New("rasterizer is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()
)

// Upload is a file received from a client.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// StoredObject describes an accepted and stored upload.
type StoredObject struct {
	Ref         string
	ContentType string
	Size        int64
}

// IngressConfig wires the Ingress.
type IngressConfig struct {
	// Images receives validated image uploads. It may be the Local store.
	Images Store
	// Local is the serving directory; rasterized PDF pages are always written here.
	Local         *LocalStore
	Rasterizer    Rasterizer
	IDProvider    ids.Provider
	TempDir       string
	MaxImageBytes int64
	MaxPDFBytes   int64
	Logger        *zap.Logger
}

// Ingress validates uploads, spools them to a temporary file and stores them.
type Ingress struct {
	images        Store
	local         *LocalStore
	rasterizer    Rasterizer
	idProvider    ids.Provider
	tempDir       string
	maxImageBytes int64
	maxPDFBytes   int64
	logger        *zap.Logger
}

// NewIngress validates cfg and constructs an Ingress.
func NewIngress(cfg IngressConfig) (*Ingress, error) {
	if cfg.Images == nil {
		return nil, errMissingImageStore
	}
	if cfg.Local == nil {
		return nil, errMissingLocalStore
	}
	if cfg.Rasterizer == nil {
		return nil, errMissingRasterizer
	}
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	maxImage := cfg.MaxImageBytes
	if maxImage <= 0 {
		maxImage = defaultMaxImageBytes
	}
	maxPDF := cfg.MaxPDFBytes
	if maxPDF <= 0 {
		maxPDF = defaultMaxPDFBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Ingress{
		images:        cfg.Images,
		local:         cfg.Local,
		rasterizer:    cfg.Rasterizer,
		idProvider:    cfg.IDProvider,
		tempDir:       cfg.TempDir,
		maxImageBytes: maxImage,
		maxPDFBytes:   maxPDF,
		logger:        logger,
	}, nil
}

// MaxImageBytes returns the accepted image size limit.
func (i *Ingress) MaxImageBytes() int64 {
	return i.maxImageBytes
}

// MaxPDFBytes returns the accepted PDF size limit.
func (i *Ingress) MaxPDFBytes() int64 {
	return i.maxPDFBytes
}

// IngestImage accepts a jpg, jpeg, png or gif upload and stores it in the image store.
// The temporary copy is removed whether or not the transfer succeeds.
func (i *Ingress) IngestImage(ctx context.Context, upload Upload) (StoredObject, error) {
	if upload.Body == nil {
		return StoredObject{}, ErrNoFile
	}
	ext, err := imageExtension(upload.Filename)
	if err != nil {
		return StoredObject{}, err
	}
	if upload.Size > i.maxImageBytes {
		return StoredObject{}, tooLarge(i.maxImageBytes)
	}

	spooled, written, err := i.spool(upload.Body, "upload-*"+ext, i.maxImageBytes)
	if err != nil {
		return StoredObject{}, err
	}
	defer i.discard(spooled)

	detected, err := detectImage(spooled.Name())
	if err != nil {
		return StoredObject{}, err
	}
	if _, err := spooled.Seek(0, io.SeekStart); err != nil {
		return StoredObject{}, err
	}

	objectID, err := i.idProvider.NewID()
	if err != nil {
		return StoredObject{}, err
	}
	ref, err := i.images.Put(ctx, objectID+ext, detected.String(), spooled, written)
	if err != nil {
		i.logger.Error("image upload failed", zap.String("filename", upload.Filename), zap.Error(err))
		return StoredObject{}, err
	}
	return StoredObject{Ref: ref, ContentType: detected.String(), Size: written}, nil
}

// RasterizePDF renders page one of an uploaded PDF and writes the PNG to the local serving directory.
func (i *Ingress) RasterizePDF(ctx context.Context, upload Upload) (StoredObject, error) {
	if upload.Body == nil {
		return StoredObject{}, ErrNoFile
	}
	if upload.Size > i.maxPDFBytes {
		return StoredObject{}, tooLarge(i.maxPDFBytes)
	}

	workDir, err := os.MkdirTemp(i.tempDir, "pdf-*")
	if err != nil {
		return StoredObject{}, err
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			i.logger.Warn("temporary pdf cleanup failed", zap.String("path", workDir), zap.Error(err))
		}
	}()

	pdfPath := filepath.Join(workDir, "input.pdf")
	pdfFile, err := os.Create(pdfPath)
	if err != nil {
		return StoredObject{}, err
	}
	_, copyErr := copyLimited(pdfFile, upload.Body, i.maxPDFBytes)
	closeErr := pdfFile.Close()
	if copyErr != nil {
		return StoredObject{}, copyErr
	}
	if closeErr != nil {
		return StoredObject{}, closeErr
	}
	if err := detectPDF(pdfPath); err != nil {
		return StoredObject{}, err
	}

	pngPath, err := i.rasterizer.RasterizeFirstPage(ctx, pdfPath, filepath.Join(workDir, "page"))
	if err != nil {
		i.logger.Error("pdf rasterization failed", zap.String("filename", upload.Filename), zap.Error(err))
		return StoredObject{}, err
	}
	pngFile, err := os.Open(pngPath)
	if err != nil {
		return StoredObject{}, err
	}
	defer pngFile.Close()
	info, err := pngFile.Stat()
	if err != nil {
		return StoredObject{}, err
	}

	objectID, err := i.idProvider.NewID()
	if err != nil {
		return StoredObject{}, err
	}
	ref, err := i.local.Put(ctx, pdfImagePrefix+objectID+".png", "image/png", pngFile, info.Size())
	if err != nil {
		return StoredObject{}, err
	}
	return StoredObject{Ref: ref, ContentType: "image/png", Size: info.Size()}, nil
}

// Remove deletes a stored object from whichever store produced ref. Unknown references are ignored.
func (i *Ingress) Remove(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if i.local.Owns(ref) {
		return i.local.Remove(ctx, ref)
	}
	if i.images.Owns(ref) {
		return i.images.Remove(ctx, ref)
	}
	return nil
}

// LocalPath resolves a reference in the local serving directory to a file path.
func (i *Ingress) LocalPath(ref string) (string, bool) {
	return i.local.LocalPath(ref)
}

func (i *Ingress) spool(body io.Reader, pattern string, limit int64) (*os.File, int64, error) {
	file, err := os.CreateTemp(i.tempDir, pattern)
	if err != nil {
		return nil, 0, err
	}
	written, err := copyLimited(file, body, limit)
	if err != nil {
		i.discard(file)
		return nil, 0, err
	}
	return file, written, nil
}

func (i *Ingress) discard(file *os.File) {
	name := file.Name()
	file.Close()
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		i.logger.Warn("temporary upload cleanup failed", zap.String("path", name), zap.Error(err))
	}
}

func copyLimited(dst io.Writer, src io.Reader, limit int64) (int64, error) {
	written, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return written, err
	}
	if written > limit {
		return written, tooLarge(limit)
	}
	if written == 0 {
		return written, ErrNoFile
	}
	return written, nil
}
