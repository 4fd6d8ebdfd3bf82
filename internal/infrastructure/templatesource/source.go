// Package templatesource resuelve los bytes de la plantilla del contrato: el archivo
// empaquetado con el servicio o el que sube el usuario.
package templatesource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Contratos-api/internal/domain"
)

// Source entrega plantillas como bytes; quien renderiza no sabe de dónde vinieron.
type Source struct {
	bundledPath string
	maxBytes    int64
}

// New construye la fuente. maxBytes limita el tamaño de las plantillas subidas.
func New(bundledPath string, maxBytes int64) *Source {
	return &Source{bundledPath: bundledPath, maxBytes: maxBytes}
}

// BundledPath ruta de la plantilla por defecto.
func (s *Source) BundledPath() string { return s.bundledPath }

// Bundled lee la plantilla configurada (CONTRACT_TEMPLATE_PATH).
func (s *Source) Bundled() ([]byte, error) {
	b, err := os.ReadFile(s.bundledPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewTemplateError("cargar plantilla", "no existe %s", s.bundledPath)
		}
		return nil, &domain.TemplateError{Op: "cargar plantilla", Err: err}
	}
	return b, nil
}

// Upload lee una plantilla .docx subida por multipart.
func (s *Source) Upload(fh *multipart.FileHeader) ([]byte, error) {
	if fh == nil {
		return nil, fmt.Errorf("%w: plantilla requerida", domain.ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".docx") {
		return nil, fmt.Errorf("%w: la plantilla debe ser .docx", domain.ErrInvalidInput)
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: la plantilla supera %d bytes", domain.ErrInvalidInput, s.maxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("abrir plantilla subida: %w", err)
	}
	defer f.Close()
	return ReadLimited(f, s.maxBytes)
}

// ReadLimited lee r completo rechazando contenidos mayores a max (max <= 0: sin límite).
func ReadLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("%w: el archivo supera %d bytes", domain.ErrInvalidInput, max)
	}
	return b, nil
}
