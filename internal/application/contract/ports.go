package contract

import (
	"context"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// DocumentRenderer motor de plantillas .docx: recibe la plantilla ya resuelta y el
// contexto plano, devuelve el documento o un *domain.TemplateError.
type DocumentRenderer interface {
	Render(ctx context.Context, tmpl []byte, data map[string]any) ([]byte, error)
}

// TemplateInspector lista los marcadores que usa una plantilla.
type TemplateInspector interface {
	Placeholders(tmpl []byte) ([]string, error)
}

// PDFGenerator produce la copia PDF del contrato.
type PDFGenerator interface {
	GenerateContractPDF(ctx context.Context, doc entity.DocumentContext) ([]byte, error)
}
