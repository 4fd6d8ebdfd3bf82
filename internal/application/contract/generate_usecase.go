package contract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/order"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/docx"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/Contratos-api/pkg/logger"
)

// Format formato de salida del contrato.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Content types de los documentos generados.
const (
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePDF  = "application/pdf"
)

// ParseFormat interpreta el parámetro ?format=. Vacío = docx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatDOCX):
		return FormatDOCX, nil
	case string(FormatPDF):
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, s)
	}
}

// PaymentTermsOptions opciones de forma de pago que ofrece el formulario.
var PaymentTermsOptions = []string{
	"30% Deposit, 70% Balance before shipment",
	"100% T/T in advance",
	"L/C at sight",
	"50% Deposit, 50% Balance against B/L copy",
}

// GeneratedDocument documento listo para descargar.
type GeneratedDocument struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	TotalAmount string
	Skipped     int
	Diagnostics []*domain.ValidationError
}

// GenerateUseCase agrega el detalle del contrato y lo entrega al motor de plantillas.
// No guarda estado entre llamadas: la tabla completa llega en cada petición.
type GenerateUseCase struct {
	renderer  DocumentRenderer
	inspector TemplateInspector
	pdf       PDFGenerator
	log       *logger.Logger
	now       func() time.Time
}

// NewGenerateUseCase construye el caso de uso inyectando sus dependencias.
func NewGenerateUseCase(renderer DocumentRenderer, inspector TemplateInspector, pdf PDFGenerator, log *logger.Logger) *GenerateUseCase {
	return &GenerateUseCase{
		renderer:  renderer,
		inspector: inspector,
		pdf:       pdf,
		log:       log,
		now:       time.Now,
	}
}

// Defaults devuelve los valores iniciales del formulario, con dos filas de ejemplo.
func (uc *GenerateUseCase) Defaults() dto.ContractDefaultsResponse {
	return dto.ContractDefaultsResponse{
		BuyerName:           "LLC OSIYO KOSMETIK",
		ContractNo:          "ZB2025-001",
		Date:                uc.now().Format(entity.DateLayout),
		ShippingMethod:      "By Truck (Land Transportation)",
		PaymentTerms:        PaymentTermsOptions[0],
		PaymentTermsOptions: PaymentTermsOptions,
		LeadTime:            "20 Working Days after deposit",
		Items: []entity.LineItemInput{
			{
				SequenceNo: entity.NumberCell(1),
				DescEN:     "Folding Machine",
				DescCN:     "折叠机",
				Quantity:   entity.NumberCell(1),
				Unit:       "Set",
				UnitPrice:  entity.NumberCell(34200.00),
			},
			{
				SequenceNo: entity.NumberCell(2),
				DescEN:     "Water Tank",
				DescCN:     "水箱",
				Quantity:   entity.NumberCell(1),
				Unit:       "Pcs",
				UnitPrice:  entity.NumberCell(5000.00),
			},
		},
	}
}

// Preview agrega las filas y arma el contexto sin renderizar.
//
// Retorna:
//   - domain.ErrInvalidInput (envuelto) si la fecha no es YYYY-MM-DD.
//   - *domain.EmptyOrderError si no queda ninguna línea facturable.
func (uc *GenerateUseCase) Preview(in dto.GenerateContractRequest) (*dto.PreviewResponse, error) {
	docCtx, res, err := uc.buildContext(in)
	if err != nil {
		return nil, err
	}
	return &dto.PreviewResponse{
		Context:     docCtx,
		TotalAmount: res.TotalAmount,
		Skipped:     res.Skipped,
		Diagnostics: nonNil(res.Diagnostics),
	}, nil
}

// Generate agrega las filas y renderiza el contrato con la plantilla ya resuelta por el
// caller (tmpl solo se usa en formato docx). Las filas inválidas se excluyen y se
// devuelven como diagnósticos; un pedido vacío o un fallo de plantilla abortan.
func (uc *GenerateUseCase) Generate(ctx context.Context, in dto.GenerateContractRequest, tmpl []byte, format Format) (*GeneratedDocument, error) {
	genID := uuid.New().String()
	docCtx, res, err := uc.buildContext(in)
	if err != nil {
		var empty *domain.EmptyOrderError
		if errors.As(err, &empty) {
			uc.log.Warn().
				Str("generation_id", genID).
				Int("rows", len(in.Items)).
				Int("invalid_rows", len(empty.Diagnostics)).
				Msg("contrato sin líneas facturables")
		}
		return nil, err
	}
	for _, d := range res.Diagnostics {
		uc.log.Warn().
			Str("generation_id", genID).
			Int("row", d.Row+1).
			Str("field", d.Field).
			Str("value", d.Value).
			Msg("fila excluida del contrato")
	}

	out := &GeneratedDocument{
		ID:          genID,
		TotalAmount: res.TotalAmount,
		Skipped:     res.Skipped,
		Diagnostics: nonNil(res.Diagnostics),
	}

	switch format {
	case FormatPDF:
		out.Data, err = uc.pdf.GenerateContractPDF(ctx, docCtx)
		if err != nil {
			return nil, fmt.Errorf("contrato: generar pdf: %w", err)
		}
		out.ContentType = ContentTypePDF
	default:
		out.Data, err = uc.renderer.Render(ctx, tmpl, docCtx.Map())
		if err != nil {
			uc.log.Error().Err(err).Str("generation_id", genID).Msg("render de plantilla fallido")
			return nil, err
		}
		out.ContentType = ContentTypeDOCX
		format = FormatDOCX
	}
	out.Filename = Filename(docCtx.ContractNo, format)

	uc.log.Info().
		Str("generation_id", genID).
		Str("contract_no", docCtx.ContractNo).
		Str("format", string(format)).
		Int("items", len(docCtx.Items)).
		Str("total_amount", res.TotalAmount).
		Msg("contrato generado")
	return out, nil
}

// InspectTemplate lista los marcadores de la plantilla y los que no se podrían resolver.
func (uc *GenerateUseCase) InspectTemplate(tmpl []byte) (*dto.TemplateInspectionResponse, error) {
	keys, err := uc.inspector.Placeholders(tmpl)
	if err != nil {
		return nil, err
	}
	return &dto.TemplateInspectionResponse{
		Placeholders: keys,
		Missing:      nonNilStrings(docx.MissingKeys(keys, entity.ContextKeys)),
	}, nil
}

// ImportItems lee las filas de una hoja .xlsx para precargar la tabla.
func (uc *GenerateUseCase) ImportItems(r io.Reader) (*dto.ImportItemsResponse, error) {
	items, err := spreadsheet.ReadLineItems(r)
	if err != nil {
		return nil, err
	}
	return &dto.ImportItemsResponse{Count: len(items), Items: items}, nil
}

func (uc *GenerateUseCase) buildContext(in dto.GenerateContractRequest) (entity.DocumentContext, *order.Result, error) {
	date := uc.now()
	if s := strings.TrimSpace(in.Date); s != "" {
		d, err := time.Parse(entity.DateLayout, s)
		if err != nil {
			return entity.DocumentContext{}, nil, fmt.Errorf("%w: fecha %q, se espera YYYY-MM-DD", domain.ErrInvalidInput, in.Date)
		}
		date = d
	}

	res, err := order.Aggregate(in.Items)
	if err != nil {
		return entity.DocumentContext{}, nil, err
	}
	header := entity.ContractHeader{
		BuyerName:      in.BuyerName,
		BuyerAddress:   in.BuyerAddress,
		ContractNo:     in.ContractNo,
		Date:           date,
		PaymentTerms:   in.PaymentTerms,
		LeadTime:       in.LeadTime,
		ShippingMethod: in.ShippingMethod,
	}
	return order.BuildContext(header, res), res, nil
}

// Filename nombre del archivo de descarga: Contract_<n° contrato>.<ext>.
func Filename(contractNo string, format Format) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(contractNo))
	if name == "" {
		name = "contract"
	}
	return fmt.Sprintf("Contract_%s.%s", name, format)
}

func nonNil(d []*domain.ValidationError) []*domain.ValidationError {
	if d == nil {
		return []*domain.ValidationError{}
	}
	return d
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
