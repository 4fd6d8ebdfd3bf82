package http

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contratos-api/internal/application/contract"
	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/templatesource"
)

// Cabeceras de la respuesta de generación.
const (
	HeaderGenerationID   = "X-Generation-ID"
	HeaderTotalAmount    = "X-Total-Amount"
	HeaderSkippedRows    = "X-Skipped-Rows"
	HeaderRowDiagnostics = "X-Row-Diagnostics"
)

// ContractHandler formulario del contrato: valores por defecto, vista previa y generación.
type ContractHandler struct {
	uc        *contract.GenerateUseCase
	templates *templatesource.Source
}

// NewContractHandler construye el handler.
func NewContractHandler(uc *contract.GenerateUseCase, templates *templatesource.Source) *ContractHandler {
	return &ContractHandler{uc: uc, templates: templates}
}

// Defaults godoc
// @Summary      Valores iniciales del formulario
// @Tags         contracts
// @Produce      json
// @Success      200  {object}  dto.ContractDefaultsResponse
// @Router       /api/contracts/defaults [get]
func (h *ContractHandler) Defaults(c *fiber.Ctx) error {
	return c.JSON(h.uc.Defaults())
}

// Preview godoc
// @Summary      Agregar el detalle sin generar el documento
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateContractRequest  true  "cabecera y filas"
// @Success      200   {object}  dto.PreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/contracts/preview [post]
func (h *ContractHandler) Preview(c *fiber.Ctx) error {
	var in dto.GenerateContractRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Preview(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Generate godoc
// @Summary      Generar el contrato
// @Description  Acepta JSON o multipart (campo payload con el JSON y archivo opcional template).
// @Description  Sin plantilla subida se usa la configurada en CONTRACT_TEMPLATE_PATH.
// @Tags         contracts
// @Accept       json
// @Accept       mpfd
// @Produce      application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Produce      application/pdf
// @Param        format  query  string  false  "docx (por defecto) o pdf"
// @Param        body    body   dto.GenerateContractRequest  true  "cabecera y filas"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/contracts/generate [post]
func (h *ContractHandler) Generate(c *fiber.Ctx) error {
	format, err := contract.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}

	var (
		in       dto.GenerateContractRequest
		uploaded []byte
	)
	if isMultipart(c) {
		payload := c.FormValue("payload")
		if payload == "" || json.Unmarshal([]byte(payload), &in) != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "campo payload inválido"})
		}
		if fh, ferr := c.FormFile("template"); ferr == nil {
			uploaded, err = h.templates.Upload(fh)
			if err != nil {
				return writeError(c, err)
			}
		}
	} else if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	tmpl := uploaded
	if tmpl == nil && format == contract.FormatDOCX {
		tmpl, err = h.templates.Bundled()
		if err != nil {
			return writeError(c, err)
		}
	}

	doc, err := h.uc.Generate(c.UserContext(), in, tmpl, format)
	if err != nil {
		return writeError(c, err)
	}

	diag, _ := json.Marshal(doc.Diagnostics)
	c.Set(HeaderGenerationID, doc.ID)
	c.Set(HeaderTotalAmount, doc.TotalAmount)
	c.Set(HeaderSkippedRows, strconv.Itoa(doc.Skipped))
	c.Set(HeaderRowDiagnostics, string(diag))
	c.Attachment(doc.Filename)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Send(doc.Data)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// writeError traduce los errores de dominio a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var empty *domain.EmptyOrderError
	switch {
	case errors.As(err, &empty):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "EMPTY_ORDER",
			Message: "ninguna fila tiene cantidad y precio válidos",
			Details: empty.Diagnostics,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrTemplate):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "TEMPLATE_ERROR", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
