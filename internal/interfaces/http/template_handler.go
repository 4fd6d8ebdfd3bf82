package http

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contratos-api/internal/application/contract"
	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/templatesource"
)

// TemplateHandler inspección de plantillas e importación de filas desde Excel.
type TemplateHandler struct {
	uc        *contract.GenerateUseCase
	templates *templatesource.Source
	maxBytes  int64
}

// NewTemplateHandler construye el handler. maxBytes limita la hoja de cálculo subida.
func NewTemplateHandler(uc *contract.GenerateUseCase, templates *templatesource.Source, maxBytes int64) *TemplateHandler {
	return &TemplateHandler{uc: uc, templates: templates, maxBytes: maxBytes}
}

// Inspect godoc
// @Summary      Listar los marcadores de una plantilla
// @Description  Sin archivo se inspecciona la plantilla configurada.
// @Tags         templates
// @Accept       mpfd
// @Produce      json
// @Param        template  formData  file  false  "plantilla .docx"
// @Success      200  {object}  dto.TemplateInspectionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/templates/inspect [post]
func (h *TemplateHandler) Inspect(c *fiber.Ctx) error {
	var (
		tmpl []byte
		err  error
	)
	if fh, ferr := c.FormFile("template"); ferr == nil {
		tmpl, err = h.templates.Upload(fh)
	} else {
		tmpl, err = h.templates.Bundled()
	}
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.InspectTemplate(tmpl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ImportItems godoc
// @Summary      Importar filas desde una hoja .xlsx
// @Tags         items
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "hoja de cálculo .xlsx"
// @Success      200  {object}  dto.ImportItemsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/items/import [post]
func (h *TemplateHandler) ImportItems(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "archivo requerido"})
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el archivo debe ser .xlsx"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()
	data, err := templatesource.ReadLimited(f, h.maxBytes)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.ImportItems(bytes.NewReader(data))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
