package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contratos-api/internal/application/contract"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/templatesource"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ContractUC     *contract.GenerateUseCase
	Templates      *templatesource.Source
	MaxUploadBytes int64
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Contratos
	contracts := api.Group("/contracts")
	contractHandler := NewContractHandler(deps.ContractUC, deps.Templates)
	contracts.Get("/defaults", contractHandler.Defaults)
	contracts.Post("/preview", contractHandler.Preview)
	contracts.Post("/generate", contractHandler.Generate)

	// Plantillas e importación de filas
	templateHandler := NewTemplateHandler(deps.ContractUC, deps.Templates, deps.MaxUploadBytes)
	api.Post("/templates/inspect", templateHandler.Inspect)
	api.Post("/items/import", templateHandler.ImportItems)
}
