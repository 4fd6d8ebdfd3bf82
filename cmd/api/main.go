package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Contratos-api/internal/application/contract"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/docx"
	infrapdf "github.com/jhoicas/Contratos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/templatesource"
	httpRouter "github.com/jhoicas/Contratos-api/internal/interfaces/http"
	"github.com/jhoicas/Contratos-api/pkg/config"
	"github.com/jhoicas/Contratos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("template", cfg.Template.Path).
		Msg("iniciando aplicación")

	renderer := docx.NewTemplateRenderer()
	inspector := docx.NewInspector()
	pdfGenerator := infrapdf.NewMarotoContractGenerator()
	contractUC := contract.NewGenerateUseCase(renderer, inspector, pdfGenerator, log)
	templates := templatesource.New(cfg.Template.Path, cfg.Template.MaxUploadBytes)

	checkBundledTemplate(log, contractUC, templates)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    int(cfg.Template.MaxUploadBytes) + 1<<20,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Contratos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ContractUC:     contractUC,
		Templates:      templates,
		MaxUploadBytes: cfg.Template.MaxUploadBytes,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// checkBundledTemplate avisa al arrancar si la plantilla configurada falta o usa
// marcadores que el contexto no ofrece. No detiene el servicio: se pueden subir plantillas.
func checkBundledTemplate(log *logger.Logger, uc *contract.GenerateUseCase, templates *templatesource.Source) {
	tmpl, err := templates.Bundled()
	if err != nil {
		log.Warn().Err(err).Str("path", templates.BundledPath()).Msg("plantilla por defecto no disponible")
		return
	}
	report, err := uc.InspectTemplate(tmpl)
	if err != nil {
		log.Warn().Err(err).Str("path", templates.BundledPath()).Msg("plantilla por defecto ilegible")
		return
	}
	if len(report.Missing) > 0 {
		log.Warn().Strs("missing", report.Missing).Msg("la plantilla usa marcadores sin valor")
	}
}
