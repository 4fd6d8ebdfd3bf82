// Comando contractgen: genera contratos sin levantar el servidor HTTP.
//
//	contractgen generate --order pedido.json --template plantilla.docx --out ./salida [--pdf]
//	contractgen inspect --template plantilla.docx
//	contractgen import --xlsx pedido.xlsx > items.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/jhoicas/Contratos-api/internal/application/contract"
	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/docx"
	infrapdf "github.com/jhoicas/Contratos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/templatesource"
	"github.com/jhoicas/Contratos-api/pkg/config"
	"github.com/jhoicas/Contratos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	// stdout queda para la salida de los comandos (JSON de inspect/import)
	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level)

	if err := newApp(cfg, log, os.Stdout).Run(os.Args); err != nil {
		log.Error().Err(err).Msg("contractgen")
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, log *logger.Logger, stdout io.Writer) *cli.App {
	uc := contract.NewGenerateUseCase(
		docx.NewTemplateRenderer(),
		docx.NewInspector(),
		infrapdf.NewMarotoContractGenerator(),
		log,
	)
	templateFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "template",
			Aliases: []string{"t"},
			Usage:   "plantilla .docx",
			Value:   cfg.Template.Path,
		}
	}

	return &cli.App{
		Name:      "contractgen",
		Usage:     "genera contratos de compraventa desde un pedido JSON",
		Writer:    stdout,
		ErrWriter: stdout,
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "renderiza el contrato (.docx o .pdf)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "order", Aliases: []string{"o"}, Usage: "pedido en JSON", Required: true},
					templateFlag(),
					&cli.StringFlag{Name: "out", Usage: "directorio de salida", Value: "."},
					&cli.BoolFlag{Name: "pdf", Usage: "genera PDF en lugar de docx"},
				},
				Action: func(c *cli.Context) error {
					return generate(c.Context, uc, cfg, c, stdout)
				},
			},
			{
				Name:  "inspect",
				Usage: "lista los marcadores de la plantilla",
				Flags: []cli.Flag{templateFlag()},
				Action: func(c *cli.Context) error {
					tmpl, err := templatesource.New(c.String("template"), cfg.Template.MaxUploadBytes).Bundled()
					if err != nil {
						return err
					}
					report, err := uc.InspectTemplate(tmpl)
					if err != nil {
						return err
					}
					return writeJSON(stdout, report)
				},
			},
			{
				Name:  "import",
				Usage: "convierte una hoja .xlsx en filas JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "xlsx", Usage: "hoja de cálculo", Required: true},
				},
				Action: func(c *cli.Context) error {
					f, err := os.Open(c.String("xlsx"))
					if err != nil {
						return err
					}
					defer f.Close()
					out, err := uc.ImportItems(f)
					if err != nil {
						return err
					}
					return writeJSON(stdout, out)
				},
			},
		},
	}
}

func generate(ctx context.Context, uc *contract.GenerateUseCase, cfg *config.Config, c *cli.Context, stdout io.Writer) error {
	raw, err := os.ReadFile(c.String("order"))
	if err != nil {
		return fmt.Errorf("leer pedido: %w", err)
	}
	var in dto.GenerateContractRequest
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("pedido %s: %w", c.String("order"), err)
	}

	format := contract.FormatDOCX
	var tmpl []byte
	if c.Bool("pdf") {
		format = contract.FormatPDF
	} else {
		tmpl, err = templatesource.New(c.String("template"), cfg.Template.MaxUploadBytes).Bundled()
		if err != nil {
			return err
		}
	}

	doc, err := uc.Generate(ctx, in, tmpl, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.String("out"), 0o755); err != nil {
		return err
	}
	path := filepath.Join(c.String("out"), doc.Filename)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return err
	}

	for _, d := range doc.Diagnostics {
		fmt.Fprintf(stdout, "fila %d excluida: %s %q %s\n", d.Row+1, d.Field, d.Value, d.Reason)
	}
	fmt.Fprintf(stdout, "%s\ttotal USD %s\n", path, doc.TotalAmount)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
