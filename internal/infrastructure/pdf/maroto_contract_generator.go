// Package pdf genera una copia PDF del contrato a partir del mismo contexto que se usa
// para la plantilla Word. No depende de ninguna plantilla.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: SALES CONTRACT          │  N° Contrato + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BUYER: Nombre + Dirección                                   │
//	│  TERMS: Pago / Plazo de entrega / Transporte                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: No | Description | Qty | Unit | Price | Amount       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL AMOUNT (USD)                              + QR        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoContractGenerator implementa contract.PDFGenerator usando Maroto v2.
// La fuente estándar (helvetica) no cubre CJK, por eso la descripción en chino no se imprime.
type MarotoContractGenerator struct{}

// NewMarotoContractGenerator construye el generador.
func NewMarotoContractGenerator() *MarotoContractGenerator { return &MarotoContractGenerator{} }

// GenerateContractPDF genera el PDF y devuelve sus bytes.
func (g *MarotoContractGenerator) GenerateContractPDF(_ context.Context, doc entity.DocumentContext) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Sales Contract "+doc.ContractNo, true).
		WithAuthor(doc.BuyerName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(buyerRow(doc))
	m.AddRows(termsRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(doc.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(doc))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(doc entity.DocumentContext) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("SALES CONTRACT", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(5).Add(
			text.New("Contract No.", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.ContractNo, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Date: "+doc.Date, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func buyerRow(doc entity.DocumentContext) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("BUYER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.BuyerName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(nonEmpty(doc.BuyerAddress, "-"), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func termsRow(doc entity.DocumentContext) core.Row {
	term := func(label, value string, top float64) []core.Component {
		return []core.Component{
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Top: top}),
			text.New(nonEmpty(value, "-"), props.Text{Size: 8, Top: top, Left: 32}),
		}
	}
	components := []core.Component{
		text.New("TERMS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	}
	components = append(components, term("Payment:", doc.PaymentTerms, 6)...)
	components = append(components, term("Lead time:", doc.LeadTime, 11)...)
	components = append(components, term("Shipping:", doc.ShippingMethod, 16)...)
	return row.New(22).Add(col.New(12).Add(components...))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("No", 1, align.Center),
		h("Description", 4, align.Left),
		h("Qty", 1, align.Center),
		h("Unit", 1, align.Center),
		h("Unit Price", 2, align.Right),
		h("Amount", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableItemRows(items []entity.LineItemOutput) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(it.No.Text, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(it.DescEN, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(strconv.FormatFloat(it.Qty, 'f', -1, 64), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(it.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("$"+it.Price, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New("$"+it.Total, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalRow: total a la derecha y un QR con la referencia del contrato a la izquierda.
func totalRow(doc entity.DocumentContext) core.Row {
	ref := fmt.Sprintf("%s|%s|%s", doc.ContractNo, doc.Date, doc.TotalAmount)
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 90, Center: true})),
		col.New(3),
		col.New(3).Add(text.New("TOTAL AMOUNT (USD):", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 4, Right: 2,
		})),
		col.New(3).Add(text.New("$"+doc.TotalAmount, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 4, Right: 1,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
