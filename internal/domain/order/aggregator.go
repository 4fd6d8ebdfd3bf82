// Package order agrega las líneas de producto de un contrato: convierte cantidad y precio,
// calcula totales por línea y del pedido, y arma el contexto para la plantilla.
//
// Política de errores (única para todo el servicio):
//   - cantidad vacía o 0        → la fila se omite en silencio (fila en blanco de la tabla)
//   - cantidad/precio no numérico, negativo o fuera de rango → diagnóstico por fila, la
//     fila se excluye y la agregación continúa
//   - ninguna fila facturable   → domain.ErrEmptyOrder
package order

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// Campos reportados en los diagnósticos.
const (
	FieldQuantity  = "quantity"
	FieldUnitPrice = "unit_price"
)

// Límites de las celdas numéricas. Acotan el costo de la aritmética decimal: un exponente
// libre ("1e50000000") produciría enteros de millones de dígitos.
const (
	MaxIntDigits = 15 // valores >= 10^15 se rechazan
	MaxScale     = 15 // más de 15 decimales se rechaza
	maxCellLen   = 40
)

var (
	errOutOfRange = errors.New("fuera de rango")
	maxAbs        = decimal.New(1, MaxIntDigits)
)

// Result resultado de la agregación. Total es la suma sin redondear de los totales de línea;
// TotalAmount es su representación formateada.
type Result struct {
	Items       []entity.LineItemOutput
	Total       decimal.Decimal
	TotalAmount string
	Diagnostics []*domain.ValidationError
	Skipped     int // filas omitidas por cantidad 0 (no incluye las inválidas)
}

// Aggregate procesa las filas en orden y devuelve las líneas incluidas y el total.
// Es una función pura: no hace I/O ni guarda estado.
func Aggregate(rows []entity.LineItemInput) (*Result, error) {
	res := &Result{
		Items: make([]entity.LineItemOutput, 0, len(rows)),
		Total: decimal.Zero,
	}

	for i, row := range rows {
		qty, err := coerce(row.Quantity)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, invalidRow(i, FieldQuantity, row.Quantity, err.Error()))
			continue
		}
		if qty.IsZero() {
			res.Skipped++
			continue
		}
		if qty.IsNegative() {
			res.Diagnostics = append(res.Diagnostics, invalidRow(i, FieldQuantity, row.Quantity, "debe ser mayor o igual a 0"))
			continue
		}

		price, err := coerce(row.UnitPrice)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, invalidRow(i, FieldUnitPrice, row.UnitPrice, err.Error()))
			continue
		}
		if price.IsNegative() {
			res.Diagnostics = append(res.Diagnostics, invalidRow(i, FieldUnitPrice, row.UnitPrice, "debe ser mayor o igual a 0"))
			continue
		}

		lineTotal := qty.Mul(price)
		res.Total = res.Total.Add(lineTotal)
		res.Items = append(res.Items, entity.LineItemOutput{
			No:     row.SequenceNo,
			DescEN: row.DescEN,
			DescCN: row.DescCN,
			Qty:    qty.InexactFloat64(),
			Unit:   row.Unit,
			Price:  FormatMoney(price),
			Total:  FormatMoney(lineTotal),
		})
	}

	if len(res.Items) == 0 {
		return nil, &domain.EmptyOrderError{Diagnostics: res.Diagnostics}
	}
	res.TotalAmount = FormatMoney(res.Total)
	return res, nil
}

// coerce convierte una celda a decimal. Vacío → 0. Rechaza textos largos, exponentes
// fuera de [-MaxScale, MaxIntDigits] y magnitudes >= 10^MaxIntDigits antes de operar.
func coerce(c entity.Cell) (decimal.Decimal, error) {
	s := strings.TrimSpace(c.Text)
	if s == "" {
		return decimal.Zero, nil
	}
	if len(s) > maxCellLen {
		return decimal.Zero, errOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if exp := d.Exponent(); exp < -MaxScale || exp > MaxIntDigits {
		return decimal.Zero, errOutOfRange
	}
	if d.Abs().GreaterThanOrEqual(maxAbs) {
		return decimal.Zero, errOutOfRange
	}
	return d, nil
}

func invalidRow(i int, field string, c entity.Cell, reason string) *domain.ValidationError {
	return &domain.ValidationError{Row: i, Field: field, Value: c.Text, Reason: reason}
}
