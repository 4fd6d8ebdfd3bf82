package order_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/order"
)

func row(no int, qty, price entity.Cell) entity.LineItemInput {
	return entity.LineItemInput{
		SequenceNo: entity.NumberCell(float64(no)),
		DescEN:     "Item",
		DescCN:     "产品",
		Quantity:   qty,
		Unit:       "Pcs",
		UnitPrice:  price,
	}
}

func num(f float64) entity.Cell { return entity.NumberCell(f) }
func txt(s string) entity.Cell  { return entity.TextCell(s) }

// Escenario 1: dos líneas completas.
func TestAggregate_DosLineas(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, num(1), num(34200.00)),
		row(2, num(1), num(5000.00)),
	}
	res, err := order.Aggregate(rows)
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "39,200.00", res.TotalAmount)
	assert.Equal(t, "34,200.00", res.Items[0].Price)
	assert.Equal(t, "34,200.00", res.Items[0].Total)
	assert.Equal(t, 1.0, res.Items[0].Qty)
	assert.Empty(t, res.Diagnostics)
}

// Escenario 2: cantidad 0 se omite sin diagnóstico.
func TestAggregate_CantidadCeroSeOmite(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, num(0), num(100)),
		row(2, num(2), num(50)),
	}
	res, err := order.Aggregate(rows)
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "100.00", res.TotalAmount)
	assert.Equal(t, "2", res.Items[0].No.Text)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Diagnostics, "una fila en blanco no es un error")
}

// La fila con cantidad 0 se omite aunque el precio sea basura.
func TestAggregate_CantidadCeroConPrecioInvalido(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, num(0), txt("n/a")),
		row(2, txt(""), txt("xyz")),
		row(3, num(1), num(10)),
	}
	res, err := order.Aggregate(rows)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, res.Diagnostics)
}

// Escenario 3: secuencia vacía.
func TestAggregate_SinFilas(t *testing.T) {
	res, err := order.Aggregate(nil)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	_, err = order.Aggregate([]entity.LineItemInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestAggregate_TodasEnCero(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, num(0), num(10)),
		row(2, entity.Cell{}, num(20)),
	}
	_, err := order.Aggregate(rows)
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

// Escenario 4: cantidad no numérica → diagnóstico, la siguiente fila se procesa.
func TestAggregate_CantidadNoNumerica(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, txt("abc"), num(10)),
		row(2, num(3), num(10)),
	}
	res, err := order.Aggregate(rows)
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "30.00", res.TotalAmount)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, 0, d.Row)
	assert.Equal(t, order.FieldQuantity, d.Field)
	assert.Equal(t, "abc", d.Value)
	assert.ErrorIs(t, d, domain.ErrInvalidInput)
}

func TestAggregate_PrecioNoNumerico(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, num(2), txt("12,5")),
		row(2, num(1), txt(" 7.25 ")),
	}
	res, err := order.Aggregate(rows)
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assert.Equal(t, "7.25", res.TotalAmount)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, order.FieldUnitPrice, res.Diagnostics[0].Field)
}

func TestAggregate_PrecioVacioEsCero(t *testing.T) {
	res, err := order.Aggregate([]entity.LineItemInput{row(1, num(4), entity.Cell{})})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "0.00", res.Items[0].Price)
	assert.Equal(t, "0.00", res.TotalAmount)
}

func TestAggregate_NegativosSonInvalidos(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, num(-1), num(10)),
		row(2, num(1), num(-10)),
		row(3, num(1), num(10)),
	}
	res, err := order.Aggregate(rows)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, order.FieldQuantity, res.Diagnostics[0].Field)
	assert.Equal(t, 1, res.Diagnostics[1].Row)
	assert.Equal(t, order.FieldUnitPrice, res.Diagnostics[1].Field)
}

// Si todas las filas son inválidas el error vacío conserva los diagnósticos.
func TestAggregate_TodasInvalidas(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, txt("uno"), num(10)),
		row(2, num(1), txt("diez")),
	}
	_, err := order.Aggregate(rows)
	require.ErrorIs(t, err, domain.ErrEmptyOrder)

	var empty *domain.EmptyOrderError
	require.True(t, errors.As(err, &empty))
	assert.Len(t, empty.Diagnostics, 2)
}

// El número de secuencia se pasa sin tocar: duplicados, huecos y etiquetas de texto.
func TestAggregate_SequenceNoSinModificar(t *testing.T) {
	rows := []entity.LineItemInput{
		{SequenceNo: txt("A-1"), Quantity: num(1), UnitPrice: num(1)},
		{SequenceNo: txt("A-1"), Quantity: num(1), UnitPrice: num(1)},
		{SequenceNo: num(7), Quantity: num(1), UnitPrice: num(1)},
	}
	res, err := order.Aggregate(rows)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "A-1", res.Items[0].No.Value())
	assert.Equal(t, "A-1", res.Items[1].No.Value())
	assert.Equal(t, json.Number("7"), res.Items[2].No.Value())
}

// El total se suma sin redondear y se formatea una sola vez.
func TestAggregate_TotalSinRedondeoIntermedio(t *testing.T) {
	rows := []entity.LineItemInput{
		row(1, num(1), num(0.004)),
		row(2, num(1), num(0.004)),
	}
	res, err := order.Aggregate(rows)
	require.NoError(t, err)
	assert.Equal(t, "0.00", res.Items[0].Total)
	assert.Equal(t, "0.01", res.TotalAmount, "0.008 redondea a 0.01; sumar los formateados daría 0.00")
}

func TestAggregate_TotalIgualSumaDeLineas(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		n := 1 + rng.Intn(20)
		rows := make([]entity.LineItemInput, n)
		want := decimal.Zero
		for i := range rows {
			qty := decimal.NewFromInt(int64(1 + rng.Intn(500)))
			price := decimal.New(int64(rng.Intn(10_000_000)), -2)
			rows[i] = entity.LineItemInput{
				SequenceNo: num(float64(i + 1)),
				Quantity:   txt(qty.String()),
				UnitPrice:  txt(price.String()),
			}
			want = want.Add(qty.Mul(price))
		}
		res, err := order.Aggregate(rows)
		require.NoError(t, err)
		assert.True(t, want.Equal(res.Total), "total %s != %s", res.Total, want)
		assert.Equal(t, order.FormatMoney(want), res.TotalAmount)
		assert.Len(t, res.Items, n)
	}
}

func TestAggregate_NoModificaEntrada(t *testing.T) {
	rows := []entity.LineItemInput{row(1, txt(" 2 "), txt("3.5"))}
	before := rows[0]
	_, err := order.Aggregate(rows)
	require.NoError(t, err)
	assert.Equal(t, before, rows[0])
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversión numérica: espacios, notación exponencial y magnitud
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregate_Coercion(t *testing.T) {
	tests := []struct {
		name      string
		qty       string
		price     string
		included  bool
		skipped   bool
		diagField string
		lineTotal string
	}{
		{name: "espacios alrededor", qty: " 3 ", price: "10", included: true, lineTotal: "30.00"},
		{name: "exponente pequeño", qty: "1e2", price: "10", included: true, lineTotal: "1,000.00"},
		{name: "menos cero se omite", qty: "-0", price: "10", skipped: true},
		{name: "cantidad fuera de float64", qty: "1e400", price: "10", diagField: order.FieldQuantity},
		{name: "exponente enorme", qty: "1e50000000", price: "10", diagField: order.FieldQuantity},
		{name: "exponente negativo enorme", qty: "1", price: "1e-50000000", diagField: order.FieldUnitPrice},
		{name: "precio en el límite", qty: "1", price: "1e15", diagField: order.FieldUnitPrice},
		{name: "precio bajo el límite", qty: "1", price: "999999999999999.99", included: true, lineTotal: "999,999,999,999,999.99"},
		{name: "texto demasiado largo", qty: "1", price: "0.0000000000000000000000000000000000000001", diagField: order.FieldUnitPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []entity.LineItemInput{
				row(1, txt(tt.qty), txt(tt.price)),
				row(2, num(1), num(1)),
			}
			res, err := order.Aggregate(rows)
			require.NoError(t, err, "la fila de control siempre es válida")

			for _, it := range res.Items {
				assert.False(t, math.IsInf(it.Qty, 0) || math.IsNaN(it.Qty), "qty debe ser finito")
			}
			switch {
			case tt.included:
				require.Len(t, res.Items, 2)
				assert.Equal(t, tt.lineTotal, res.Items[0].Total)
				assert.Empty(t, res.Diagnostics)
			case tt.skipped:
				require.Len(t, res.Items, 1)
				assert.Equal(t, 1, res.Skipped)
				assert.Empty(t, res.Diagnostics)
			default:
				require.Len(t, res.Items, 1)
				assert.Equal(t, "1.00", res.TotalAmount)
				require.Len(t, res.Diagnostics, 1)
				assert.Equal(t, 0, res.Diagnostics[0].Row)
				assert.Equal(t, tt.diagField, res.Diagnostics[0].Field)
				assert.Equal(t, "fuera de rango", res.Diagnostics[0].Reason)
			}
		})
	}
}

// Un número JSON válido pero enorme no debe llegar al contexto: sería +Inf al serializar.
func TestAggregate_NumeroJSONEnormeSeExcluye(t *testing.T) {
	var rows []entity.LineItemInput
	require.NoError(t, json.Unmarshal([]byte(`[
		{"sequence_no": 1, "quantity": 1e400, "unit_price": 1},
		{"sequence_no": 2, "quantity": 2, "unit_price": 1e400},
		{"sequence_no": 3, "quantity": 2, "unit_price": 4.5}
	]`), &rows))

	res, err := order.Aggregate(rows)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "9.00", res.TotalAmount)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, order.FieldQuantity, res.Diagnostics[0].Field)
	assert.Equal(t, order.FieldUnitPrice, res.Diagnostics[1].Field)

	_, err = json.Marshal(order.BuildContext(entity.ContractHeader{}, res))
	assert.NoError(t, err, "el contexto debe serializarse sin valores infinitos")
}
