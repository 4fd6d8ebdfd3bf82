// Package spreadsheet importa el detalle de productos desde una hoja .xlsx con las mismas
// columnas que la tabla editable del formulario.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

type column int

const (
	colNo column = iota
	colDescEN
	colDescCN
	colQty
	colUnit
	colPrice
)

// headerAliases encabezados reconocidos (en minúsculas) por columna: los bilingües del
// formulario de pedido y las claves JSON de la API.
var headerAliases = map[column][]string{
	colNo:     {"序号", "no", "sequence_no"},
	colDescEN: {"英文品名 (desc en)", "英文品名", "desc_en"},
	colDescCN: {"中文品名 (desc cn)", "中文品名", "desc_cn"},
	colQty:    {"数量 (qty)", "数量", "qty", "quantity"},
	colUnit:   {"单位 (unit)", "单位", "unit"},
	colPrice:  {"单价 (price usd)", "单价", "price", "unit_price"},
}

func columnFor(header string) (column, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	for c, aliases := range headerAliases {
		for _, a := range aliases {
			if a == h {
				return c, true
			}
		}
	}
	return 0, false
}

// ReadLineItems lee la primera hoja: la fila 1 son encabezados y cada fila siguiente una
// línea. Las celdas quedan como texto crudo; la conversión numérica la hace el agregador.
// Las filas completamente vacías se descartan.
func ReadLineItems(r io.Reader) ([]entity.LineItemInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: no es un archivo xlsx: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: el libro no tiene hojas", domain.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: la hoja %s está vacía", domain.ErrInvalidInput, sheets[0])
	}

	index := make(map[column]int)
	for i, h := range rows[0] {
		if c, ok := columnFor(h); ok {
			if _, dup := index[c]; !dup {
				index[c] = i
			}
		}
	}
	if _, ok := index[colQty]; !ok {
		return nil, fmt.Errorf("%w: falta la columna de cantidad", domain.ErrInvalidInput)
	}
	if _, ok := index[colPrice]; !ok {
		return nil, fmt.Errorf("%w: falta la columna de precio unitario", domain.ErrInvalidInput)
	}

	cell := func(row []string, c column) string {
		i, ok := index[c]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	items := make([]entity.LineItemInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		items = append(items, entity.LineItemInput{
			SequenceNo: entity.TextCell(cell(row, colNo)),
			DescEN:     cell(row, colDescEN),
			DescCN:     cell(row, colDescCN),
			Quantity:   entity.TextCell(cell(row, colQty)),
			Unit:       cell(row, colUnit),
			UnitPrice:  entity.TextCell(cell(row, colPrice)),
		})
	}
	return items, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
