package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Cell es el valor crudo de una celda de la tabla editable: número, texto o vacío.
// Conserva el texto tal como llegó; la conversión numérica la hace el agregador.
type Cell struct {
	Text    string
	Numeric bool // true si llegó como número JSON (no como string)
}

// TextCell construye una celda de texto.
func TextCell(s string) Cell { return Cell{Text: s} }

// NumberCell construye una celda numérica.
func NumberCell(f float64) Cell {
	return Cell{Text: strconv.FormatFloat(f, 'f', -1, 64), Numeric: true}
}

// IsBlank indica si la celda está vacía o solo tiene espacios.
func (c Cell) IsBlank() bool { return strings.TrimSpace(c.Text) == "" }

// Value devuelve el valor para el contexto de la plantilla: json.Number si era numérica,
// string en otro caso.
func (c Cell) Value() any {
	if c.Numeric {
		return json.Number(c.Text)
	}
	return c.Text
}

func (c Cell) String() string { return c.Text }

// MarshalJSON emite número, string o null según el origen de la celda.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Numeric {
		return []byte(c.Text), nil
	}
	if c.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON acepta number, string o null. Cualquier otro literal (true, objetos…)
// se guarda como texto para que el agregador lo reporte como fila inválida.
func (c *Cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*c = Cell{}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cell{Text: s}
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*c = Cell{Text: string(b), Numeric: true}
	default:
		*c = Cell{Text: string(b)}
	}
	return nil
}
