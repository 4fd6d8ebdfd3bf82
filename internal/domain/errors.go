package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput = errors.New("entrada inválida")
	ErrEmptyOrder   = errors.New("el pedido no tiene líneas facturables")
	ErrTemplate     = errors.New("plantilla inválida")
)

// ValidationError describe una fila cuya cantidad o precio no se pudo convertir a número.
// Es recuperable: la fila se excluye y la agregación continúa.
type ValidationError struct {
	Row    int    `json:"row"`   // índice 0-based de la fila en la tabla
	Field  string `json:"field"` // "quantity" | "unit_price"
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("fila %d: %s %q inválido: %s", e.Row+1, e.Field, e.Value, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// EmptyOrderError indica que no quedó ninguna línea facturable.
// Diagnostics conserva los errores por fila que provocaron las exclusiones (puede estar vacío).
type EmptyOrderError struct {
	Diagnostics []*ValidationError
}

func (e *EmptyOrderError) Error() string {
	if len(e.Diagnostics) == 0 {
		return ErrEmptyOrder.Error()
	}
	return fmt.Sprintf("%s (%d filas inválidas)", ErrEmptyOrder.Error(), len(e.Diagnostics))
}

func (e *EmptyOrderError) Unwrap() error { return ErrEmptyOrder }

// TemplateError envuelve un fallo del motor de plantillas (plantilla ausente, mal formada
// o con marcadores sin resolver). Se propaga tal cual al caller, sin reintentos.
type TemplateError struct {
	Op  string
	Err error
}

func (e *TemplateError) Error() string {
	if e.Err == nil {
		return "plantilla: " + e.Op
	}
	return fmt.Sprintf("plantilla: %s: %v", e.Op, e.Err)
}

// Is hace que errors.Is(err, ErrTemplate) sea verdadero.
func (e *TemplateError) Is(target error) bool { return target == ErrTemplate }

func (e *TemplateError) Unwrap() error { return e.Err }

// NewTemplateError construye un TemplateError con mensaje formateado.
func NewTemplateError(op string, format string, args ...any) *TemplateError {
	return &TemplateError{Op: op, Err: fmt.Errorf(format, args...)}
}
