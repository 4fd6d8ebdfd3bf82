// Package docx implementa el motor de plantillas Word del contrato y la lectura de
// documentos .docx.
//
// Sintaxis soportada (estilo Jinja, la misma de las plantillas de contrato en uso):
//
//	{{ buyer_name }}                      marcador escalar
//	{{ item.price }}                      campo de la variable de un bucle
//	{%tr for item in items %}             fila de tabla que abre un bucle
//	{%tr endfor %}                        fila que lo cierra
//
// Las filas con las etiquetas {%tr %} se eliminan y las filas entre ambas se repiten una
// vez por elemento de la lista.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/Contratos-api/internal/domain"
)

const documentPart = "word/document.xml"

var (
	placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*)\s*\}\}`)
	rowForRe      = regexp.MustCompile(`\{%\s*tr\s+for\s+([A-Za-z_]\w*)\s+in\s+([A-Za-z_]\w*)\s*%\}`)
	rowEndforRe   = regexp.MustCompile(`\{%\s*tr\s+endfor\s*%\}`)
)

// TemplateRenderer rellena una plantilla .docx con un contexto clave → valor.
// No guarda estado: se puede compartir entre peticiones.
type TemplateRenderer struct{}

// NewTemplateRenderer construye el renderer.
func NewTemplateRenderer() *TemplateRenderer { return &TemplateRenderer{} }

// Render devuelve el .docx resultante. Cualquier fallo de la plantilla (zip inválido,
// falta word/document.xml, marcador sin resolver, bucle sin cerrar) es un *domain.TemplateError.
func (r *TemplateRenderer) Render(ctx context.Context, tmpl []byte, data map[string]any) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(tmpl), int64(len(tmpl)))
	if err != nil {
		return nil, &domain.TemplateError{Op: "abrir docx", Err: err}
	}
	if !hasPart(zr, documentPart) {
		return nil, domain.NewTemplateError("abrir docx", "falta %s", documentPart)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isRenderablePart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("docx: copiar %s: %w", f.Name, err)
			}
			continue
		}
		raw, err := readPart(f)
		if err != nil {
			return nil, &domain.TemplateError{Op: "leer " + f.Name, Err: err}
		}
		out, err := renderPart(raw, data)
		if err != nil {
			return nil, &domain.TemplateError{Op: "renderizar " + f.Name, Err: err}
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, fmt.Errorf("docx: escribir %s: %w", f.Name, err)
		}
		if _, err := w.Write(out); err != nil {
			return nil, fmt.Errorf("docx: escribir %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: cerrar zip: %w", err)
	}
	return buf.Bytes(), nil
}

func hasPart(zr *zip.Reader, name string) bool {
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// isRenderablePart: cuerpo, encabezados y pies de página.
func isRenderablePart(name string) bool {
	if name == documentPart {
		return true
	}
	for _, pattern := range []string{"word/header*.xml", "word/footer*.xml"} {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func renderPart(raw []byte, data map[string]any) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("xml inválido: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("xml sin elemento raíz")
	}
	if err := walk(root, data); err != nil {
		return nil, err
	}
	return doc.WriteToBytes()
}

// walk recorre el árbol renderizando párrafos y expandiendo los bucles de las tablas.
// Cada párrafo se renderiza una sola vez, así los valores del usuario nunca se vuelven a
// interpretar como marcadores.
func walk(e *etree.Element, scope map[string]any) error {
	for _, child := range e.ChildElements() {
		switch {
		case isW(child, "tbl"):
			if err := expandTable(child, scope); err != nil {
				return err
			}
		case isW(child, "p"):
			if err := renderParagraph(child, scope); err != nil {
				return err
			}
			// cuadros de texto anidados dentro de runs
			if err := walk(child, scope); err != nil {
				return err
			}
		default:
			if err := walk(child, scope); err != nil {
				return err
			}
		}
	}
	return nil
}

func expandTable(tbl *etree.Element, scope map[string]any) error {
	rows := tbl.SelectElements("w:tr")
	for i := 0; i < len(rows); i++ {
		text := collectText(rows[i])
		if rowEndforRe.MatchString(text) {
			return fmt.Errorf("{%%tr endfor %%} sin {%%tr for %%} correspondiente")
		}
		m := rowForRe.FindStringSubmatch(text)
		if m == nil {
			if err := walk(rows[i], scope); err != nil {
				return err
			}
			continue
		}

		end := -1
		for j := i + 1; j < len(rows); j++ {
			t := collectText(rows[j])
			if rowForRe.MatchString(t) {
				return fmt.Errorf("bucles de filas anidados no soportados")
			}
			if rowEndforRe.MatchString(t) {
				end = j
				break
			}
		}
		if end < 0 {
			return fmt.Errorf("{%%tr for %s in %s %%} sin {%%tr endfor %%}", m[1], m[2])
		}

		list, err := lookupList(m[2], scope)
		if err != nil {
			return err
		}

		body := rows[i+1 : end]
		at := rows[i].Index()
		for _, r := range rows[i : end+1] {
			tbl.RemoveChild(r)
		}
		for _, item := range list {
			loopScope := withVar(scope, m[1], item)
			for _, b := range body {
				clone := b.Copy()
				if err := walk(clone, loopScope); err != nil {
					return err
				}
				tbl.InsertChildAt(at, clone)
				at++
			}
		}
		i = end
	}
	return nil
}

// renderParagraph sustituye los marcadores de un párrafo. Si cada marcador cabe en un
// solo run se renderiza run a run y se conserva el formato; si Word partió alguno en
// varios runs, se une el texto del párrafo y el resultado queda en el primer w:t.
func renderParagraph(p *etree.Element, scope map[string]any) error {
	texts := textElements(p)
	if len(texts) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, t := range texts {
		sb.WriteString(t.Text())
	}
	full := sb.String()
	if !strings.Contains(full, "{{") && !strings.Contains(full, "{%") {
		return nil
	}

	if runsSelfContained(texts) {
		for _, t := range texts {
			if !strings.Contains(t.Text(), "{{") {
				continue
			}
			rendered, err := renderText(t.Text(), scope)
			if err != nil {
				return err
			}
			t.SetText(rendered)
			t.CreateAttr("xml:space", "preserve")
		}
		return nil
	}

	rendered, err := renderText(full, scope)
	if err != nil {
		return err
	}
	texts[0].SetText(rendered)
	texts[0].CreateAttr("xml:space", "preserve")
	for _, t := range texts[1:] {
		t.SetText("")
	}
	return nil
}

func runsSelfContained(texts []*etree.Element) bool {
	for _, t := range texts {
		rest := placeholderRe.ReplaceAllString(t.Text(), "")
		for _, delim := range []string{"{{", "}}", "{%", "%}"} {
			if strings.Contains(rest, delim) {
				return false
			}
		}
	}
	return true
}

func renderText(s string, scope map[string]any) (string, error) {
	if rest := placeholderRe.ReplaceAllString(s, ""); strings.Contains(rest, "{{") || strings.Contains(rest, "{%") {
		return "", fmt.Errorf("etiqueta no soportada o mal formada en %q", s)
	}
	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(s, func(tag string) string {
		name := placeholderRe.FindStringSubmatch(tag)[1]
		v, err := lookup(name, scope)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return tag
		}
		str, err := formatValue(name, v)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return str
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func lookup(name string, scope map[string]any) (any, error) {
	parts := strings.Split(name, ".")
	v, ok := scope[parts[0]]
	if !ok {
		return nil, fmt.Errorf("marcador sin resolver: %s", name)
	}
	for _, part := range parts[1:] {
		m, isMap := v.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("marcador sin resolver: %s", name)
		}
		if v, ok = m[part]; !ok {
			return nil, fmt.Errorf("marcador sin resolver: %s", name)
		}
	}
	return v, nil
}

func lookupList(name string, scope map[string]any) ([]any, error) {
	v, ok := scope[name]
	if !ok {
		return nil, fmt.Errorf("lista sin resolver: %s", name)
	}
	switch l := v.(type) {
	case []any:
		return l, nil
	case []map[string]any:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s no es una lista", name)
	}
}

func withVar(scope map[string]any, name string, v any) map[string]any {
	out := make(map[string]any, len(scope)+1)
	for k, val := range scope {
		out[k] = val
	}
	out[name] = v
	return out
}

func formatValue(name string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	case fmt.Stringer:
		return x.String(), nil
	case map[string]any, []any, []map[string]any:
		return "", fmt.Errorf("%s no es un valor escalar", name)
	default:
		return fmt.Sprint(x), nil
	}
}

// textElements devuelve los w:t del párrafo sin entrar en párrafos anidados.
func textElements(p *etree.Element) []*etree.Element {
	var out []*etree.Element
	var visit func(e *etree.Element)
	visit = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			switch {
			case isW(c, "p"):
				continue
			case isW(c, "t"):
				out = append(out, c)
			default:
				visit(c)
			}
		}
	}
	visit(p)
	return out
}

// collectText concatena todo el texto de un elemento (filas de tabla).
func collectText(e *etree.Element) string {
	var sb strings.Builder
	for _, t := range e.FindElements(".//w:t") {
		sb.WriteString(t.Text())
	}
	return sb.String()
}

func isW(e *etree.Element, tag string) bool {
	return e.Space == "w" && e.Tag == tag
}
