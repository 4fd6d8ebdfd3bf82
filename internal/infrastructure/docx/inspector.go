package docx

import (
	"archive/zip"
	"bytes"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/fumiama/go-docx"

	"github.com/jhoicas/Contratos-api/internal/domain"
)

// Inspector lee documentos .docx con go-docx para extraer su texto y los marcadores
// que usa una plantilla.
type Inspector struct{}

// NewInspector construye el inspector.
func NewInspector() *Inspector { return &Inspector{} }

// Text devuelve el texto plano del documento: un párrafo por línea, y las celdas de cada
// fila de tabla separadas por tabulador.
func (i *Inspector) Text(doc []byte) (string, error) {
	parsed, err := docx.Parse(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", &domain.TemplateError{Op: "leer docx", Err: err}
	}
	var lines []string
	for _, item := range parsed.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, paragraphText(it))
		case *docx.Table:
			lines = append(lines, tableLines(it)...)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Placeholders devuelve, ordenadas y sin repetir, las claves de primer nivel que la
// plantilla referencia en el cuerpo, los encabezados y los pies de página. Las variables
// de bucle se sustituyen por el nombre de la lista.
func (i *Inspector) Placeholders(tmpl []byte) ([]string, error) {
	body, err := i.Text(tmpl)
	if err != nil {
		return nil, err
	}
	extra, err := headerFooterText(tmpl)
	if err != nil {
		return nil, err
	}
	text := body + "\n" + extra
	loopVars := make(map[string]bool)
	keys := make(map[string]bool)
	for _, m := range rowForRe.FindAllStringSubmatch(text, -1) {
		loopVars[m[1]] = true
		keys[m[2]] = true
	}
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		root, _, _ := strings.Cut(m[1], ".")
		if loopVars[root] {
			continue
		}
		keys[root] = true
	}
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// MissingKeys compara los marcadores de la plantilla con las claves que ofrece el contexto.
// Devuelve los marcadores que no se podrían resolver.
func MissingKeys(placeholders, available []string) []string {
	have := make(map[string]bool, len(available))
	for _, k := range available {
		have[k] = true
	}
	var missing []string
	for _, p := range placeholders {
		if !have[p] {
			missing = append(missing, p)
		}
	}
	return missing
}

// headerFooterText extrae el texto de word/header*.xml y word/footer*.xml, un párrafo
// por línea. go-docx solo expone el cuerpo.
func headerFooterText(tmpl []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(tmpl), int64(len(tmpl)))
	if err != nil {
		return "", &domain.TemplateError{Op: "leer docx", Err: err}
	}
	var lines []string
	for _, f := range zr.File {
		if f.Name == documentPart || !isRenderablePart(f.Name) {
			continue
		}
		raw, err := readPart(f)
		if err != nil {
			return "", &domain.TemplateError{Op: "leer " + f.Name, Err: err}
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(raw); err != nil {
			return "", &domain.TemplateError{Op: "leer " + f.Name, Err: err}
		}
		for _, p := range doc.FindElements("//w:p") {
			lines = append(lines, collectText(p))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return buf.String()
}

func tableLines(tbl *docx.Table) []string {
	lines := make([]string, 0, len(tbl.TableRows))
	for _, row := range tbl.TableRows {
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			var parts []string
			for _, p := range cell.Paragraphs {
				parts = append(parts, paragraphText(p))
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return lines
}
