package contract

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeRenderer struct {
	gotTmpl []byte
	gotData map[string]any
	err     error
}

func (f *fakeRenderer) Render(_ context.Context, tmpl []byte, data map[string]any) ([]byte, error) {
	f.gotTmpl = tmpl
	f.gotData = data
	if f.err != nil {
		return nil, f.err
	}
	return []byte("docx"), nil
}

type fakeInspector struct{ keys []string }

func (f *fakeInspector) Placeholders([]byte) ([]string, error) { return f.keys, nil }

type fakePDF struct{ got entity.DocumentContext }

func (f *fakePDF) GenerateContractPDF(_ context.Context, doc entity.DocumentContext) ([]byte, error) {
	f.got = doc
	return []byte("%PDF"), nil
}

func newTestUseCase(r *fakeRenderer, p *fakePDF) *GenerateUseCase {
	uc := NewGenerateUseCase(r, &fakeInspector{}, p, logger.Nop())
	uc.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	return uc
}

func request(items ...entity.LineItemInput) dto.GenerateContractRequest {
	return dto.GenerateContractRequest{
		BuyerName:  "  LLC OSIYO KOSMETIK ",
		ContractNo: "ZB2025-001",
		Items:      items,
	}
}

func item(desc, qty, price string) entity.LineItemInput {
	return entity.LineItemInput{DescEN: desc, Quantity: entity.TextCell(qty), UnitPrice: entity.TextCell(price)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestDefaults_FechaDeHoy(t *testing.T) {
	uc := newTestUseCase(&fakeRenderer{}, &fakePDF{})
	d := uc.Defaults()
	assert.Equal(t, "2025-03-14", d.Date)
	assert.Equal(t, PaymentTermsOptions[0], d.PaymentTerms)
	require.Len(t, d.Items, 2)
	assert.Equal(t, "34200", d.Items[0].UnitPrice.Text)
	assert.Equal(t, "Water Tank", d.Items[1].DescEN)
}

func TestGenerate_Docx(t *testing.T) {
	r := &fakeRenderer{}
	uc := newTestUseCase(r, &fakePDF{})

	doc, err := uc.Generate(context.Background(),
		request(item("A", "2", "10.5"), item("B", "0", "3"), item("C", "1", "x")),
		[]byte("tmpl"), FormatDOCX)
	require.NoError(t, err)

	assert.Equal(t, []byte("tmpl"), r.gotTmpl)
	assert.Equal(t, "LLC OSIYO KOSMETIK", r.gotData["buyer_name"])
	assert.Equal(t, "2025-03-14", r.gotData["date"], "sin fecha se usa hoy")
	assert.Equal(t, "21.00", r.gotData["total_amount"])

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Contract_ZB2025-001.docx", doc.Filename)
	assert.Equal(t, ContentTypeDOCX, doc.ContentType)
	assert.Equal(t, 1, doc.Skipped)
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, 2, doc.Diagnostics[0].Row)
}

func TestGenerate_PDFNoUsaPlantilla(t *testing.T) {
	r := &fakeRenderer{}
	p := &fakePDF{}
	uc := newTestUseCase(r, p)

	doc, err := uc.Generate(context.Background(), request(item("A", "1", "5")), nil, FormatPDF)
	require.NoError(t, err)
	assert.Nil(t, r.gotData, "el renderer docx no se invoca")
	assert.Equal(t, "5.00", p.got.TotalAmount)
	assert.Equal(t, ContentTypePDF, doc.ContentType)
	assert.Equal(t, "Contract_ZB2025-001.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestGenerate_PedidoVacio(t *testing.T) {
	r := &fakeRenderer{}
	uc := newTestUseCase(r, &fakePDF{})

	_, err := uc.Generate(context.Background(), request(item("A", "0", "5")), []byte("tmpl"), FormatDOCX)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyOrder))
	assert.Nil(t, r.gotData, "no se renderiza un pedido vacío")
}

func TestGenerate_ErrorDePlantilla(t *testing.T) {
	r := &fakeRenderer{err: domain.NewTemplateError("render", "marcador sin resolver")}
	uc := newTestUseCase(r, &fakePDF{})

	_, err := uc.Generate(context.Background(), request(item("A", "1", "5")), []byte("tmpl"), FormatDOCX)
	assert.True(t, errors.Is(err, domain.ErrTemplate))
}

func TestPreview_FechaInvalida(t *testing.T) {
	uc := newTestUseCase(&fakeRenderer{}, &fakePDF{})
	in := request(item("A", "1", "5"))
	in.Date = "14/03/2025"

	_, err := uc.Preview(in)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPreview_DiagnosticosNuncaNil(t *testing.T) {
	uc := newTestUseCase(&fakeRenderer{}, &fakePDF{})
	in := request(item("A", "3", "2.5"))
	in.Date = "2025-01-02"

	out, err := uc.Preview(in)
	require.NoError(t, err)
	assert.Equal(t, "7.50", out.TotalAmount)
	assert.Equal(t, "2025-01-02", out.Context.Date)
	assert.NotNil(t, out.Diagnostics)
	assert.Empty(t, out.Diagnostics)
}

func TestInspectTemplate_ClavesFaltantes(t *testing.T) {
	uc := NewGenerateUseCase(&fakeRenderer{}, &fakeInspector{keys: []string{"buyer_name", "items", "vat"}}, &fakePDF{}, logger.Nop())
	out, err := uc.InspectTemplate([]byte("tmpl"))
	require.NoError(t, err)
	assert.Equal(t, []string{"vat"}, out.Missing)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatDOCX, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("odt")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Contract_ZB2025-001.docx", Filename("ZB2025-001", FormatDOCX))
	assert.Equal(t, "Contract_ZB_2025_01.pdf", Filename("ZB/2025:01", FormatPDF))
	assert.Equal(t, "Contract_contract.docx", Filename("   ", FormatDOCX))
}
