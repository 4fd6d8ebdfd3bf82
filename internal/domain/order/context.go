package order

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// BuildContext arma el contexto de la plantilla a partir de la cabecera y del resultado
// de Aggregate. Los textos de cabecera se recortan y se normalizan a NFC.
func BuildContext(h entity.ContractHeader, res *Result) entity.DocumentContext {
	ctx := entity.DocumentContext{
		BuyerName:      cleanText(h.BuyerName),
		BuyerAddress:   cleanText(h.BuyerAddress),
		ContractNo:     cleanText(h.ContractNo),
		Date:           h.Date.Format(entity.DateLayout),
		PaymentTerms:   cleanText(h.PaymentTerms),
		LeadTime:       cleanText(h.LeadTime),
		ShippingMethod: cleanText(h.ShippingMethod),
	}
	if res != nil {
		ctx.TotalAmount = res.TotalAmount
		ctx.Items = res.Items
	}
	return ctx
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
