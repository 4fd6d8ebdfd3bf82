package entity

import "time"

// LineItemInput una fila del detalle de productos tal como la captura el usuario.
// No hay restricción de unicidad sobre SequenceNo.
type LineItemInput struct {
	SequenceNo Cell   `json:"sequence_no"`
	DescEN     string `json:"desc_en"`
	DescCN     string `json:"desc_cn"`
	Quantity   Cell   `json:"quantity"`
	Unit       string `json:"unit"`
	UnitPrice  Cell   `json:"unit_price"`
}

// LineItemOutput línea normalizada lista para la plantilla. Price y Total van formateados
// (dos decimales, separador de miles); Qty se mantiene numérico.
type LineItemOutput struct {
	No     Cell    `json:"no"`
	DescEN string  `json:"desc_en"`
	DescCN string  `json:"desc_cn"`
	Qty    float64 `json:"qty"`
	Unit   string  `json:"unit"`
	Price  string  `json:"price"`
	Total  string  `json:"total"`
}

// Map devuelve la línea con las claves que espera la fila repetida de la plantilla.
func (o LineItemOutput) Map() map[string]any {
	return map[string]any{
		"no":      o.No.Value(),
		"desc_en": o.DescEN,
		"desc_cn": o.DescCN,
		"qty":     o.Qty,
		"unit":    o.Unit,
		"price":   o.Price,
		"total":   o.Total,
	}
}

// ContractHeader campos escalares del contrato (comprador y condiciones comerciales).
type ContractHeader struct {
	BuyerName      string
	BuyerAddress   string
	ContractNo     string
	Date           time.Time
	PaymentTerms   string
	LeadTime       string
	ShippingMethod string
}

// DateLayout formato ISO de la fecha del contrato en la plantilla.
const DateLayout = "2006-01-02"

// DocumentContext contexto plano que se entrega al motor de plantillas. Se produce una vez
// por generación y se descarta después del render.
type DocumentContext struct {
	BuyerName      string           `json:"buyer_name"`
	BuyerAddress   string           `json:"buyer_address"`
	ContractNo     string           `json:"contract_no"`
	Date           string           `json:"date"`
	PaymentTerms   string           `json:"payment_terms"`
	LeadTime       string           `json:"lead_time"`
	ShippingMethod string           `json:"shipping_method"`
	TotalAmount    string           `json:"total_amount"`
	Items          []LineItemOutput `json:"items"`
}

// Map convierte el contexto al mapeo clave → valor que consume el renderer.
func (d DocumentContext) Map() map[string]any {
	items := make([]map[string]any, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, it.Map())
	}
	return map[string]any{
		"buyer_name":      d.BuyerName,
		"buyer_address":   d.BuyerAddress,
		"contract_no":     d.ContractNo,
		"date":            d.Date,
		"payment_terms":   d.PaymentTerms,
		"lead_time":       d.LeadTime,
		"shipping_method": d.ShippingMethod,
		"total_amount":    d.TotalAmount,
		"items":           items,
	}
}

// ContextKeys claves de primer nivel que toda plantilla de contrato puede referenciar.
var ContextKeys = []string{
	"buyer_name", "buyer_address", "contract_no", "date",
	"payment_terms", "lead_time", "shipping_method", "total_amount", "items",
}
