package dto

import (
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
)

// GenerateContractRequest body para POST /api/contracts/generate y /preview.
// Items es el estado completo de la tabla editable; el servidor no guarda nada entre peticiones.
type GenerateContractRequest struct {
	BuyerName      string                 `json:"buyer_name"`
	BuyerAddress   string                 `json:"buyer_address"`
	ContractNo     string                 `json:"contract_no"`
	Date           string                 `json:"date,omitempty"` // YYYY-MM-DD; vacío = hoy
	PaymentTerms   string                 `json:"payment_terms"`
	LeadTime       string                 `json:"lead_time"`
	ShippingMethod string                 `json:"shipping_method"`
	Items          []entity.LineItemInput `json:"items"`
}

// PreviewResponse resultado de la agregación sin renderizar el documento.
type PreviewResponse struct {
	Context     entity.DocumentContext    `json:"context"`
	TotalAmount string                    `json:"total_amount"`
	Skipped     int                       `json:"skipped_rows"`
	Diagnostics []*domain.ValidationError `json:"diagnostics"`
}

// ContractDefaultsResponse valores iniciales del formulario.
type ContractDefaultsResponse struct {
	BuyerName           string                 `json:"buyer_name"`
	ContractNo          string                 `json:"contract_no"`
	Date                string                 `json:"date"`
	ShippingMethod      string                 `json:"shipping_method"`
	PaymentTerms        string                 `json:"payment_terms"`
	PaymentTermsOptions []string               `json:"payment_terms_options"`
	LeadTime            string                 `json:"lead_time"`
	Items               []entity.LineItemInput `json:"items"`
}

// TemplateInspectionResponse marcadores de una plantilla y los que el contexto no cubre.
type TemplateInspectionResponse struct {
	Placeholders []string `json:"placeholders"`
	Missing      []string `json:"missing"`
}

// ImportItemsResponse filas leídas de una hoja de cálculo.
type ImportItemsResponse struct {
	Count int                    `json:"count"`
	Items []entity.LineItemInput `json:"items"`
}
