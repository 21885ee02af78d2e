package entity

import "time"

// Ingredient is a purchasable input used by recipe lines.
//
// PurchaseCost is stored in integer minor units (pence). SupplierSlug is
// immutable after creation; attempting to change it is an ImmutableField
// error at the service layer, not here — this type carries no behaviour
// beyond the shape of the data.
type Ingredient struct {
	Slug           string     `json:"slug"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	PurchaseUnit   string     `json:"purchase_unit"`
	PurchaseCost   int64      `json:"purchase_cost"`
	IncludesVAT    bool       `json:"includes_vat"`
	ConversionRule string     `json:"conversion_rule,omitempty"`
	SupplierSlug   string     `json:"supplier_slug"`
	Notes          string     `json:"notes,omitempty"`
	LastPurchased  *time.Time `json:"last_purchased,omitempty"`
	Auditable
}
