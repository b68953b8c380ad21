package model

import "github.com/shopspring/decimal"

// UncategorisedLabel is the group name for price items without a category.
const UncategorisedLabel = "Uncategorised"

// PriceItem is a price book entry. UnitPrice is ex GST.
type PriceItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Category  string          `json:"category,omitempty"`
	UnitNote  string          `json:"unitNote,omitempty"`
}

// CategoryLabel returns the item's category, or UncategorisedLabel.
func (p PriceItem) CategoryLabel() string {
	if p.Category == "" {
		return UncategorisedLabel
	}
	return p.Category
}

// ToServiceLine builds a job line priced from this item.
func (p PriceItem) ToServiceLine(qty decimal.Decimal) ServiceLine {
	return ServiceLine{
		ID:        NewID(),
		ServiceID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Qty:       qty,
		UnitNote:  p.UnitNote,
	}
}
