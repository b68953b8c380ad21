package model

import "github.com/shopspring/decimal"

// JobPatch is a field mask over Job. Nil fields are left untouched by
// Apply; a non-nil pointer to a zero value clears the field.
type JobPatch struct {
	Customer       *string
	Site           *string
	Reference      *string
	Address        *string
	NumbersList    *[]string
	PrimaryNumber  *string
	Status         *Stage
	BillingContact *Contact
	SiteContact    *Contact
	Services       *[]ServiceLine
	Adjustments    *[]Adjustment
	Notes          *string
	Todos          *[]Todo
	Attachments    *[]Attachment
	UpdatedAt      *string
}

// IsEmpty reports whether the patch sets no field.
func (p JobPatch) IsEmpty() bool {
	return p == (JobPatch{})
}

// Apply returns a copy of j with every set field of p merged in.
func (p JobPatch) Apply(j Job) Job {
	out := j.Clone()
	setIf(&out.Customer, p.Customer)
	setIf(&out.Site, p.Site)
	setIf(&out.Reference, p.Reference)
	setIf(&out.Address, p.Address)
	setIf(&out.PrimaryNumber, p.PrimaryNumber)
	setIf(&out.Status, p.Status)
	setIf(&out.BillingContact, p.BillingContact)
	setIf(&out.SiteContact, p.SiteContact)
	setIf(&out.Notes, p.Notes)
	setIf(&out.UpdatedAt, p.UpdatedAt)
	if p.NumbersList != nil {
		out.NumbersList = cloneSlice(*p.NumbersList)
	}
	if p.Services != nil {
		out.Services = cloneSlice(*p.Services)
	}
	if p.Adjustments != nil {
		out.Adjustments = cloneSlice(*p.Adjustments)
	}
	if p.Todos != nil {
		out.Todos = cloneSlice(*p.Todos)
	}
	if p.Attachments != nil {
		out.Attachments = cloneSlice(*p.Attachments)
	}
	return out
}

// PriceItemPatch is a field mask over PriceItem.
type PriceItemPatch struct {
	Name      *string
	UnitPrice *decimal.Decimal
	Category  *string
	UnitNote  *string
}

// Apply returns a copy of p with every set field of patch merged in.
func (patch PriceItemPatch) Apply(p PriceItem) PriceItem {
	setIf(&p.Name, patch.Name)
	setIf(&p.UnitPrice, patch.UnitPrice)
	setIf(&p.Category, patch.Category)
	setIf(&p.UnitNote, patch.UnitNote)
	return p
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T {
	return &v
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
