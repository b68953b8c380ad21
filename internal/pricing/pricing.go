// Package pricing derives job totals from service lines and adjustments.
//
// All amounts are exact decimals. Nothing is rounded until an amount is
// formatted for display, and totals are never clamped at zero.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nhle/comtech-lite/internal/model"
)

// GSTRate is the fixed goods and services tax rate.
var GSTRate = decimal.New(10, -2)

// Totals bundles every derived figure for one job.
type Totals struct {
	SubtotalEx      decimal.Decimal
	AdjustmentSumEx decimal.Decimal
	TotalEx         decimal.Decimal
	GST             decimal.Decimal
	TotalInc        decimal.Decimal
}

// LineTotal is unitPrice * qty.
func LineTotal(l model.ServiceLine) decimal.Decimal {
	return l.UnitPrice.Mul(l.Qty)
}

// SubtotalEx sums the line totals of the job's services.
func SubtotalEx(j model.Job) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range j.Services {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

// AdjustmentSumEx sums the job's adjustments.
func AdjustmentSumEx(j model.Job) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range j.Adjustments {
		sum = sum.Add(a.AmountEx)
	}
	return sum
}

// TotalEx is the subtotal plus adjustments.
func TotalEx(j model.Job) decimal.Decimal {
	return SubtotalEx(j).Add(AdjustmentSumEx(j))
}

// GST is TotalEx at GSTRate.
func GST(j model.Job) decimal.Decimal {
	return TotalEx(j).Mul(GSTRate)
}

// TotalInc is TotalEx plus GST.
func TotalInc(j model.Job) decimal.Decimal {
	return TotalEx(j).Add(GST(j))
}

// Summarize computes all totals for j in one pass over its lists.
func Summarize(j model.Job) Totals {
	sub := SubtotalEx(j)
	adj := AdjustmentSumEx(j)
	ex := sub.Add(adj)
	gst := ex.Mul(GSTRate)
	return Totals{
		SubtotalEx:      sub,
		AdjustmentSumEx: adj,
		TotalEx:         ex,
		GST:             gst,
		TotalInc:        ex.Add(gst),
	}
}
