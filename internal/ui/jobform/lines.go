package jobform

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nhle/comtech-lite/internal/model"
)

// ParseNumbers splits one number per line (commas also separate).
func ParseNumbers(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ','
	})
	return model.CleanNumbers(fields)
}

// ParseServiceLines reads "name @ qty @ price" lines. The last two parts
// are the numbers, so names may contain "@". Lines whose name matches an
// entry in prev reuse that entry's id, price book link and unit note.
func ParseServiceLines(text string, prev []model.ServiceLine) ([]model.ServiceLine, error) {
	used := make([]bool, len(prev))
	var out []model.ServiceLine
	for n, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, "@")
		if len(parts) < 3 {
			return nil, fmt.Errorf("line %d: want name @ qty @ price", n+1)
		}
		name := strings.TrimSpace(strings.Join(parts[:len(parts)-2], "@"))
		qty, err := decimal.NewFromString(strings.TrimSpace(parts[len(parts)-2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad qty %q", n+1, strings.TrimSpace(parts[len(parts)-2]))
		}
		price, err := parseMoney(parts[len(parts)-1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad price %q", n+1, strings.TrimSpace(parts[len(parts)-1]))
		}
		if name == "" {
			return nil, fmt.Errorf("line %d: name is required", n+1)
		}
		if qty.IsNegative() {
			return nil, fmt.Errorf("line %d: qty must not be negative", n+1)
		}

		line := model.ServiceLine{Name: name, Qty: qty, UnitPrice: price}
		for i, p := range prev {
			if !used[i] && p.Name == name {
				used[i] = true
				line.ID, line.ServiceID, line.UnitNote = p.ID, p.ServiceID, p.UnitNote
				break
			}
		}
		out = append(out, line)
	}
	return out, nil
}

// FormatServiceLines is the inverse of ParseServiceLines.
func FormatServiceLines(lines []model.ServiceLine) string {
	rows := make([]string, len(lines))
	for i, l := range lines {
		rows[i] = fmt.Sprintf("%s @ %s @ %s", l.Name, l.Qty.String(), l.UnitPrice.StringFixed(2))
	}
	return strings.Join(rows, "\n")
}

// ParseAdjustments reads "label @ amount" lines. The amount follows the
// last "@" and may be negative.
func ParseAdjustments(text string, prev []model.Adjustment) ([]model.Adjustment, error) {
	used := make([]bool, len(prev))
	var out []model.Adjustment
	for n, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		at := strings.LastIndex(raw, "@")
		if at < 0 {
			return nil, fmt.Errorf("line %d: want label @ amount", n+1)
		}
		amount, err := parseMoney(raw[at+1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad amount %q", n+1, strings.TrimSpace(raw[at+1:]))
		}
		a := model.Adjustment{Label: strings.TrimSpace(raw[:at]), AmountEx: amount}
		for i, p := range prev {
			if !used[i] && p.Label == a.Label {
				used[i] = true
				a.ID = p.ID
				break
			}
		}
		out = append(out, a)
	}
	return out, nil
}

// FormatAdjustments is the inverse of ParseAdjustments.
func FormatAdjustments(adjs []model.Adjustment) string {
	rows := make([]string, len(adjs))
	for i, a := range adjs {
		rows[i] = fmt.Sprintf("%s @ %s", a.Label, a.AmountEx.StringFixed(2))
	}
	return strings.Join(rows, "\n")
}

// parseMoney accepts an optional leading "$" and thousands commas.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
