// Package csvcodec converts a job list to and from the CSV interchange
// format used for backups and bulk edits in a spreadsheet.
//
// The column set is fixed (see Columns). List columns use "|" between
// entries; service lines encode as name@qty@unitPrice and adjustments as
// label@amountEx. A field is quoted only when it contains a comma, a
// double quote or a newline.
package csvcodec

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/nhle/comtech-lite/internal/model"
)

const (
	listSep = "|"
	partSep = "@"
)

// ErrNotText is returned by Decode when the input is not UTF-8 text.
var ErrNotText = errors.New("csv input is not valid UTF-8 text")

type column struct {
	name string
	get  func(j model.Job) string
	set  func(j *model.Job, v string)
}

var columns = []column{
	{"id", func(j model.Job) string { return j.ID }, func(j *model.Job, v string) { j.ID = v }},
	{"customer", func(j model.Job) string { return j.Customer }, func(j *model.Job, v string) { j.Customer = v }},
	{"site", func(j model.Job) string { return j.Site }, func(j *model.Job, v string) { j.Site = v }},
	{"reference", func(j model.Job) string { return j.Reference }, func(j *model.Job, v string) { j.Reference = v }},
	{"status", func(j model.Job) string { return string(j.Status) }, setStatus},
	{"address", func(j model.Job) string { return j.Address }, func(j *model.Job, v string) { j.Address = v }},
	{"numbersList", func(j model.Job) string { return strings.Join(j.NumbersList, listSep) }, setNumbers},
	{"primaryNumber", func(j model.Job) string { return j.PrimaryNumber }, func(j *model.Job, v string) { j.PrimaryNumber = v }},
	{"billingContactName", func(j model.Job) string { return j.BillingContact.Name }, func(j *model.Job, v string) { j.BillingContact.Name = v }},
	{"billingContactEmail", func(j model.Job) string { return j.BillingContact.Email }, func(j *model.Job, v string) { j.BillingContact.Email = v }},
	{"billingContactPhone", func(j model.Job) string { return j.BillingContact.Phone }, func(j *model.Job, v string) { j.BillingContact.Phone = v }},
	{"siteContactName", func(j model.Job) string { return j.SiteContact.Name }, func(j *model.Job, v string) { j.SiteContact.Name = v }},
	{"siteContactEmail", func(j model.Job) string { return j.SiteContact.Email }, func(j *model.Job, v string) { j.SiteContact.Email = v }},
	{"siteContactPhone", func(j model.Job) string { return j.SiteContact.Phone }, func(j *model.Job, v string) { j.SiteContact.Phone = v }},
	{"services", encodeServices, setServices},
	{"adjustments", encodeAdjustments, setAdjustments},
	{"notes", func(j model.Job) string { return j.Notes }, func(j *model.Job, v string) { j.Notes = v }},
	{"createdAt", func(j model.Job) string { return j.CreatedAt }, func(j *model.Job, v string) { j.CreatedAt = v }},
	{"updatedAt", func(j model.Job) string { return j.UpdatedAt }, func(j *model.Job, v string) { j.UpdatedAt = v }},
}

// Columns returns the header names in output order.
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// FileName returns the default export file name for t.
func FileName(t time.Time) string {
	return "comtech-lite-" + model.FormatDate(t) + ".csv"
}

// Marshal renders jobs as CSV text: a header line followed by one line
// per job, separated by "\n".
func Marshal(jobs []model.Job) string {
	lines := make([]string, 0, len(jobs)+1)
	lines = append(lines, strings.Join(Columns(), ","))

	cells := make([]string, len(columns))
	for _, j := range jobs {
		for i, c := range columns {
			cells[i] = escape(c.get(j))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

// Encode writes Marshal(jobs) to w.
func Encode(w io.Writer, jobs []model.Job) error {
	if _, err := io.WriteString(w, Marshal(jobs)); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// Decode reads all of r and parses it with Unmarshal.
func Decode(r io.Reader) ([]model.Job, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, ErrNotText
	}
	return Unmarshal(string(data)), nil
}

// Unmarshal parses CSV text into jobs. The first non-blank record is the
// header; columns are looked up by name so they may be reordered or
// missing. Malformed content never aborts the parse: an unclosed quote
// swallows the rest of the input, and list entries with unparseable
// numbers are dropped.
func Unmarshal(text string) []model.Job {
	var records [][]string
	for _, rec := range splitRecords(text) {
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	jobs := make([]model.Job, 0, len(records)-1)
	for _, rec := range records[1:] {
		var j model.Job
		for _, c := range columns {
			v := ""
			if i, ok := index[c.name]; ok && i < len(rec) {
				v = rec[i]
			}
			c.set(&j, v)
		}
		if j.ID == "" {
			j.ID = model.NewID()
		}
		jobs = append(jobs, j)
	}
	return jobs
}

// escape quotes s when it holds a comma, a double quote or a newline.
func escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// splitRecords scans text into records of fields. Outside quotes a comma
// ends a field and a newline (optionally preceded by \r) ends a record.
// Inside quotes "" is a literal quote and everything else is literal.
func splitRecords(text string) [][]string {
	var (
		records  [][]string
		record   []string
		field    strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inQuotes {
			switch {
			case ch == '"' && i+1 < len(text) && text[i+1] == '"':
				field.WriteByte('"')
				i++
			case ch == '"':
				inQuotes = false
			default:
				field.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case ',':
			record = append(record, field.String())
			field.Reset()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			field.WriteByte(ch)
		case '\n':
			record = append(record, field.String())
			field.Reset()
			records = append(records, record)
			record = nil
		default:
			field.WriteByte(ch)
		}
	}

	if field.Len() > 0 || len(record) > 0 || inQuotes {
		record = append(record, field.String())
		records = append(records, record)
	}
	return records
}

func isBlank(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}

func setStatus(j *model.Job, v string) {
	if st, ok := model.ParseStage(v); ok {
		j.Status = st
		return
	}
	j.Status = model.StageInTray
}

func setNumbers(j *model.Job, v string) {
	j.NumbersList = splitList(v)
}

func encodeServices(j model.Job) string {
	parts := make([]string, len(j.Services))
	for i, l := range j.Services {
		parts[i] = l.Name + partSep + l.Qty.String() + partSep + l.UnitPrice.String()
	}
	return strings.Join(parts, listSep)
}

// setServices decodes name@qty@unitPrice entries. The last two parts are
// the numbers, so a name may itself contain "@".
func setServices(j *model.Job, v string) {
	j.Services = nil
	for _, entry := range splitList(v) {
		parts := strings.Split(entry, partSep)
		if len(parts) < 3 {
			continue
		}
		n := len(parts)
		qty, err := decimal.NewFromString(strings.TrimSpace(parts[n-2]))
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(parts[n-1]))
		if err != nil {
			continue
		}
		j.Services = append(j.Services, model.ServiceLine{
			ID:        model.NewID(),
			Name:      strings.Join(parts[:n-2], partSep),
			UnitPrice: price,
			Qty:       qty,
		})
	}
}

func encodeAdjustments(j model.Job) string {
	parts := make([]string, len(j.Adjustments))
	for i, a := range j.Adjustments {
		parts[i] = a.Label + partSep + a.AmountEx.String()
	}
	return strings.Join(parts, listSep)
}

func setAdjustments(j *model.Job, v string) {
	j.Adjustments = nil
	for _, entry := range splitList(v) {
		at := strings.LastIndex(entry, partSep)
		if at < 0 {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(entry[at+1:]))
		if err != nil {
			continue
		}
		label := entry[:at]
		if strings.TrimSpace(label) == "" {
			label = "Adjustment"
		}
		j.Adjustments = append(j.Adjustments, model.Adjustment{
			ID:       model.NewID(),
			Label:    label,
			AmountEx: amount,
		})
	}
}

// splitList splits on "|" and drops empty entries.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, listSep) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
