package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the yyyy-mm-dd layout used for every stored date.
const DateLayout = "2006-01-02"

// Contact is a name/email/phone triple. Every field is optional.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// IsZero reports whether no contact detail is set.
func (c Contact) IsZero() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// ServiceLine is one billable entry on a job. Prices are ex GST.
type ServiceLine struct {
	ID string `json:"id"`

	// ServiceID is the price book item this line was picked from, if any.
	// Price book items may be deleted later; nothing enforces the reference.
	ServiceID string `json:"serviceId,omitempty"`

	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       decimal.Decimal `json:"qty"`

	// UnitNote qualifies the unit, e.g. "(Per Channel)".
	UnitNote string `json:"unitNote,omitempty"`
}

// Adjustment is a flat ex-GST amount added to a job's total.
// Negative amounts are discounts.
type Adjustment struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	AmountEx decimal.Decimal `json:"amountEx"`
}

// Todo is a checklist entry on a job.
type Todo struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"createdAt"`
}

// Attachment is a file stored inline with its job. DataURL holds the
// payload as a base64 data: URL and is never inspected.
type Attachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Type      string `json:"type"`
	DataURL   string `json:"dataUrl"`
	CreatedAt string `json:"createdAt"`
}

// Job is a customer job moving through the pipeline.
type Job struct {
	// ID is assigned when the job is added and never changes.
	ID string `json:"id"`

	Customer  string `json:"customer"`
	Site      string `json:"site,omitempty"`
	Reference string `json:"reference,omitempty"`
	Address   string `json:"address,omitempty"`

	// NumbersList keeps the customer's numbers in entry order.
	NumbersList []string `json:"numbersList,omitempty"`

	// PrimaryNumber is a copy of one NumbersList entry. It is not
	// re-checked when NumbersList changes.
	PrimaryNumber string `json:"primaryNumber,omitempty"`

	Status Stage `json:"status"`

	BillingContact Contact `json:"billingContact"`
	SiteContact    Contact `json:"siteContact"`

	Services    []ServiceLine `json:"services,omitempty"`
	Adjustments []Adjustment  `json:"adjustments,omitempty"`

	Notes       string       `json:"notes,omitempty"`
	Todos       []Todo       `json:"todos,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy of j so callers never share list backing
// arrays with the store.
func (j Job) Clone() Job {
	out := j
	out.NumbersList = cloneSlice(j.NumbersList)
	out.Services = cloneSlice(j.Services)
	out.Adjustments = cloneSlice(j.Adjustments)
	out.Todos = cloneSlice(j.Todos)
	out.Attachments = cloneSlice(j.Attachments)
	return out
}

// ValidateNewJob checks the fields a job must carry before it is added.
func ValidateNewJob(j Job) error {
	if strings.TrimSpace(j.Customer) == "" {
		return fmt.Errorf("customer is required")
	}
	if j.Status != "" && !j.Status.IsValid() {
		return fmt.Errorf("invalid stage: %s", j.Status)
	}
	for _, l := range j.Services {
		if l.Qty.IsNegative() {
			return fmt.Errorf("service %q: qty must not be negative", l.Name)
		}
	}
	return nil
}

// ListSeparator joins list entries in the CSV interchange format. The
// Clean functions replace it inside entries so exports split back cleanly.
const ListSeparator = "|"

func withoutSeparator(s string) string {
	return strings.ReplaceAll(s, ListSeparator, "/")
}

// CleanNumbers trims each number and drops blanks, keeping order.
func CleanNumbers(numbers []string) []string {
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if n = strings.TrimSpace(withoutSeparator(n)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// CleanServiceLines trims names, assigns missing ids, and drops lines
// with an empty name or a non-positive qty.
func CleanServiceLines(lines []ServiceLine) []ServiceLine {
	out := make([]ServiceLine, 0, len(lines))
	for _, l := range lines {
		l.Name = strings.TrimSpace(withoutSeparator(l.Name))
		if l.Name == "" || !l.Qty.IsPositive() {
			continue
		}
		if l.ID == "" {
			l.ID = NewID()
		}
		out = append(out, l)
	}
	return out
}

// CleanAdjustments assigns missing ids and labels blank entries "Adjustment".
func CleanAdjustments(adjs []Adjustment) []Adjustment {
	out := make([]Adjustment, 0, len(adjs))
	for _, a := range adjs {
		a.Label = strings.TrimSpace(withoutSeparator(a.Label))
		if a.Label == "" {
			a.Label = "Adjustment"
		}
		if a.ID == "" {
			a.ID = NewID()
		}
		out = append(out, a)
	}
	return out
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.New().String()
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
