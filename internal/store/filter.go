package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nhle/comtech-lite/internal/model"
)

// JobFilter narrows a job list. Zero fields match everything.
type JobFilter struct {
	// Query is matched case-insensitively as a substring.
	Query string

	Stage model.Stage
}

// FilterJobs returns the jobs matching f, keeping their order.
func FilterJobs(jobs []model.Job, f JobFilter) []model.Job {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Stage != "" && j.Status != f.Stage {
			continue
		}
		if q != "" && !strings.Contains(haystack(j), q) {
			continue
		}
		out = append(out, j)
	}
	return out
}

func haystack(j model.Job) string {
	parts := []string{
		j.Customer,
		j.Reference,
		j.Address,
		j.PrimaryNumber,
		string(j.Status),
		strings.Join(j.NumbersList, " "),
	}
	for _, l := range j.Services {
		parts = append(parts, l.Name+" "+l.Qty.String()+" "+l.UnitPrice.String())
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Column is one board column.
type Column struct {
	Stage model.Stage
	Jobs  []model.Job
}

// Board groups jobs into one column per stage, in stage order. Every
// stage gets a column even when empty; jobs with an unknown stage are
// left out.
func Board(jobs []model.Job) []Column {
	cols := make([]Column, len(model.Stages))
	for i, st := range model.Stages {
		cols[i].Stage = st
	}
	for _, j := range jobs {
		if i := j.Status.Index(); i >= 0 {
			cols[i].Jobs = append(cols[i].Jobs, j)
		}
	}
	return cols
}

// Category is a price book group.
type Category struct {
	Name  string
	Items []model.PriceItem
}

// GroupByCategory groups items by category label, sorted by name.
// Items keep their price book order within a group.
func GroupByCategory(items []model.PriceItem) []Category {
	index := make(map[string]int)
	var groups []Category
	for _, it := range items {
		label := it.CategoryLabel()
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Category{Name: label})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	slices.SortStableFunc(groups, func(a, b Category) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return groups
}
