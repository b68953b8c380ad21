package store

import (
	"context"
	"fmt"
	"io"

	"github.com/nhle/comtech-lite/internal/csvcodec"
)

// ExportCSV writes the job list to w.
func (s *Store) ExportCSV(w io.Writer) error {
	return csvcodec.Encode(w, s.Jobs())
}

// ImportCSV replaces the job list with the jobs decoded from r and
// returns how many were imported. A read failure leaves the store as is.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	jobs, err := csvcodec.Decode(r)
	if err != nil {
		return 0, fmt.Errorf("importing csv: %w", err)
	}
	if err := s.ReplaceAll(ctx, jobs); err != nil {
		return 0, err
	}
	s.log.Info("csv imported", "jobs", len(jobs))
	return len(jobs), nil
}
