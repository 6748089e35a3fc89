// Package report writes run artifacts: the accepted and rejected CSVs and
// the human-readable run summary.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SURENDHAR-1925/Job-Track/internal/filter"
	"github.com/SURENDHAR-1925/Job-Track/internal/scraper"
)

// Header is the fixed accepted-file column order.
var Header = []string{"title", "company", "location", "snippet", "link", "source"}

// RejectedHeader is Header plus the joined rejection reasons.
var RejectedHeader = append(append([]string{}, Header...), "reason")

// ReasonSeparator joins a rejected job's reasons in the reason column.
const ReasonSeparator = "; "

// CSVWriter persists result sets. A header row is always written, so an
// empty run still leaves a valid file behind.
type CSVWriter struct{}

func NewCSVWriter() *CSVWriter { return &CSVWriter{} }

func (w *CSVWriter) WriteAccepted(path string, jobs []scraper.Job) error {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, row(j))
	}
	return writeFile(path, Header, rows)
}

func (w *CSVWriter) WriteRejected(path string, decisions []filter.Decision) error {
	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, append(row(d.Job), strings.Join(d.Reasons, ReasonSeparator)))
	}
	return writeFile(path, RejectedHeader, rows)
}

func row(j scraper.Job) []string {
	return []string{j.Title, j.Company, j.Location, j.Snippet, j.Link, j.Source}
}

// writeFile writes into a temp file next to path and renames it over path,
// so readers never see a half-written CSV.
func writeFile(path string, header []string, rows [][]string) error {
	if path == "" {
		return fmt.Errorf("csv path is empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp csv: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	if err := cw.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
