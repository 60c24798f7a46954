package recipe

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Row is one stored recipe row, as exported from the tribe_recipes table.
type Row struct {
	ID           int    `csv:"id"`
	Name         string `csv:"name"`
	Persistent   int    `csv:"persistent"`
	Uniqueness   int    `csv:"uniqueness"`
	Algorithm    string `csv:"algorithm"`
	Requirements string `csv:"requirements"`
}

// ReadRows unmarshals recipe rows from CSV with a header line.
func ReadRows(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading recipe rows: %w", err)
	}
	return rows, nil
}

// WriteRows marshals recipe rows to CSV with a header line.
func WriteRows(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing recipe rows: %w", err)
	}
	return nil
}

// Parse turns a row into a Recipe.
// Empty algorithm entries are dropped; an unknown requirement keyword is a LoadError.
func (row Row) Parse() (*Recipe, error) {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return nil, &LoadError{ID: row.ID, Field: "name", Index: -1, Err: ErrEmptyName}
	}

	r := &Recipe{
		ID:         row.ID,
		Name:       name,
		Persistent: row.Persistent == 1,
		Unique:     row.Uniqueness == 1,
	}

	for _, call := range strings.Split(row.Algorithm, ";") {
		call = strings.TrimSpace(call)
		if call == "" {
			continue
		}
		r.Algorithm = append(r.Algorithm, NewStep(call))
	}

	reqs := strings.Split(row.Requirements, ";")
	// Stored lists end with a separator, so the last element is empty.
	if n := len(reqs); n > 0 && strings.TrimSpace(reqs[n-1]) == "" {
		reqs = reqs[:n-1]
	}
	for i, text := range reqs {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		req, err := parseRequirement(text)
		if err != nil {
			return nil, &LoadError{ID: row.ID, Name: name, Field: "requirements", Index: i, Err: err}
		}
		r.Requirements = append(r.Requirements, req)
	}

	return r, nil
}

// RowOf converts a recipe back to its stored form.
func RowOf(r *Recipe) Row {
	row := Row{ID: r.ID, Name: r.Name}
	if r.Persistent {
		row.Persistent = 1
	}
	if r.Unique {
		row.Uniqueness = 1
	}

	steps := make([]string, len(r.Algorithm))
	for i, step := range r.Algorithm {
		steps[i] = step.Text
	}
	row.Algorithm = strings.Join(steps, ";")

	var sb strings.Builder
	for _, req := range r.Requirements {
		sb.WriteString(req.String())
		sb.WriteByte(';')
	}
	row.Requirements = sb.String()
	return row
}
