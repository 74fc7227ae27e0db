package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

// Parse reads CSV content into a Dataset. source only labels the result and
// any error.
func Parse(source string, r io.Reader) (*manifest.Dataset, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &SourceUnavailableError{Source: source, Err: fmt.Errorf("read: %w", err)}
	}
	if countLines(body) < 2 {
		return nil, &InvalidSchemaError{Source: source, Reason: "table is empty"}
	}

	// Every column stays a string series so raw cells survive untouched for
	// export; typing happens per record below.
	df := dataframe.ReadCSV(bytes.NewReader(body),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, &SourceUnavailableError{Source: source, Err: fmt.Errorf("parse csv: %w", df.Err)}
	}
	if df.Nrow() == 0 {
		return nil, &InvalidSchemaError{Source: source, Reason: "table is empty"}
	}

	// gota renames blank and duplicate header cells; keep the names as
	// written and map body cells by position.
	header, err := csv.NewReader(bytes.NewReader(body)).Read()
	if err != nil {
		return nil, &SourceUnavailableError{Source: source, Err: fmt.Errorf("read header: %w", err)}
	}
	rows := df.Records()
	if len(rows[0]) != len(header) {
		return nil, &InvalidSchemaError{Source: source, Reason: fmt.Sprintf("header has %d columns, rows have %d", len(header), len(rows[0]))}
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// first occurrence of a repeated name wins
		if _, dup := idx[strings.TrimSpace(h)]; !dup {
			idx[strings.TrimSpace(h)] = i
		}
	}
	survCol, ok := idx[manifest.ColumnSurvived]
	if !ok {
		return nil, &InvalidSchemaError{Source: source, Reason: "missing required column " + manifest.ColumnSurvived}
	}
	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]manifest.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		survived, ok := parseOutcome(row[survCol])
		if !ok {
			return nil, &InvalidSchemaError{
				Source: source,
				Reason: fmt.Sprintf("row %d: %s must be 0 or 1, got %q", n+1, manifest.ColumnSurvived, row[survCol]),
			}
		}
		rec := manifest.NewRecord(n, row)
		rec.Survived = survived
		rec.Sex = parseCategory(cell(row, manifest.ColumnSex))
		rec.Embarked = parseCategory(cell(row, manifest.ColumnEmbarked))
		rec.Class = parseClass(cell(row, manifest.ColumnClass))
		rec.Age = parseNumber(cell(row, manifest.ColumnAge))
		rec.SibSp = parseCount(cell(row, manifest.ColumnSibSp))
		rec.Parch = parseCount(cell(row, manifest.ColumnParch))
		rec = rec.WithFare(parseNumber(cell(row, manifest.ColumnFare)))
		records = append(records, rec)
	}
	return manifest.New(source, header, records), nil
}

// countLines counts non-blank lines; fewer than two means no data row.
func countLines(b []byte) int {
	n := 0
	for _, line := range bytes.Split(b, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
			if n >= 2 {
				return n
			}
		}
	}
	return n
}

func isMissing(s string) bool {
	switch s {
	case "", "NA", "NaN", "nan", "<nil>":
		return true
	}
	return false
}

func parseCategory(s string) string {
	if isMissing(s) {
		return ""
	}
	return s
}

func parseNumber(s string) *float64 {
	if isMissing(s) {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseCount(s string) int {
	f := parseNumber(s)
	if f == nil || *f < 0 {
		return 0
	}
	return int(*f)
}

func parseClass(s string) int {
	f := parseNumber(s)
	if f == nil || *f < 1 || *f != math.Trunc(*f) {
		return 0
	}
	return int(*f)
}

func parseOutcome(s string) (bool, bool) {
	f := parseNumber(strings.TrimSpace(s))
	if f == nil {
		return false, false
	}
	switch *f {
	case 0:
		return false, true
	case 1:
		return true, true
	}
	return false, false
}
