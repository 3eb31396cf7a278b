package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/shiptrace/internal/ir"
)

// Table is one tabular file read into memory.
type Table struct {
	// Path is the file location as resolved against the data root.
	Path string

	// Schema lists the columns in header order with their inferred kinds.
	Schema ir.Schema

	// Records holds the rows in file order.
	Records []ir.Record
}

// nullCells are the cell spellings read as a missing value.
var nullCells = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"NULL": true,
	"null": true,
	"None": true,
	"<NA>": true,
}

// delimiterFor returns the field separator for a supported extension.
func delimiterFor(path string) (rune, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ',', true
	case ".tsv":
		return '\t', true
	default:
		return 0, false
	}
}

// Load reads a tabular file and infers a kind for every column.
//
// maxRows <= 0 reads every row. Rows shorter than the header are padded with
// nulls; rows longer than the header are a parse failure. All failures are
// returned as *ir.Error with ErrCodeParseFailure.
func Load(path string, maxRows int) (*Table, error) {
	comma, ok := delimiterFor(path)
	if !ok {
		return nil, ir.NewParseFailure(path, fmt.Errorf("unsupported file extension %q", filepath.Ext(path)))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ir.NewParseFailure(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1 // Width is checked against the header below

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ir.NewParseFailure(path, errors.New("no columns to parse from file"))
	}
	if err != nil {
		return nil, ir.NewParseFailure(path, err)
	}
	columns := normalizeHeader(header)

	var rows [][]string
	for maxRows <= 0 || len(rows) < maxRows {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ir.NewParseFailure(path, err)
		}
		if len(row) > len(columns) {
			line, _ := r.FieldPos(0)
			return nil, ir.NewParseFailure(path,
				fmt.Errorf("line %d: expected %d fields, saw %d", line, len(columns), len(row)))
		}
		rows = append(rows, row)
	}

	schema := ir.Schema{Columns: make([]ir.Column, len(columns))}
	for i, name := range columns {
		schema.Columns[i] = ir.Column{Name: name, Kind: inferKind(rows, i)}
	}

	records := make([]ir.Record, 0, len(rows))
	for _, row := range rows {
		values := make([]ir.Value, len(columns))
		for i, col := range schema.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			values[i] = ParseCell(cell, col.Kind)
		}
		rec, err := ir.NewRecord(columns, values)
		if err != nil {
			return nil, ir.NewParseFailure(path, err)
		}
		records = append(records, rec)
	}

	return &Table{Path: path, Schema: schema, Records: records}, nil
}

// normalizeHeader strips a UTF-8 BOM, names blank columns and disambiguates
// duplicates as name, name.1, name.2.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dupes := make(map[string]int)
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			dupes[h]++
			name = fmt.Sprintf("%s.%d", h, dupes[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// inferKind picks the narrowest kind that parses every non-null cell of
// column i. A column with no non-null cells is String.
func inferKind(rows [][]string, i int) ir.Kind {
	allInt, allFloat, allBool := true, true, true
	seen := false
	for _, row := range rows {
		if i >= len(row) || nullCells[row[i]] {
			continue
		}
		cell := strings.TrimSpace(row[i])
		seen = true
		if allInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(cell); !ok {
				allBool = false
			}
		}
		if !allInt && !allFloat && !allBool {
			return ir.KindString
		}
	}
	switch {
	case !seen:
		return ir.KindString
	case allInt:
		return ir.KindInt
	case allFloat:
		return ir.KindFloat
	case allBool:
		return ir.KindBool
	default:
		return ir.KindString
	}
}

// ParseCell converts one raw cell to a Value of the column's kind.
// Null spellings become ir.Null regardless of kind.
func ParseCell(cell string, kind ir.Kind) ir.Value {
	if nullCells[cell] {
		return ir.Null{}
	}
	trimmed := strings.TrimSpace(cell)
	switch kind {
	case ir.KindInt:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return ir.Int(n)
		}
	case ir.KindFloat:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return ir.Float(f)
		}
	case ir.KindBool:
		if b, ok := parseBool(trimmed); ok {
			return ir.Bool(b)
		}
	}
	return ir.String(cell)
}

// parseBool accepts true/false in any letter case.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
