// Package tabular turns raw CSV or JSON text into a rectangular row set
// with a per-column statistical summary. It is the first stage of the
// insight pipeline; everything downstream consumes its Table.
package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/AtlasData/atlas-insight-go/analysis"
)

// Format identifies the raw input encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseError reports malformed, empty, or unsupported input. Parsing
// failures abort the whole pipeline for that dataset.
type ParseError struct {
	Format Format
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Format, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser materializes tables from raw text
type Parser struct {
	cfg analysis.Config
}

// NewParser creates a parser with the given thresholds
func NewParser(cfg analysis.Config) *Parser {
	return &Parser{cfg: cfg}
}

// Parse turns raw text into a Table. It fails with *ParseError when the
// format is unsupported or zero data rows remain after parsing.
func (p *Parser) Parse(raw string, format Format) (*Table, error) {
	var (
		columns []string
		rows    []Row
		err     error
	)

	switch format {
	case FormatCSV:
		columns, rows, err = p.parseCSV(raw)
	case FormatJSON:
		columns, rows, err = p.parseJSON(raw)
	default:
		return nil, &ParseError{Format: format, Reason: "unsupported format"}
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &ParseError{Format: format, Reason: "no data rows"}
	}

	if len(rows) > p.cfg.MaxRows {
		rows = rows[:p.cfg.MaxRows]
	}

	table := &Table{
		Columns: columns,
		Rows:    rows,
		Summary: make(map[string]*ColumnProfile, len(columns)),
	}
	p.classifyColumns(table)
	return table, nil
}

// parseCSV reads a header row plus data rows
func (p *Parser) parseCSV(raw string) ([]string, []Row, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, &ParseError{Format: FormatCSV, Reason: "malformed input", Err: err}
	}
	if len(records) < 2 {
		return nil, nil, &ParseError{Format: FormatCSV, Reason: "no data rows"}
	}

	columns := make([]string, len(records[0]))
	for i, name := range records[0] {
		columns[i] = strings.TrimSpace(name)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(columns))
		for i, name := range columns {
			if i >= len(record) {
				row[name] = Null()
				continue
			}
			row[name] = cellValue(record[i])
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// parseJSON accepts either a bare array of flat objects or a {"data": [...]}
// envelope, which is how the catalog application exports files.
func (p *Parser) parseJSON(raw string) ([]string, []Row, error) {
	var objects []map[string]any

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var envelope struct {
			Data []map[string]any `json:"data"`
		}
		if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
			return nil, nil, &ParseError{Format: FormatJSON, Reason: "malformed input", Err: err}
		}
		objects = envelope.Data
	} else {
		if err := json.Unmarshal([]byte(trimmed), &objects); err != nil {
			return nil, nil, &ParseError{Format: FormatJSON, Reason: "malformed input", Err: err}
		}
	}

	// Column order: first appearance across rows. Keys within one object
	// are sorted first, since Go map iteration is randomized.
	var columns []string
	seen := make(map[string]bool)
	for _, obj := range objects {
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	rows := make([]Row, 0, len(objects))
	for _, obj := range objects {
		row := make(Row, len(columns))
		for _, name := range columns {
			raw, ok := obj[name]
			if !ok {
				row[name] = Null()
				continue
			}
			row[name] = jsonValue(raw)
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

// cellValue interprets a CSV cell, probing numbers and booleans the way the
// ingestion path always has.
func cellValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "na") || strings.EqualFold(s, "n/a") {
		return Null()
	}
	return Text(s)
}

// jsonValue converts a decoded JSON scalar into a Value
func jsonValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case float64:
		return Number(v)
	case bool:
		return Bool(v)
	case string:
		return cellValue(v)
	default:
		// Nested objects/arrays flatten to their JSON text
		b, err := json.Marshal(v)
		if err != nil {
			return Null()
		}
		return Text(string(b))
	}
}

// classifyColumns assigns each column a type by majority vote over its
// non-null values and fills in the per-column profiles.
func (p *Parser) classifyColumns(table *Table) {
	for _, name := range table.Columns {
		values := table.ColumnValues(name)

		colType := ColumnCategorical
		if len(values) > 0 {
			numeric := 0
			dates := 0
			for _, v := range values {
				if _, ok := v.AsNumber(); ok {
					numeric++
				} else if _, ok := v.AsTime(); ok {
					dates++
				}
			}
			total := float64(len(values))
			switch {
			case float64(numeric)/total >= p.cfg.NumericMajority:
				colType = ColumnNumeric
			case float64(dates)/total >= p.cfg.DateMajority:
				colType = ColumnDate
			}
		}

		switch colType {
		case ColumnNumeric:
			table.NumericColumns = append(table.NumericColumns, name)
		case ColumnDate:
			table.DateColumns = append(table.DateColumns, name)
		default:
			table.CategoricalColumns = append(table.CategoricalColumns, name)
		}
		table.Summary[name] = buildProfile(table, name, colType)
	}
}
