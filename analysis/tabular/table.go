package tabular

// Row maps column names to cell values
type Row map[string]Value

// Table is an ordered, rectangular row set. Insertion order is preserved,
// which matters for time-series detection downstream.
type Table struct {
	Columns            []string                  `json:"columns"`
	Rows               []Row                     `json:"rows"`
	NumericColumns     []string                  `json:"numeric_columns"`
	DateColumns        []string                  `json:"date_columns"`
	CategoricalColumns []string                  `json:"categorical_columns"`
	Summary            map[string]*ColumnProfile `json:"summary"`
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int { return len(t.Rows) }

// IsEmpty reports whether the table has no data rows
func (t *Table) IsEmpty() bool { return t == nil || len(t.Rows) == 0 }

// ColumnValues collects the non-null values of one column in row order
func (t *Table) ColumnValues(name string) []Value {
	values := make([]Value, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row[name]; ok && !v.IsNull() {
			values = append(values, v)
		}
	}
	return values
}

// NumericValues collects the parseable numeric values of one column in row order
func (t *Table) NumericValues(name string) []float64 {
	nums := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		v, ok := row[name]
		if !ok || v.IsNull() {
			continue
		}
		if f, ok := v.AsNumber(); ok {
			nums = append(nums, f)
		}
	}
	return nums
}

// PairedNumericValues collects rows where both columns hold numbers,
// preserving the pairing between them.
func (t *Table) PairedNumericValues(x, y string) ([]float64, []float64) {
	xs := make([]float64, 0, len(t.Rows))
	ys := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		xv, ok := row[x]
		if !ok || xv.IsNull() {
			continue
		}
		yv, ok := row[y]
		if !ok || yv.IsNull() {
			continue
		}
		xf, okx := xv.AsNumber()
		yf, oky := yv.AsNumber()
		if okx && oky {
			xs = append(xs, xf)
			ys = append(ys, yf)
		}
	}
	return xs, ys
}

// RowsAsMaps converts rows into plain maps for visualization payloads
func (t *Table) RowsAsMaps(limit int) []map[string]any {
	n := len(t.Rows)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]map[string]any, 0, n)
	for _, row := range t.Rows[:n] {
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = v.Raw()
		}
		out = append(out, m)
	}
	return out
}
