package preview

// Row is one data record keyed by column name.
type Row map[string]string

// Table is the parsed form of a CSV payload. Columns keeps header order and
// holds no duplicates.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Slice returns rows[start:stop], clamped to the table bounds.
func (t *Table) Slice(start, stop int) []Row {
	n := t.Len()
	start = clamp(start, 0, n)
	stop = clamp(stop, start, n)
	if start == stop {
		return nil
	}
	return t.Rows[start:stop]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
