package domain

import "sort"

// Table is an immutable snapshot of loaded balance-sheet records.
// Transformations return a new Table and never touch the receiver.
type Table struct {
	records []BalanceSheetRecord
	source  string
}

// NewTable copies records into a new table.
func NewTable(source string, records []BalanceSheetRecord) *Table {
	cp := make([]BalanceSheetRecord, len(records))
	copy(cp, records)
	return &Table{records: cp, source: source}
}

// Source returns the path the table was loaded from, if any.
func (t *Table) Source() string {
	return t.source
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the i-th record by value.
func (t *Table) At(i int) BalanceSheetRecord {
	return t.records[i]
}

// Records returns a copy of all records.
func (t *Table) Records() []BalanceSheetRecord {
	cp := make([]BalanceSheetRecord, len(t.records))
	copy(cp, t.records)
	return cp
}

// Filter returns a table with the records for which keep returns true.
func (t *Table) Filter(keep func(BalanceSheetRecord) bool) *Table {
	out := make([]BalanceSheetRecord, 0, len(t.records))
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Table{records: out, source: t.source}
}

// Column returns the named float column in record order.
func (t *Table) Column(name string) []NullFloat {
	out := make([]NullFloat, len(t.records))
	for i, r := range t.records {
		out[i] = r.Value(name)
	}
	return out
}

// SortedIndex returns record positions ordered by bank_id, then year
// ascending. Missing years sort last within a bank; ties keep input order.
func (t *Table) SortedIndex() []int {
	idx := make([]int, len(t.records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := t.records[idx[a]], t.records[idx[b]]
		if ra.BankID != rb.BankID {
			return ra.BankID < rb.BankID
		}
		switch {
		case ra.Year.Valid && rb.Year.Valid:
			return ra.Year.Value < rb.Year.Value
		case ra.Year.Valid:
			return true
		default:
			return false
		}
	})
	return idx
}
