// Package store models the persistence contract the controllers consume: a
// composable query value carrying select/populate/sort/skip/limit stages, and
// a Store interface that executes it against a document database.
package store

// Filter selects documents by field value. Values are matched literally
// unless they are one of the typed match values below (Range, In, Regex, Ne).
type Filter map[string]any

// Range matches numeric fields between Min and Max inclusive.
type Range struct {
	Min float64
	Max float64
}

// In matches fields equal to any of the listed values.
type In []any

// Regex matches string fields containing the pattern, case-insensitively.
type Regex struct {
	Pattern string
}

// Ne matches fields not equal to the given value.
type Ne struct {
	Value any
}

const orKey = "$or"

// AnyOf matches documents satisfying at least one of the given filters. It
// can be combined with further keys on the returned filter; those are applied
// conjunctively.
func AnyOf(filters ...Filter) Filter {
	return Filter{orKey: filters}
}

// Populate resolves a top-level reference field into the referenced
// document(s) from another collection, optionally projected with Select.
type Populate struct {
	Field  string
	From   string
	Select []string
}

// Sort orders results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Update describes a partial document mutation: Set overwrites fields, Inc
// adjusts numeric fields by the given delta.
type Update struct {
	Set map[string]any
	Inc map[string]any
}

// Query is a value describing one read: a filter plus the modifier stages a
// store applies around it. Stage methods return a modified copy, so a query
// is built by chaining and never shares state with its origin.
type Query struct {
	Filter     Filter
	Projection []string
	Populates  []Populate
	Sorts      []Sort
	Offset     int64
	Max        int64
}

// Where starts a query from a filter. A nil filter matches every document.
func Where(f Filter) Query {
	return Query{Filter: f}
}

// Select projects the listed fields onto results. A "-" prefix excludes the
// field instead; inclusion and exclusion must not be mixed.
func (q Query) Select(fields ...string) Query {
	q.Projection = append(q.Projection, fields...)
	return q
}

// PopulateRef resolves the reference field from the given collection,
// projecting the referenced documents with selects when provided.
func (q Query) PopulateRef(field, from string, selects ...string) Query {
	q.Populates = append(q.Populates, Populate{Field: field, From: from, Select: selects})
	return q
}

// SortBy orders results by field, descending when desc is set. Repeated calls
// append secondary sort keys.
func (q Query) SortBy(field string, desc bool) Query {
	q.Sorts = append(q.Sorts, Sort{Field: field, Desc: desc})
	return q
}

// Skip drops the first n matching documents.
func (q Query) Skip(n int64) Query {
	q.Offset = n
	return q
}

// Limit caps the number of returned documents. Zero means no cap.
func (q Query) Limit(n int64) Query {
	q.Max = n
	return q
}
