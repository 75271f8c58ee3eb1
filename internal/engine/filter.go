// internal/engine/filter.go
package engine

import "github.com/coredbio/coredb/internal/storage"

// matchesFilter evaluates a single predicate against one row. A column
// that doesn't exist never matches; GreaterThan/LessThan only apply to
// integer fields, since that's the only ordered type this engine has.
func matchesFilter(row storage.Row, schema storage.Schema, f Filter) bool {
	idx, ok := schema.ColumnIndex(f.Column)
	if !ok {
		return false
	}
	field := row[idx]
	switch f.Operator {
	case OpEq:
		return field.Equal(f.Value)
	case OpNotEq:
		return !field.Equal(f.Value)
	case OpGreaterThan:
		return field.Kind == storage.KindInteger && f.Value.Kind == storage.KindInteger && field.Int > f.Value.Int
	case OpLessThan:
		return field.Kind == storage.KindInteger && f.Value.Kind == storage.KindInteger && field.Int < f.Value.Int
	}
	return false
}

func filterRows(rows []storage.Row, schema storage.Schema, f Filter) []storage.Row {
	out := make([]storage.Row, 0, len(rows))
	for _, r := range rows {
		if matchesFilter(r, schema, f) {
			out = append(out, r)
		}
	}
	return out
}
