// internal/storage/types.go
package storage

import "fmt"

// FieldKind identifies which of the three data types a Field holds.
type FieldKind int

const (
	KindInteger FieldKind = iota
	KindBoolean
	KindText
)

// DataType describes a column's storage type. Text carries a fixed
// maximum byte length that every row's Text field is padded or
// truncated to.
type DataType struct {
	Kind   FieldKind
	MaxLen int // only meaningful for KindText
}

func Integer() DataType    { return DataType{Kind: KindInteger} }
func Boolean() DataType    { return DataType{Kind: KindBoolean} }
func Text(n int) DataType  { return DataType{Kind: KindText, MaxLen: n} }

// Size returns the fixed on-disk width of a value of this type.
func (d DataType) Size() int {
	switch d.Kind {
	case KindInteger:
		return 4
	case KindBoolean:
		return 1
	case KindText:
		return d.MaxLen
	}
	return 0
}

func (d DataType) String() string {
	switch d.Kind {
	case KindInteger:
		return "Integer"
	case KindBoolean:
		return "Boolean"
	case KindText:
		return fmt.Sprintf("Text(%d)", d.MaxLen)
	}
	return "Unknown"
}

// Field is a single typed value. Exactly one of the Int/Bool/Str
// fields is meaningful, selected by Kind.
type Field struct {
	Kind FieldKind
	Int  int32
	Bool bool
	Str  string
}

func IntegerField(v int32) Field  { return Field{Kind: KindInteger, Int: v} }
func BooleanField(v bool) Field   { return Field{Kind: KindBoolean, Bool: v} }
func TextField(v string) Field    { return Field{Kind: KindText, Str: v} }

// Matches reports whether the field's runtime kind matches a column type.
func (f Field) Matches(d DataType) bool { return f.Kind == d.Kind }

// Equal reports whether two fields hold the same kind and value.
func (f Field) Equal(other Field) bool {
	if f.Kind != other.Kind {
		return false
	}
	switch f.Kind {
	case KindInteger:
		return f.Int == other.Int
	case KindBoolean:
		return f.Bool == other.Bool
	case KindText:
		return f.Str == other.Str
	}
	return false
}

// String is the primary-key stringification used to derive index keys:
// integers as decimal, booleans as "true"/"false", text as itself.
func (f Field) String() string {
	switch f.Kind {
	case KindInteger:
		return fmt.Sprintf("%d", f.Int)
	case KindBoolean:
		if f.Bool {
			return "true"
		}
		return "false"
	case KindText:
		return f.Str
	}
	return ""
}

// DebugString renders a field the way a derived Debug implementation would:
// Integer(1), Boolean(true), Text("alice").
func (f Field) DebugString() string {
	switch f.Kind {
	case KindInteger:
		return fmt.Sprintf("Integer(%d)", f.Int)
	case KindBoolean:
		return fmt.Sprintf("Boolean(%t)", f.Bool)
	case KindText:
		return fmt.Sprintf("Text(%q)", f.Str)
	}
	return "Unknown"
}

// Row is an ordered tuple of field values, one per column in a Schema.
type Row []Field

func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// DebugString renders a row as "[Integer(1), Text("alice")]".
func (r Row) DebugString() string {
	s := "["
	for i, f := range r {
		if i > 0 {
			s += ", "
		}
		s += f.DebugString()
	}
	return s + "]"
}

// Column describes one field of a table's schema.
type Column struct {
	Name            string
	Type            DataType
	IsPrimary       bool
	IsAutoincrement bool
}

// Schema is the ordered list of columns that define a table's row shape.
type Schema struct {
	TableName string
	Columns   []Column
}

func (s Schema) Clone() Schema {
	cols := make([]Column, len(s.Columns))
	copy(cols, s.Columns)
	return Schema{TableName: s.TableName, Columns: cols}
}

// RowSize is the fixed on-disk byte width of one row under this schema.
func (s Schema) RowSize() int {
	total := 0
	for _, c := range s.Columns {
		total += c.Type.Size()
	}
	return total
}

// ColumnIndex finds a column by name, case-sensitive (matching the literal
// identifiers the parser hands down).
func (s Schema) ColumnIndex(name string) (int, bool) {
	for i, c := range s.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// PrimaryColumnIndex returns the index of the table's single primary-key
// column, if one is declared.
func (s Schema) PrimaryColumnIndex() (int, bool) {
	for i, c := range s.Columns {
		if c.IsPrimary {
			return i, true
		}
	}
	return -1, false
}

// AutoincrementColumnIndex returns the index of the table's single
// autoincrement column, if one is declared.
func (s Schema) AutoincrementColumnIndex() (int, bool) {
	for i, c := range s.Columns {
		if c.IsAutoincrement {
			return i, true
		}
	}
	return -1, false
}
