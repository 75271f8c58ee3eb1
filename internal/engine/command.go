// internal/engine/command.go
package engine

import "github.com/coredbio/coredb/internal/storage"

// Operator is the set of comparison operators a Filter may apply.
type Operator int

const (
	OpEq Operator = iota
	OpNotEq
	OpGreaterThan
	OpLessThan
)

// ColumnSpec describes one column in a CREATE TABLE command.
type ColumnSpec struct {
	Name            string
	Type            storage.DataType
	IsPrimary       bool
	IsAutoincrement bool
}

// Filter is a single equality or inequality predicate against one column.
// The executor supports at most one Filter per Select/Update/Delete.
type Filter struct {
	Column   string
	Operator Operator
	Value    storage.Field
}

// JoinSpec names a single equi-join against one other table. Qualified
// identifiers ("orders.uid") have already been reduced to their last
// segment by the parser collaborator before reaching the executor.
type JoinSpec struct {
	RightTable  string
	LeftColumn  string
	RightColumn string
}

// Assignment is one column -> new value pair for an UPDATE command.
type Assignment struct {
	Column string
	Value  storage.Field
}

// Command is the typed intermediate representation the executor accepts.
// It is the only entry point into the core engine: nothing in
// internal/storage or internal/engine parses SQL text.
type Command interface {
	isCommand()
}

type CreateTable struct {
	Table   string
	Columns []ColumnSpec
}

type DropTable struct {
	Table string
}

type Insert struct {
	Table string
	Row   storage.Row
}

type Select struct {
	Table  string
	Filter *Filter
	Join   *JoinSpec
}

type Update struct {
	Table       string
	Assignments []Assignment
	Filter      *Filter
}

type Delete struct {
	Table  string
	Filter *Filter
}

func (CreateTable) isCommand() {}
func (DropTable) isCommand()   {}
func (Insert) isCommand()      {}
func (Select) isCommand()      {}
func (Update) isCommand()      {}
func (Delete) isCommand()      {}

// Result is what executing a Command produces: either a plain message
// (CreateTable/DropTable/Insert/Update/Delete) or a row set (Select).
type Result struct {
	Message string
	IsData  bool
	Columns []string
	Rows    []storage.Row
}
