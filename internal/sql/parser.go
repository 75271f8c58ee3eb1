// internal/sql/parser.go
//
// Package sql is the text-to-Command collaborator: it is the only place
// in this module that understands SQL syntax. It never touches a heap
// file, a catalog, or an index directly; everything it produces is an
// engine.Command for the executor to run.
//
// The grammar supported is deliberately small: CREATE TABLE, DROP TABLE,
// INSERT INTO, SELECT (with an optional single INNER JOIN and an
// optional single WHERE predicate), UPDATE ... SET ... WHERE, and
// DELETE FROM ... WHERE.
package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coredbio/coredb/internal/engine"
	"github.com/coredbio/coredb/internal/storage"
)

// Parse turns one SQL statement into a typed Command for the executor.
func Parse(input string) (engine.Command, error) {
	input = strings.TrimSpace(input)
	input = strings.TrimSuffix(input, ";")
	upper := strings.ToUpper(input)

	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
		return parseCreateTable(input)
	case strings.HasPrefix(upper, "DROP TABLE"):
		return parseDropTable(input)
	case strings.HasPrefix(upper, "INSERT INTO"):
		return parseInsert(input)
	case strings.HasPrefix(upper, "SELECT"):
		return parseSelect(input)
	case strings.HasPrefix(upper, "UPDATE"):
		return parseUpdate(input)
	case strings.HasPrefix(upper, "DELETE FROM"):
		return parseDelete(input)
	default:
		return nil, fmt.Errorf("unsupported statement: %s", input)
	}
}

func parseCreateTable(input string) (engine.Command, error) {
	rest := trimPrefixFold(input, "CREATE TABLE")
	openIdx := strings.Index(rest, "(")
	if openIdx == -1 {
		return nil, fmt.Errorf("syntax error: missing column list in CREATE TABLE")
	}
	tableName := strings.ToLower(strings.TrimSpace(rest[:openIdx]))

	body, err := balancedParen(rest[openIdx:])
	if err != nil {
		return nil, err
	}
	defs := splitTopLevel(body, ',')
	columns := make([]engine.ColumnSpec, 0, len(defs))
	for _, def := range defs {
		col, err := parseColumnDef(def)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return engine.CreateTable{Table: tableName, Columns: columns}, nil
}

func parseColumnDef(def string) (engine.ColumnSpec, error) {
	fields := strings.Fields(def)
	if len(fields) < 2 {
		return engine.ColumnSpec{}, fmt.Errorf("invalid column definition: %q", def)
	}
	dt, err := parseDataType(fields[1])
	if err != nil {
		return engine.ColumnSpec{}, err
	}

	spec := engine.ColumnSpec{Name: fields[0], Type: dt}
	rest := strings.ToUpper(strings.Join(fields[2:], " "))
	if strings.Contains(rest, "PRIMARY") {
		spec.IsPrimary = true
	}
	if strings.Contains(rest, "AUTOINCREMENT") || strings.Contains(rest, "AUTO_INCREMENT") {
		spec.IsAutoincrement = true
	}
	return spec, nil
}

func parseDataType(tok string) (storage.DataType, error) {
	upper := strings.ToUpper(tok)
	switch {
	case strings.HasPrefix(upper, "INT"):
		return storage.Integer(), nil
	case strings.HasPrefix(upper, "BOOL"):
		return storage.Boolean(), nil
	case strings.HasPrefix(upper, "VARCHAR"), strings.HasPrefix(upper, "TEXT"), strings.HasPrefix(upper, "CHAR"):
		open := strings.Index(tok, "(")
		closeIdx := strings.Index(tok, ")")
		if open == -1 || closeIdx == -1 || closeIdx < open {
			return storage.DataType{}, fmt.Errorf("text column %q needs a (length)", tok)
		}
		n, err := strconv.Atoi(strings.TrimSpace(tok[open+1 : closeIdx]))
		if err != nil {
			return storage.DataType{}, fmt.Errorf("invalid length in %q: %w", tok, err)
		}
		return storage.Text(n), nil
	default:
		return storage.DataType{}, fmt.Errorf("unsupported data type: %s", tok)
	}
}

func parseDropTable(input string) (engine.Command, error) {
	fields := strings.Fields(input)
	if len(fields) < 3 {
		return nil, fmt.Errorf("syntax error: DROP TABLE table_name")
	}
	return engine.DropTable{Table: strings.ToLower(fields[2])}, nil
}

func parseInsert(input string) (engine.Command, error) {
	rest := trimPrefixFold(input, "INSERT INTO")
	valuesIdx := findKeyword(rest, "VALUES")
	if valuesIdx == -1 {
		return nil, fmt.Errorf("missing VALUES in INSERT")
	}
	before := strings.TrimSpace(rest[:valuesIdx])
	after := strings.TrimSpace(rest[valuesIdx+len("VALUES"):])

	tableName := before
	if open := strings.Index(before, "("); open != -1 {
		tableName = before[:open]
	}
	fields := strings.Fields(tableName)
	if len(fields) == 0 {
		return nil, fmt.Errorf("missing table name in INSERT")
	}
	tableName = strings.ToLower(fields[0])

	body, err := balancedParen(after)
	if err != nil {
		return nil, err
	}
	litToks := splitTopLevel(body, ',')
	row := make(storage.Row, 0, len(litToks))
	for _, lit := range litToks {
		f, err := parseLiteral(strings.TrimSpace(lit))
		if err != nil {
			return nil, err
		}
		row = append(row, f)
	}
	return engine.Insert{Table: tableName, Row: row}, nil
}

func parseLiteral(tok string) (storage.Field, error) {
	if len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		return storage.TextField(tok[1 : len(tok)-1]), nil
	}
	switch strings.ToUpper(tok) {
	case "TRUE":
		return storage.BooleanField(true), nil
	case "FALSE":
		return storage.BooleanField(false), nil
	}
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return storage.Field{}, fmt.Errorf("invalid literal %q: %w", tok, err)
	}
	return storage.IntegerField(int32(n)), nil
}

func parseSelect(input string) (engine.Command, error) {
	rest := trimPrefixFold(input, "SELECT")
	rest = trimPrefixFold(rest, "*")
	rest = trimPrefixFold(rest, "FROM")

	joinIdx := findKeyword(rest, "INNER JOIN")
	whereIdx := findKeyword(rest, "WHERE")

	var tablePart, joinPart, wherePart string
	switch {
	case joinIdx != -1 && whereIdx != -1:
		tablePart, joinPart, wherePart = rest[:joinIdx], rest[joinIdx:whereIdx], rest[whereIdx+len("WHERE"):]
	case joinIdx != -1:
		tablePart, joinPart = rest[:joinIdx], rest[joinIdx:]
	case whereIdx != -1:
		tablePart, wherePart = rest[:whereIdx], rest[whereIdx+len("WHERE"):]
	default:
		tablePart = rest
	}

	fields := strings.Fields(tablePart)
	if len(fields) == 0 {
		return nil, fmt.Errorf("missing table name in SELECT")
	}
	sel := engine.Select{Table: strings.ToLower(fields[0])}

	if joinPart != "" {
		js, err := parseJoin(joinPart)
		if err != nil {
			return nil, err
		}
		sel.Join = js
	}
	if wherePart != "" {
		f, err := parseFilter(wherePart)
		if err != nil {
			return nil, err
		}
		sel.Filter = f
	}
	return sel, nil
}

func parseJoin(s string) (*engine.JoinSpec, error) {
	s = trimPrefixFold(s, "INNER JOIN")
	onIdx := findKeyword(s, "ON")
	if onIdx == -1 {
		return nil, fmt.Errorf("missing ON in INNER JOIN")
	}
	rightTable := strings.ToLower(strings.TrimSpace(s[:onIdx]))
	cond := strings.TrimSpace(s[onIdx+len("ON"):])

	parts := strings.SplitN(cond, "=", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid JOIN condition: %s", cond)
	}
	return &engine.JoinSpec{
		RightTable:  rightTable,
		LeftColumn:  lastSegment(strings.TrimSpace(parts[0])),
		RightColumn: lastSegment(strings.TrimSpace(parts[1])),
	}, nil
}

func parseFilter(s string) (*engine.Filter, error) {
	toks := tokenizeExpr(strings.TrimSpace(s))
	if len(toks) != 3 {
		return nil, fmt.Errorf("unsupported WHERE clause: %s", s)
	}
	op, err := parseOperator(toks[1])
	if err != nil {
		return nil, err
	}
	val, err := parseLiteral(toks[2])
	if err != nil {
		return nil, err
	}
	return &engine.Filter{Column: lastSegment(toks[0]), Operator: op, Value: val}, nil
}

func parseOperator(tok string) (engine.Operator, error) {
	switch tok {
	case "=":
		return engine.OpEq, nil
	case "!=", "<>":
		return engine.OpNotEq, nil
	case ">":
		return engine.OpGreaterThan, nil
	case "<":
		return engine.OpLessThan, nil
	}
	return 0, fmt.Errorf("unsupported operator: %s", tok)
}

func parseUpdate(input string) (engine.Command, error) {
	rest := trimPrefixFold(input, "UPDATE")
	setIdx := findKeyword(rest, "SET")
	if setIdx == -1 {
		return nil, fmt.Errorf("missing SET in UPDATE")
	}
	tableName := strings.ToLower(strings.TrimSpace(rest[:setIdx]))
	after := rest[setIdx+len("SET"):]

	whereIdx := findKeyword(after, "WHERE")
	var assignPart, wherePart string
	if whereIdx != -1 {
		assignPart, wherePart = after[:whereIdx], after[whereIdx+len("WHERE"):]
	} else {
		assignPart = after
	}

	assignToks := splitTopLevel(assignPart, ',')
	assignments := make([]engine.Assignment, 0, len(assignToks))
	for _, tok := range assignToks {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid assignment: %s", tok)
		}
		val, err := parseLiteral(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, engine.Assignment{
			Column: strings.TrimSpace(kv[0]),
			Value:  val,
		})
	}

	upd := engine.Update{Table: tableName, Assignments: assignments}
	if wherePart != "" {
		f, err := parseFilter(wherePart)
		if err != nil {
			return nil, err
		}
		upd.Filter = f
	}
	return upd, nil
}

func parseDelete(input string) (engine.Command, error) {
	rest := trimPrefixFold(input, "DELETE FROM")
	whereIdx := findKeyword(rest, "WHERE")

	var tablePart, wherePart string
	if whereIdx != -1 {
		tablePart, wherePart = rest[:whereIdx], rest[whereIdx+len("WHERE"):]
	} else {
		tablePart = rest
	}
	fields := strings.Fields(tablePart)
	if len(fields) == 0 {
		return nil, fmt.Errorf("missing table name in DELETE")
	}
	del := engine.Delete{Table: strings.ToLower(fields[0])}
	if wherePart != "" {
		f, err := parseFilter(wherePart)
		if err != nil {
			return nil, err
		}
		del.Filter = f
	}
	return del, nil
}
