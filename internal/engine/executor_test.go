package engine

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/coredbio/coredb/internal/storage"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "data"))
}

func TestCreateInsertSelectRoundTrip(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.Execute(CreateTable{
		Table: "users",
		Columns: []ColumnSpec{
			{Name: "id", Type: storage.Integer(), IsPrimary: true, IsAutoincrement: true},
			{Name: "name", Type: storage.Text(16)},
		},
	}); err != nil {
		t.Fatalf("create table: %v", err)
	}

	if _, err := db.Execute(Insert{Table: "users", Row: storage.Row{storage.TextField("alice")}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	result, err := db.Execute(Select{Table: "users"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !result.IsData || len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %+v", result)
	}
	if result.Rows[0][0].Int != 1 {
		t.Fatalf("expected autoincrement id 1, got %+v", result.Rows[0])
	}
	if result.Rows[0][1].Str != "alice" {
		t.Fatalf("expected name alice, got %+v", result.Rows[0])
	}
}

func TestCreateTableAlreadyExists(t *testing.T) {
	db := newTestDB(t)
	cmd := CreateTable{Table: "t", Columns: []ColumnSpec{{Name: "v", Type: storage.Integer()}}}
	if _, err := db.Execute(cmd); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := db.Execute(cmd); err == nil {
		t.Fatalf("expected second create of same table to fail")
	}
}

func TestSelectNotFoundTable(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Execute(Select{Table: "ghost"}); err == nil {
		t.Fatalf("expected error selecting from a table that doesn't exist")
	}
}

func TestDuplicatePrimaryKeyRejected(t *testing.T) {
	db := newTestDB(t)
	db.Execute(CreateTable{Table: "t", Columns: []ColumnSpec{
		{Name: "id", Type: storage.Integer(), IsPrimary: true},
		{Name: "v", Type: storage.Integer()},
	}})
	if _, err := db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(1), storage.IntegerField(10)}}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(1), storage.IntegerField(99)}}); err == nil {
		t.Fatalf("expected duplicate primary key insert to fail")
	}
}

func TestIndexedEqualityLookup(t *testing.T) {
	db := newTestDB(t)
	db.Execute(CreateTable{Table: "t", Columns: []ColumnSpec{
		{Name: "id", Type: storage.Integer(), IsPrimary: true},
		{Name: "v", Type: storage.Text(8)},
	}})
	db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(1), storage.TextField("a")}})
	db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(2), storage.TextField("b")}})

	result, err := db.Execute(Select{Table: "t", Filter: &Filter{Column: "id", Operator: OpEq, Value: storage.IntegerField(2)}})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0][1].Str != "b" {
		t.Fatalf("expected indexed lookup to find row b, got %+v", result)
	}
}

func TestUpdateRejectsPrimaryKeyColumn(t *testing.T) {
	db := newTestDB(t)
	db.Execute(CreateTable{Table: "t", Columns: []ColumnSpec{{Name: "id", Type: storage.Integer(), IsPrimary: true}}})
	db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(1)}})

	_, err := db.Execute(Update{
		Table:       "t",
		Assignments: []Assignment{{Column: "id", Value: storage.IntegerField(2)}},
	})
	if err == nil {
		t.Fatalf("expected update of primary key column to be rejected")
	}
}

func TestUpdateAndDeleteWithFilter(t *testing.T) {
	db := newTestDB(t)
	db.Execute(CreateTable{Table: "t", Columns: []ColumnSpec{
		{Name: "id", Type: storage.Integer(), IsPrimary: true},
		{Name: "active", Type: storage.Boolean()},
	}})
	db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(1), storage.BooleanField(false)}})
	db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(2), storage.BooleanField(false)}})

	result, err := db.Execute(Update{
		Table:       "t",
		Assignments: []Assignment{{Column: "active", Value: storage.BooleanField(true)}},
		Filter:      &Filter{Column: "id", Operator: OpEq, Value: storage.IntegerField(1)},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(result.Message, "Updated 1") {
		t.Fatalf("expected update message to report 1 row, got %q", result.Message)
	}

	result, err = db.Execute(Delete{Table: "t", Filter: &Filter{Column: "active", Operator: OpEq, Value: storage.BooleanField(false)}})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(result.Message, "Deleted 1") {
		t.Fatalf("expected delete message to report 1 row, got %q", result.Message)
	}

	remaining, err := db.Execute(Select{Table: "t"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(remaining.Rows) != 1 || !remaining.Rows[0][1].Bool {
		t.Fatalf("expected only the active row to remain, got %+v", remaining)
	}
}

func TestInnerJoin(t *testing.T) {
	db := newTestDB(t)
	db.Execute(CreateTable{Table: "users", Columns: []ColumnSpec{
		{Name: "id", Type: storage.Integer(), IsPrimary: true},
		{Name: "name", Type: storage.Text(8)},
	}})
	db.Execute(CreateTable{Table: "orders", Columns: []ColumnSpec{
		{Name: "id", Type: storage.Integer(), IsPrimary: true},
		{Name: "uid", Type: storage.Integer()},
	}})
	db.Execute(Insert{Table: "users", Row: storage.Row{storage.IntegerField(1), storage.TextField("alice")}})
	db.Execute(Insert{Table: "orders", Row: storage.Row{storage.IntegerField(100), storage.IntegerField(1)}})

	result, err := db.Execute(Select{
		Table: "users",
		Join:  &JoinSpec{RightTable: "orders", LeftColumn: "id", RightColumn: "uid"},
	})
	if err != nil {
		t.Fatalf("join select: %v", err)
	}
	if len(result.Rows) != 1 || len(result.Rows[0]) != 4 {
		t.Fatalf("expected one joined 4-column row, got %+v", result)
	}
	if result.Rows[0][1].Str != "alice" || result.Rows[0][2].Int != 100 {
		t.Fatalf("unexpected joined row content: %+v", result.Rows[0])
	}
}

func TestDropTable(t *testing.T) {
	db := newTestDB(t)
	db.Execute(CreateTable{Table: "t", Columns: []ColumnSpec{{Name: "v", Type: storage.Integer()}}})
	if _, err := db.Execute(DropTable{Table: "t"}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if _, err := db.Execute(Select{Table: "t"}); err == nil {
		t.Fatalf("expected select on dropped table to fail")
	}
	if _, err := db.Execute(DropTable{Table: "t"}); err == nil {
		t.Fatalf("expected dropping an already-dropped table to fail")
	}
}

func TestAutoincrementArityRules(t *testing.T) {
	db := newTestDB(t)
	db.Execute(CreateTable{Table: "t", Columns: []ColumnSpec{
		{Name: "id", Type: storage.Integer(), IsPrimary: true, IsAutoincrement: true},
		{Name: "v", Type: storage.Integer()},
	}})

	// arity N-1: autoincrement column omitted.
	if _, err := db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(100)}}); err != nil {
		t.Fatalf("arity N-1 insert: %v", err)
	}
	// arity N: caller supplies (and we override) the id.
	if _, err := db.Execute(Insert{Table: "t", Row: storage.Row{storage.IntegerField(999), storage.IntegerField(200)}}); err != nil {
		t.Fatalf("arity N insert: %v", err)
	}
	// any other arity is a mismatch.
	if _, err := db.Execute(Insert{Table: "t", Row: storage.Row{}}); err == nil {
		t.Fatalf("expected arity 0 insert to fail")
	}

	result, err := db.Execute(Select{Table: "t"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if result.Rows[0][0].Int != 1 || result.Rows[1][0].Int != 2 {
		t.Fatalf("expected sequential autoincrement ids 1,2, got %+v", result.Rows)
	}
}

func TestTypeMismatchRejected(t *testing.T) {
	db := newTestDB(t)
	db.Execute(CreateTable{Table: "t", Columns: []ColumnSpec{{Name: "v", Type: storage.Integer()}}})
	if _, err := db.Execute(Insert{Table: "t", Row: storage.Row{storage.TextField("not a number")}}); err == nil {
		t.Fatalf("expected type mismatch to be rejected")
	}
}
