package storage

import (
	"path/filepath"
	"testing"
)

func usersSchema() Schema {
	return Schema{
		TableName: "users",
		Columns: []Column{
			{Name: "id", Type: Integer(), IsPrimary: true},
			{Name: "name", Type: Text(16)},
		},
	}
}

func TestInsertAndScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.heap")
	table, err := OpenTable(path, usersSchema())
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	defer table.Close()

	if err := table.InsertRow(Row{IntegerField(1), TextField("alice")}); err != nil {
		t.Fatalf("insert 1: %v", err)
	}
	if err := table.InsertRow(Row{IntegerField(2), TextField("bob")}); err != nil {
		t.Fatalf("insert 2: %v", err)
	}

	rows, err := table.ScanRows()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1].Str != "alice" || rows[1][1].Str != "bob" {
		t.Fatalf("unexpected scan order: %+v", rows)
	}
}

func TestInsertRejectsDuplicatePrimaryKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.heap")
	table, err := OpenTable(path, usersSchema())
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	defer table.Close()

	if err := table.InsertRow(Row{IntegerField(1), TextField("alice")}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := table.InsertRow(Row{IntegerField(1), TextField("eve")}); err == nil {
		t.Fatalf("expected duplicate primary key to be rejected")
	}

	rows, err := table.ScanRows()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("failed insert should not have left a row behind, got %d rows", len(rows))
	}
}

func TestDeleteFreesSlotForReuse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.heap")
	table, err := OpenTable(path, usersSchema())
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	defer table.Close()

	table.InsertRow(Row{IntegerField(1), TextField("alice")})
	table.InsertRow(Row{IntegerField(2), TextField("bob")})

	locations, _ := table.ScanLocations()
	if err := table.DeleteRow(locations[0].Page, locations[0].Slot); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rows, _ := table.ScanRows()
	if len(rows) != 1 || rows[0][1].Str != "bob" {
		t.Fatalf("expected only bob to remain, got %+v", rows)
	}

	// Re-inserting should land in the freed first slot.
	table.InsertRow(Row{IntegerField(3), TextField("carol")})
	locations, _ = table.ScanLocations()
	if locations[0].Page != 0 || locations[0].Slot != 0 {
		t.Fatalf("expected new row to reuse freed slot 0, landed at %+v", locations[0])
	}
}

func TestIndexRebuildsOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.heap")
	schema := usersSchema()

	table, err := OpenTable(path, schema)
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	table.InsertRow(Row{IntegerField(1), TextField("alice")})
	table.Close()

	reopened, err := OpenTable(path, schema)
	if err != nil {
		t.Fatalf("reopen table: %v", err)
	}
	defer reopened.Close()

	ps, found := reopened.Index().Get("1")
	if !found {
		t.Fatalf("expected index to be rebuilt with key 1 after reopen")
	}
	row, err := reopened.GetRow(ps.Page, ps.Slot)
	if err != nil {
		t.Fatalf("get row: %v", err)
	}
	if row[1].Str != "alice" {
		t.Fatalf("expected alice at rebuilt index location, got %+v", row)
	}
}
