// internal/engine/executor.go
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/coredbio/coredb/internal/storage"
)

// Database is the executor: it owns the data directory's catalog and
// dispatches typed Commands against the heap files underneath it.
//
// Execute is not re-entrant. Command execution is serialized by mu, per
// this engine's single-threaded concurrency model: any external caller
// (a REPL, a TCP server handling many connections) must treat one call to
// Execute as an atomic unit and must not issue a second call concurrently
// expecting interleaving with the first.
type Database struct {
	dataDir string
	catalog *storage.Catalog
	mu      sync.Mutex
}

// Open prepares a database rooted at dataDir, creating the directory and
// loading (or starting) its catalog. Failing to create the data directory
// is one of this engine's two fatal conditions.
func Open(dataDir string) *Database {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		panic(fmt.Sprintf("open database: create data dir %s: %v", dataDir, err))
	}
	return &Database{
		dataDir: dataDir,
		catalog: storage.LoadOrCreateCatalog(filepath.Join(dataDir, "catalog.yaml")),
	}
}

func (db *Database) heapPath(table string) string {
	return filepath.Join(db.dataDir, table+".heap")
}

// Execute runs a single Command to completion under the executor's lock.
func (db *Database) Execute(cmd Command) (Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	switch c := cmd.(type) {
	case CreateTable:
		return db.createTable(c)
	case DropTable:
		return db.dropTable(c)
	case Insert:
		return db.insert(c)
	case Select:
		return db.selectCmd(c)
	case Update:
		return db.update(c)
	case Delete:
		return db.delete(c)
	default:
		return Result{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (db *Database) createTable(c CreateTable) (Result, error) {
	if _, exists := db.catalog.Get(c.Table); exists {
		return Result{}, fmt.Errorf("Table %s already exists", c.Table)
	}
	columns := make([]storage.Column, len(c.Columns))
	for i, cs := range c.Columns {
		columns[i] = storage.Column{
			Name:            cs.Name,
			Type:            cs.Type,
			IsPrimary:       cs.IsPrimary,
			IsAutoincrement: cs.IsAutoincrement,
		}
	}
	schema := storage.Schema{TableName: c.Table, Columns: columns}
	if err := db.catalog.AddTable(schema); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Table %s created.", c.Table)}, nil
}

func (db *Database) dropTable(c DropTable) (Result, error) {
	if _, exists := db.catalog.Get(c.Table); !exists {
		return Result{}, fmt.Errorf("Table %s does not exist", c.Table)
	}
	db.catalog.Remove(c.Table)
	if err := os.Remove(db.heapPath(c.Table)); err != nil && !os.IsNotExist(err) {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Table %s dropped.", c.Table)}, nil
}

func (db *Database) insert(c Insert) (Result, error) {
	schema, ok := db.catalog.Get(c.Table)
	if !ok {
		return Result{}, fmt.Errorf("Table %s not found", c.Table)
	}
	table, err := storage.OpenTable(db.heapPath(c.Table), schema)
	if err != nil {
		return Result{}, err
	}
	defer table.Close()

	prepared, err := prepareInsertRow(schema, db.catalog, c.Row)
	if err != nil {
		return Result{}, err
	}
	if err := table.InsertRow(prepared); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Inserted 1 row : %s", prepared.DebugString())}, nil
}

// prepareInsertRow applies the autoincrement arity rule (accept either a
// full-arity row, whose autoincrement value is overwritten with the next
// sequence value, or an arity N-1 row missing it, in which case the next
// sequence value is spliced in) and then type-checks every field against
// its column.
func prepareInsertRow(schema storage.Schema, catalog *storage.Catalog, row storage.Row) (storage.Row, error) {
	cols := schema.Columns
	prepared := row.Clone()

	if autoIdx, hasAuto := schema.AutoincrementColumnIndex(); hasAuto {
		switch len(row) {
		case len(cols):
			prepared[autoIdx] = storage.IntegerField(catalog.NextID(schema.TableName))
		case len(cols) - 1:
			nextID := catalog.NextID(schema.TableName)
			prepared = make(storage.Row, 0, len(cols))
			prepared = append(prepared, row[:autoIdx]...)
			prepared = append(prepared, storage.IntegerField(nextID))
			prepared = append(prepared, row[autoIdx:]...)
		default:
			return nil, fmt.Errorf("Column count mismatch for table %s", schema.TableName)
		}
	}

	if len(prepared) != len(cols) {
		return nil, fmt.Errorf("Table %s expects %d columns, but %d were provided", schema.TableName, len(cols), len(prepared))
	}
	for i, col := range cols {
		if !prepared[i].Matches(col.Type) {
			return nil, fmt.Errorf("Type mismatch for column '%s': expected %s", col.Name, col.Type)
		}
	}
	return prepared, nil
}

func (db *Database) selectCmd(c Select) (Result, error) {
	schema, ok := db.catalog.Get(c.Table)
	if !ok {
		return Result{}, fmt.Errorf("Table %s not found", c.Table)
	}
	table, err := storage.OpenTable(db.heapPath(c.Table), schema)
	if err != nil {
		return Result{}, err
	}
	defer table.Close()

	// Index fast path: an unjoined equality filter on the primary-key
	// column is answered directly from the in-memory index.
	if c.Join == nil && c.Filter != nil && c.Filter.Operator == OpEq {
		if pkIdx, hasPK := schema.PrimaryColumnIndex(); hasPK && schema.Columns[pkIdx].Name == c.Filter.Column {
			ps, found := table.Index().Get(c.Filter.Value.String())
			if !found {
				return Result{Message: "No rows found."}, nil
			}
			row, err := table.GetRow(ps.Page, ps.Slot)
			if err != nil {
				return Result{}, err
			}
			return Result{IsData: true, Columns: columnNames(schema), Rows: []storage.Row{row}}, nil
		}
	}

	rows, err := table.ScanRows()
	if err != nil {
		return Result{}, err
	}
	if c.Filter != nil {
		rows = filterRows(rows, schema, *c.Filter)
	}
	columns := columnNames(schema)

	if c.Join != nil {
		rightSchema, ok := db.catalog.Get(c.Join.RightTable)
		if !ok {
			return Result{}, fmt.Errorf("Table %s not found", c.Join.RightTable)
		}
		rightTable, err := storage.OpenTable(db.heapPath(c.Join.RightTable), rightSchema)
		if err != nil {
			return Result{}, err
		}
		defer rightTable.Close()

		leftIdx, ok := schema.ColumnIndex(c.Join.LeftColumn)
		if !ok {
			return Result{}, fmt.Errorf("Column %s not found", c.Join.LeftColumn)
		}
		rightIdx, ok := rightSchema.ColumnIndex(c.Join.RightColumn)
		if !ok {
			return Result{}, fmt.Errorf("Column %s not found", c.Join.RightColumn)
		}
		rightRows, err := rightTable.ScanRows()
		if err != nil {
			return Result{}, err
		}

		var joined []storage.Row
		for _, lr := range rows {
			for _, rr := range rightRows {
				if lr[leftIdx].Equal(rr[rightIdx]) {
					combined := make(storage.Row, 0, len(lr)+len(rr))
					combined = append(combined, lr...)
					combined = append(combined, rr...)
					joined = append(joined, combined)
				}
			}
		}
		rows = joined
		columns = append(columns, columnNames(rightSchema)...)
	}

	if len(rows) == 0 {
		return Result{Message: "No rows found."}, nil
	}
	return Result{IsData: true, Columns: columns, Rows: rows}, nil
}

func (db *Database) update(c Update) (Result, error) {
	schema, ok := db.catalog.Get(c.Table)
	if !ok {
		return Result{}, fmt.Errorf("Table %s not found", c.Table)
	}
	for _, assign := range c.Assignments {
		idx, ok := schema.ColumnIndex(assign.Column)
		if !ok {
			return Result{}, fmt.Errorf("Column %s not found", assign.Column)
		}
		if schema.Columns[idx].IsPrimary {
			return Result{}, fmt.Errorf("Updating Primary Key is not allowed")
		}
	}

	table, err := storage.OpenTable(db.heapPath(c.Table), schema)
	if err != nil {
		return Result{}, err
	}
	defer table.Close()

	locations, err := table.ScanLocations()
	if err != nil {
		return Result{}, err
	}

	updated := 0
	for _, loc := range locations {
		if c.Filter != nil && !matchesFilter(loc.Row, schema, *c.Filter) {
			continue
		}
		newRow := loc.Row.Clone()
		for _, assign := range c.Assignments {
			idx, _ := schema.ColumnIndex(assign.Column)
			newRow[idx] = assign.Value
		}
		if err := table.UpdateRow(loc.Page, loc.Slot, newRow); err != nil {
			return Result{}, err
		}
		updated++
	}
	return Result{Message: fmt.Sprintf("Updated %d rows.", updated)}, nil
}

func (db *Database) delete(c Delete) (Result, error) {
	schema, ok := db.catalog.Get(c.Table)
	if !ok {
		return Result{}, fmt.Errorf("Table %s not found", c.Table)
	}
	table, err := storage.OpenTable(db.heapPath(c.Table), schema)
	if err != nil {
		return Result{}, err
	}
	defer table.Close()

	locations, err := table.ScanLocations()
	if err != nil {
		return Result{}, err
	}
	pkIdx, hasPK := schema.PrimaryColumnIndex()

	deleted := 0
	for _, loc := range locations {
		if c.Filter != nil && !matchesFilter(loc.Row, schema, *c.Filter) {
			continue
		}
		if err := table.DeleteRow(loc.Page, loc.Slot); err != nil {
			return Result{}, err
		}
		if hasPK {
			table.Index().Remove(loc.Row[pkIdx].String())
		}
		deleted++
	}
	return Result{Message: fmt.Sprintf("Deleted %d rows.", deleted)}, nil
}

func columnNames(schema storage.Schema) []string {
	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	return names
}
