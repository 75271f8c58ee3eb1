// internal/storage/table.go
package storage

import "fmt"

// RowLocation pairs a decoded row with the (page, slot) it was read from,
// for callers (update/delete) that need to write back to the same slot.
type RowLocation struct {
	Page int
	Slot int
	Row  Row
}

// Table composes a Pager over one heap file with a cloned Schema and an
// ephemeral PrimaryIndex, rebuilt fresh on every open.
type Table struct {
	pager  *Pager
	schema Schema
	index  *PrimaryIndex
}

// OpenTable opens (creating if necessary) the heap file for a table and
// warms up its primary-key index with a full scan.
func OpenTable(path string, schema Schema) (*Table, error) {
	pager, err := OpenPager(path)
	if err != nil {
		return nil, err
	}
	t := &Table{pager: pager, schema: schema.Clone(), index: NewPrimaryIndex()}
	if err := t.LoadIndex(); err != nil {
		pager.Close()
		return nil, err
	}
	return t, nil
}

// Close releases the table's underlying heap file handle.
func (t *Table) Close() error {
	return t.pager.Close()
}

// Schema returns the table's schema.
func (t *Table) Schema() Schema {
	return t.schema
}

// Index exposes the in-memory primary-key index for callers (e.g. the
// executor's fast-path lookups and delete's key removal).
func (t *Table) Index() *PrimaryIndex {
	return t.index
}

// LoadIndex rebuilds the primary-key index from a full scan of the heap
// file. Tables without a primary-key column get an empty index.
func (t *Table) LoadIndex() error {
	t.index = NewPrimaryIndex()
	pkIdx, hasPK := t.schema.PrimaryColumnIndex()
	if !hasPK {
		return nil
	}
	rowSize := t.schema.RowSize()
	maxSlots := MaxSlots(rowSize)
	for pageIdx := 0; pageIdx < t.pager.NumPages(); pageIdx++ {
		page, err := t.pager.ReadPage(pageIdx)
		if err != nil {
			return err
		}
		for slot := 0; slot < maxSlots; slot++ {
			if !page.IsSlotFull(slot) {
				continue
			}
			row := DeserializeRow(page.ReadRow(slot, rowSize), t.schema)
			key := row[pkIdx].String()
			// Duplicates are impossible in a well-formed heap file; ignore
			// rather than fail the whole rebuild if one somehow exists.
			_ = t.index.Insert(key, PageSlot{Page: pageIdx, Slot: slot})
		}
	}
	return nil
}

// InsertRow finds the first free slot (scanning pages, then slots, in
// ascending order) and writes row into it. If the schema has a
// primary-key column, the key is inserted into the index before the page
// is mutated, so a duplicate-key error leaves the page untouched.
func (t *Table) InsertRow(row Row) error {
	rowSize := t.schema.RowSize()
	maxSlots := MaxSlots(rowSize)

	pageIdx, slot, page, err := t.findFreeSlot(maxSlots)
	if err != nil {
		return err
	}

	if pkIdx, hasPK := t.schema.PrimaryColumnIndex(); hasPK {
		key := row[pkIdx].String()
		if err := t.index.Insert(key, PageSlot{Page: pageIdx, Slot: slot}); err != nil {
			return fmt.Errorf("duplicate primary key %q", key)
		}
	}

	data := SerializeRow(row, t.schema)
	page.SetSlot(slot, true)
	page.WriteRow(slot, rowSize, data)
	return t.pager.WritePage(pageIdx, page)
}

func (t *Table) findFreeSlot(maxSlots int) (pageIdx, slot int, page *Page, err error) {
	numPages := t.pager.NumPages()
	for pageIdx = 0; pageIdx < numPages; pageIdx++ {
		page, err = t.pager.ReadPage(pageIdx)
		if err != nil {
			return 0, 0, nil, err
		}
		for slot = 0; slot < maxSlots; slot++ {
			if !page.IsSlotFull(slot) {
				return pageIdx, slot, page, nil
			}
		}
	}
	return numPages, 0, NewPage(), nil
}

// ScanRows returns every live row in page-ascending, slot-ascending order.
func (t *Table) ScanRows() ([]Row, error) {
	locations, err := t.ScanLocations()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(locations))
	for i, loc := range locations {
		rows[i] = loc.Row
	}
	return rows, nil
}

// ScanLocations returns every live row together with its (page, slot),
// for callers that need to write updates or deletes back to the source.
func (t *Table) ScanLocations() ([]RowLocation, error) {
	rowSize := t.schema.RowSize()
	maxSlots := MaxSlots(rowSize)
	var out []RowLocation
	for pageIdx := 0; pageIdx < t.pager.NumPages(); pageIdx++ {
		page, err := t.pager.ReadPage(pageIdx)
		if err != nil {
			return nil, err
		}
		for slot := 0; slot < maxSlots; slot++ {
			if page.IsSlotFull(slot) {
				row := DeserializeRow(page.ReadRow(slot, rowSize), t.schema)
				out = append(out, RowLocation{Page: pageIdx, Slot: slot, Row: row})
			}
		}
	}
	return out, nil
}

// GetRow reads the row at a specific (page, slot).
func (t *Table) GetRow(pageIdx, slot int) (Row, error) {
	page, err := t.pager.ReadPage(pageIdx)
	if err != nil {
		return nil, err
	}
	rowSize := t.schema.RowSize()
	return DeserializeRow(page.ReadRow(slot, rowSize), t.schema), nil
}

// UpdateRow overwrites the row at (page, slot) in place.
func (t *Table) UpdateRow(pageIdx, slot int, row Row) error {
	page, err := t.pager.ReadPage(pageIdx)
	if err != nil {
		return err
	}
	rowSize := t.schema.RowSize()
	page.WriteRow(slot, rowSize, SerializeRow(row, t.schema))
	return t.pager.WritePage(pageIdx, page)
}

// DeleteRow clears the slot's liveness bit, leaving its bytes on disk
// until a future insert overwrites them.
func (t *Table) DeleteRow(pageIdx, slot int) error {
	page, err := t.pager.ReadPage(pageIdx)
	if err != nil {
		return err
	}
	page.SetSlot(slot, false)
	return t.pager.WritePage(pageIdx, page)
}
