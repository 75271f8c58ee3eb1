// internal/storage/catalog.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// catalogDoc is the human-readable document persisted to disk: every
// table's schema plus its autoincrement counter, as one YAML file.
type catalogDoc struct {
	Tables    map[string]catalogSchema `yaml:"tables"`
	Sequences map[string]int32         `yaml:"sequences"`
}

type catalogSchema struct {
	Columns []catalogColumn `yaml:"columns"`
}

type catalogColumn struct {
	Name            string `yaml:"name"`
	Type            string `yaml:"type"`
	IsPrimary       bool   `yaml:"primary,omitempty"`
	IsAutoincrement bool   `yaml:"autoincrement,omitempty"`
}

// Catalog is the durable table-name -> Schema map plus a per-table
// autoincrement counter. It is rewritten in full on every mutation.
type Catalog struct {
	path      string
	mu        sync.Mutex
	tables    map[string]Schema
	sequences map[string]int32
}

// LoadOrCreateCatalog reads an existing catalog file, or starts an empty
// one if none exists yet. A malformed file is treated as empty rather
// than fatal; only a failed *save* is a fatal condition.
func LoadOrCreateCatalog(path string) *Catalog {
	c := &Catalog{
		path:      path,
		tables:    make(map[string]Schema),
		sequences: make(map[string]int32),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return c
	}
	for name, cs := range doc.Tables {
		cols := make([]Column, 0, len(cs.Columns))
		for _, cc := range cs.Columns {
			dt, err := parseTypeTag(cc.Type)
			if err != nil {
				continue
			}
			cols = append(cols, Column{
				Name:            cc.Name,
				Type:            dt,
				IsPrimary:       cc.IsPrimary,
				IsAutoincrement: cc.IsAutoincrement,
			})
		}
		c.tables[name] = Schema{TableName: name, Columns: cols}
	}
	for name, seq := range doc.Sequences {
		c.sequences[name] = seq
	}
	return c
}

func typeTag(d DataType) string {
	switch d.Kind {
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindText:
		return fmt.Sprintf("text:%d", d.MaxLen)
	}
	return ""
}

func parseTypeTag(tag string) (DataType, error) {
	switch {
	case tag == "integer":
		return Integer(), nil
	case tag == "boolean":
		return Boolean(), nil
	case strings.HasPrefix(tag, "text:"):
		n, err := strconv.Atoi(strings.TrimPrefix(tag, "text:"))
		if err != nil {
			return DataType{}, fmt.Errorf("bad text length in %q: %w", tag, err)
		}
		return Text(n), nil
	}
	return DataType{}, fmt.Errorf("unknown column type %q", tag)
}

// Get returns a clone of a table's schema so callers can't mutate the
// catalog's own copy.
func (c *Catalog) Get(table string) (Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.tables[table]
	if !ok {
		return Schema{}, false
	}
	return s.Clone(), true
}

// AddTable registers a new table's schema and persists the catalog.
func (c *Catalog) AddTable(schema Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tables[schema.TableName]; exists {
		return fmt.Errorf("Table %s already exists", schema.TableName)
	}
	c.tables[schema.TableName] = schema.Clone()
	c.sequences[schema.TableName] = 0
	c.saveLocked()
	return nil
}

// Remove drops a table's schema and sequence counter and persists the
// catalog.
func (c *Catalog) Remove(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tables, table)
	delete(c.sequences, table)
	c.saveLocked()
}

// NextID increments and returns a table's autoincrement counter,
// persisting the new value immediately.
func (c *Catalog) NextID(table string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.sequences[table] + 1
	c.sequences[table] = next
	c.saveLocked()
	return next
}

// saveLocked rewrites the catalog file in full. A failure here is one of
// the two fatal conditions in this engine: callers cannot meaningfully
// continue once the catalog can no longer be trusted to persist.
func (c *Catalog) saveLocked() {
	doc := catalogDoc{
		Tables:    make(map[string]catalogSchema, len(c.tables)),
		Sequences: c.sequences,
	}
	for name, schema := range c.tables {
		cols := make([]catalogColumn, len(schema.Columns))
		for i, col := range schema.Columns {
			cols[i] = catalogColumn{
				Name:            col.Name,
				Type:            typeTag(col.Type),
				IsPrimary:       col.IsPrimary,
				IsAutoincrement: col.IsAutoincrement,
			}
		}
		doc.Tables[name] = catalogSchema{Columns: cols}
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		panic(fmt.Sprintf("marshal catalog: %v", err))
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		panic(fmt.Sprintf("create catalog directory: %v", err))
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		panic(fmt.Sprintf("save catalog: %v", err))
	}
	if err := os.Rename(tmp, c.path); err != nil {
		panic(fmt.Sprintf("save catalog: %v", err))
	}
}
