package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/datasource"
)

// Column is one entry of a table's ordered column list.
type Column struct {
	Name string
	Type Type
}

// Schema is a table's ordered column list. Insertion order is the
// schema order and is preserved through codegen.
type Schema struct {
	Table   string
	Columns []Column

	index map[string]int
}

// NewSchema builds a Schema and its name index in one step.
func NewSchema(table string, columns ...Column) *Schema {
	s := &Schema{Table: table, Columns: columns}
	s.reindex()
	return s
}

func (s *Schema) reindex() {
	s.index = make(map[string]int, len(s.Columns))
	for i, c := range s.Columns {
		s.index[c.Name] = i
	}
}

// Lookup returns the column's declared type and whether it exists.
func (s *Schema) Lookup(column string) (Type, bool) {
	if s.index == nil {
		s.reindex()
	}
	i, ok := s.index[column]
	if !ok {
		return 0, false
	}
	return s.Columns[i].Type, true
}

// Has reports whether the schema declares column.
func (s *Schema) Has(column string) bool {
	_, ok := s.Lookup(column)
	return ok
}

// Catalog is the read-only, compilation-shared mapping from table name
// to schema and data-source handle. It is safe to share a single
// *Catalog across concurrent compilations: nothing in it is mutated
// after Load/Register returns.
type Catalog struct {
	schemas map[string]*Schema
	order   []string
	sources map[string]datasource.Handle
}

// New returns an empty catalog ready for Register calls.
func New() *Catalog {
	return &Catalog{
		schemas: make(map[string]*Schema),
		sources: make(map[string]datasource.Handle),
	}
}

// Register adds one table to the catalog. Registering the same table
// name twice replaces the prior entry; the catalog loader never does
// this, but callers assembling a catalog programmatically may.
func (c *Catalog) Register(schema *Schema, source datasource.Handle) {
	if _, exists := c.schemas[schema.Table]; !exists {
		c.order = append(c.order, schema.Table)
	}
	c.schemas[schema.Table] = schema
	c.sources[schema.Table] = source
}

// Schema returns the named table's schema, or UnknownTable.
func (c *Catalog) Schema(table string) (*Schema, error) {
	s, ok := c.schemas[table]
	if !ok {
		return nil, compileerr.New(compileerr.UnknownTable, "unknown table %q", table)
	}
	return s, nil
}

// Source returns the named table's data-source handle.
func (c *Catalog) Source(table string) (datasource.Handle, error) {
	h, ok := c.sources[table]
	if !ok {
		return nil, compileerr.New(compileerr.UnknownTable, "unknown table %q", table)
	}
	return h, nil
}

// Tables returns table names in registration order.
func (c *Catalog) Tables() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// schemaDoc is the on-disk schema document shape:
//
//	{ "<table>": { "columns": [ {"name": "...", "type": "..."}, ... ] } }
type schemaDoc map[string]struct {
	Columns []struct {
		Name string `json:"name" yaml:"name"`
		Type string `json:"type" yaml:"type"`
	} `json:"columns" yaml:"columns"`
}

// LoadSchema reads a catalog schema document through afs (so the
// source may be a local path, an in-memory URL, or any other afs
// backend) and registers each table with a StaticHandle named for its
// table — callers that need a richer handle (SQL/Redis/Mongo) should
// call Register afterward to replace it. A ".yaml"/".yml" URL is parsed
// as the equivalent YAML shape; anything else is parsed as JSON.
func LoadSchema(ctx context.Context, fs afs.Service, url string) (*Catalog, error) {
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("load schema %q: %w", url, err)
	}

	var doc schemaDoc
	if isYAML(url) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse schema yaml %q: %w", url, err)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse schema json %q: %w", url, err)
		}
	}

	cat := New()
	for table, def := range doc {
		cols := make([]Column, 0, len(def.Columns))
		for _, c := range def.Columns {
			cols = append(cols, Column{Name: c.Name, Type: ResolveSchemaType(c.Type)})
		}
		cat.Register(NewSchema(table, cols...), datasource.StaticHandle(table))
	}
	return cat, nil
}

func isYAML(url string) bool {
	for _, suffix := range []string{".yaml", ".yml"} {
		if len(url) >= len(suffix) && url[len(url)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}
