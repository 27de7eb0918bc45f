// Package rowstore is the boundary to the spreadsheet-like persistence
// service: named collections of positional rows whose first row is a header.
//
// Positions are 1-based and the header occupies position 1, so the first data
// row lives at position 2. Deleting a row shifts every later row up by one;
// positions must never be cached across a mutation.
package rowstore

import (
	"context"
	"errors"
	"fmt"
)

type Collection string

const (
	Categories Collection = "categories"
	Types      Collection = "types"
	Phones     Collection = "phones"
	Products   Collection = "products"
)

// Collections lists every collection in load order.
var Collections = []Collection{Categories, Types, Phones, Products}

// Headers holds the canonical column order of each collection.
var Headers = map[Collection][]string{
	Categories: {"id", "name"},
	Types:      {"id", "name"},
	Phones:     {"id", "typeId", "name"},
	Products:   {"id", "name", "categoryId", "typeId", "phoneId", "color", "stock", "image"},
}

// FirstDataRow is the position of the first row after the header.
const FirstDataRow = 2

var (
	ErrRowNotFound       = errors.New("row not found")
	ErrUnknownCollection = errors.New("unknown collection")
)

type Row struct {
	Index  int
	Values []string
}

type Table struct {
	Header []string
	Rows   []Row
}

// Column returns the position of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Record maps a row onto the header. Missing trailing cells read as "".
func (t *Table) Record(r Row) map[string]string {
	rec := make(map[string]string, len(t.Header))
	for i, h := range t.Header {
		if i < len(r.Values) {
			rec[h] = r.Values[i]
		} else {
			rec[h] = ""
		}
	}
	return rec
}

type Store interface {
	Read(ctx context.Context, c Collection) (*Table, error)
	Append(ctx context.Context, c Collection, values []string) error
	Update(ctx context.Context, c Collection, index int, values []string) error
	Delete(ctx context.Context, c Collection, index int) error
	EnsureHeader(ctx context.Context, c Collection, header []string) error
}

// Init writes the canonical header to every empty collection.
func Init(ctx context.Context, s Store) error {
	for _, c := range Collections {
		if err := s.EnsureHeader(ctx, c, Headers[c]); err != nil {
			return fmt.Errorf("init %s: %w", c, err)
		}
	}
	return nil
}

func Valid(c Collection) bool {
	_, ok := Headers[c]
	return ok
}
