package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
)

// Store keeps every collection as a slice of rows, header first.
type Store struct {
	mu   sync.RWMutex
	data map[rowstore.Collection][][]string
}

var _ rowstore.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: make(map[rowstore.Collection][][]string)}
}

func (s *Store) Read(ctx context.Context, c rowstore.Collection) (*rowstore.Table, error) {
	if !rowstore.Valid(c) {
		return nil, fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.data[c]
	t := &rowstore.Table{}
	if len(rows) == 0 {
		return t, nil
	}
	t.Header = clone(rows[0])
	t.Rows = make([]rowstore.Row, 0, len(rows)-1)
	for i, r := range rows[1:] {
		t.Rows = append(t.Rows, rowstore.Row{Index: i + rowstore.FirstDataRow, Values: clone(r)})
	}
	return t, nil
}

func (s *Store) Append(ctx context.Context, c rowstore.Collection, values []string) error {
	if !rowstore.Valid(c) {
		return fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[c] = append(s.data[c], clone(values))
	return nil
}

func (s *Store) Update(ctx context.Context, c rowstore.Collection, index int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, err := s.position(c, index)
	if err != nil {
		return err
	}
	s.data[c][pos] = clone(values)
	return nil
}

func (s *Store) Delete(ctx context.Context, c rowstore.Collection, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, err := s.position(c, index)
	if err != nil {
		return err
	}
	rows := s.data[c]
	s.data[c] = append(rows[:pos:pos], rows[pos+1:]...)
	return nil
}

func (s *Store) EnsureHeader(ctx context.Context, c rowstore.Collection, header []string) error {
	if !rowstore.Valid(c) {
		return fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.data[c]) == 0 {
		s.data[c] = [][]string{clone(header)}
	}
	return nil
}

// position converts a 1-based sheet position into a slice offset; the header
// can't be addressed.
func (s *Store) position(c rowstore.Collection, index int) (int, error) {
	if !rowstore.Valid(c) {
		return 0, fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}
	pos := index - 1
	if index < rowstore.FirstDataRow || pos >= len(s.data[c]) {
		return 0, fmt.Errorf("%w: %s row %d", rowstore.ErrRowNotFound, c, index)
	}
	return pos, nil
}

func clone(v []string) []string {
	out := make([]string, len(v))
	copy(out, v)
	return out
}
