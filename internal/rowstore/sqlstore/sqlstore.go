// Package sqlstore emulates a spreadsheet on top of a SQL table. Each
// collection is the ordered set of rows sharing a collection name; a row's
// position is its ordinal by id, so deleting a row shifts later positions
// the same way deleting a sheet row does.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var schemas = map[string]string{
	DialectSQLite: `
        CREATE TABLE IF NOT EXISTS sheet_rows (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            collection TEXT NOT NULL,
            cells TEXT NOT NULL
        )`,
	DialectPostgres: `
        CREATE TABLE IF NOT EXISTS sheet_rows (
            id BIGSERIAL PRIMARY KEY,
            collection TEXT NOT NULL,
            cells TEXT NOT NULL
        )`,
}

const indexDDL = `CREATE INDEX IF NOT EXISTS idx_sheet_rows_collection ON sheet_rows (collection, id)`

type Store struct {
	DB *sqlx.DB
}

var _ rowstore.Store = (*Store)(nil)

type rowRecord struct {
	ID    int64  `db:"id"`
	Cells string `db:"cells"`
}

// Open connects with the driver matching dialect and creates the schema.
func Open(ctx context.Context, dialect, dsn string) (*Store, error) {
	driver := ""
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
	case DialectPostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	s := NewStore(db)
	if err := s.Migrate(ctx, dialect); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Migrate(ctx context.Context, dialect string) error {
	ddl, ok := schemas[dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sheet_rows: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx, indexDDL); err != nil {
		return fmt.Errorf("create sheet_rows index: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Read(ctx context.Context, c rowstore.Collection) (*rowstore.Table, error) {
	if !rowstore.Valid(c) {
		return nil, fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}

	var records []rowRecord
	query := s.DB.Rebind(`SELECT id, cells FROM sheet_rows WHERE collection = ? ORDER BY id`)
	if err := s.DB.SelectContext(ctx, &records, query, string(c)); err != nil {
		return nil, err
	}

	t := &rowstore.Table{}
	for i, rec := range records {
		cells, err := decodeCells(rec.Cells)
		if err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", c, i+1, err)
		}
		if i == 0 {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, rowstore.Row{Index: i + 1, Values: cells})
	}
	return t, nil
}

func (s *Store) Append(ctx context.Context, c rowstore.Collection, values []string) error {
	if !rowstore.Valid(c) {
		return fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}
	return s.insert(ctx, s.DB, c, values)
}

func (s *Store) Update(ctx context.Context, c rowstore.Collection, index int, values []string) error {
	cells, err := encodeCells(values)
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := s.resolve(ctx, tx, c, index)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE sheet_rows SET cells = ? WHERE id = ?`), cells, id); err != nil {
		return fmt.Errorf("update %s row %d: %w", c, index, err)
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, c rowstore.Collection, index int) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := s.resolve(ctx, tx, c, index)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sheet_rows WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete %s row %d: %w", c, index, err)
	}
	return tx.Commit()
}

func (s *Store) EnsureHeader(ctx context.Context, c rowstore.Collection, header []string) error {
	if !rowstore.Valid(c) {
		return fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT count(*) FROM sheet_rows WHERE collection = ?`), string(c)); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := s.insert(ctx, tx, c, header); err != nil {
		return err
	}
	return tx.Commit()
}

// resolve maps a sheet position to the row id inside tx.
func (s *Store) resolve(ctx context.Context, tx *sqlx.Tx, c rowstore.Collection, index int) (int64, error) {
	if !rowstore.Valid(c) {
		return 0, fmt.Errorf("%w: %s", rowstore.ErrUnknownCollection, c)
	}
	if index < rowstore.FirstDataRow {
		return 0, fmt.Errorf("%w: %s row %d", rowstore.ErrRowNotFound, c, index)
	}

	var id int64
	query := tx.Rebind(`SELECT id FROM sheet_rows WHERE collection = ? ORDER BY id LIMIT 1 OFFSET ?`)
	err := tx.GetContext(ctx, &id, query, string(c), index-1)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s row %d", rowstore.ErrRowNotFound, c, index)
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) insert(ctx context.Context, ext sqlx.ExtContext, c rowstore.Collection, values []string) error {
	cells, err := encodeCells(values)
	if err != nil {
		return err
	}
	query := ext.Rebind(`INSERT INTO sheet_rows (collection, cells) VALUES (?, ?)`)
	if _, err := ext.ExecContext(ctx, query, string(c), cells); err != nil {
		return fmt.Errorf("append %s: %w", c, err)
	}
	return nil
}

func encodeCells(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, err
	}
	return cells, nil
}
