package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// Record is a CRUD row whose Values line up with its Table's Columns
type Record interface {
	Values() []any
}

// Table describes a flat entity table: an id BIGSERIAL plus nullable text columns
type Table struct {
	Name    string
	Columns []string
}

var (
	FruttiTable  = Table{Name: "frutti", Columns: []string{"nome", "descrizione", "categoria"}}
	UtentiTable  = Table{Name: "utenti", Columns: []string{"nome", "cognome", "stanza", "descrizione"}}
	AppuntiTable = Table{Name: "appunti", Columns: []string{"titolo", "testo", "categoria"}}
)

// EntityStore is the CRUD surface of one entity table
type EntityStore[T Record] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (*T, error)
	Update(ctx context.Context, id int64, rec T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// EntityTable implements EntityStore with one statement per operation
type EntityTable[T Record] struct {
	db    *sqlx.DB
	table Table

	listQuery   string
	insertQuery string
	updateQuery string
	deleteQuery string
}

// NewEntityTable builds the statements for table. It panics when T's Values
// do not match the table columns, which is a programming error.
func NewEntityTable[T Record](db *sqlx.DB, table Table) *EntityTable[T] {
	var zero T
	if n := len(zero.Values()); n != len(table.Columns) {
		panic(fmt.Sprintf("repository: %s has %d columns but record has %d values", table.Name, len(table.Columns), n))
	}

	returning := "id, " + strings.Join(table.Columns, ", ")

	placeholders := make([]string, len(table.Columns))
	sets := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		sets[i] = fmt.Sprintf("%s = COALESCE($%d, %s)", col, i+1, col)
	}

	return &EntityTable[T]{
		db:    db,
		table: table,
		listQuery: fmt.Sprintf(`SELECT %s FROM %s ORDER BY id ASC`,
			returning, table.Name),
		insertQuery: fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
			table.Name, strings.Join(table.Columns, ", "), strings.Join(placeholders, ", "), returning),
		updateQuery: fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
			table.Name, strings.Join(sets, ", "), len(table.Columns)+1, returning),
		deleteQuery: fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table.Name),
	}
}

// Name returns the table name
func (t *EntityTable[T]) Name() string {
	return t.table.Name
}

func (t *EntityTable[T]) List(ctx context.Context) ([]T, error) {
	rows := []T{}
	if err := t.db.SelectContext(ctx, &rows, t.listQuery); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table.Name, err)
	}
	return rows, nil
}

func (t *EntityTable[T]) Create(ctx context.Context, rec T) (*T, error) {
	var out T
	if err := t.db.GetContext(ctx, &out, t.insertQuery, rec.Values()...); err != nil {
		return nil, fmt.Errorf("insert %s: %w", t.table.Name, err)
	}
	return &out, nil
}

// Update replaces the non-nil fields of rec; nil fields keep their stored value
func (t *EntityTable[T]) Update(ctx context.Context, id int64, rec T) (*T, error) {
	args := append(rec.Values(), id)

	var out T
	err := t.db.GetContext(ctx, &out, t.updateQuery, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update %s: %w", t.table.Name, err)
	}
	return &out, nil
}

func (t *EntityTable[T]) Delete(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx, t.deleteQuery, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.table.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.table.Name, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time checks
var (
	_ EntityStore[models.Frutto]  = (*EntityTable[models.Frutto])(nil)
	_ EntityStore[models.Utente]  = (*EntityTable[models.Utente])(nil)
	_ EntityStore[models.Appunto] = (*EntityTable[models.Appunto])(nil)
)
