// Package postgres implements catalog.Store on PostgreSQL through
// database/sql and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/pkg/repository"
)

// Store is a catalog.Store backed by PostgreSQL. The zero value is not usable.
type Store struct {
	db   *sql.DB
	conn repository.Conn
	inTx bool
}

// New creates a Store over db.
func New(db *sql.DB) *Store {
	return &Store{db: db, conn: db}
}

func (s *Store) Products() catalog.ProductStore       { return products{s.conn} }
func (s *Store) Ingredients() catalog.IngredientStore { return ingredients{s.conn} }
func (s *Store) Links() catalog.LinkStore             { return links{s.conn} }
func (s *Store) Requests() catalog.RequestStore       { return requests{s.conn} }
func (s *Store) Polls() catalog.PollStore             { return polls{s.conn} }
func (s *Store) Comments() catalog.CommentStore       { return comments{s.conn} }

// WithinTx runs fn in a database transaction. Nested calls reuse the
// enclosing transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, fn(&Store{db: s.db, conn: tx, inTx: true})
	})
	return err
}

// mapError translates driver errors to catalog errors, naming the entity.
func mapError(err error, entity string, key any) error {
	if err == nil {
		return nil
	}
	if repository.IsForeignKeyViolation(err) {
		return fmt.Errorf("%s %v references a missing row: %w", entity, key, catalog.ErrNotFound)
	}
	mapped := repository.MapError(err, catalog.ErrNotFound, catalog.ErrDuplicate)
	if mapped == err {
		return fmt.Errorf("%s %v: %w", entity, key, err)
	}
	return fmt.Errorf("%s %v: %w", entity, key, mapped)
}
