package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// DB wraps sqlx and carries transactions through the context so a service
// operation can span several repositories atomically.
type DB struct {
	*sqlx.DB
}

func NewDB(db *sqlx.DB) *DB {
	return &DB{DB: db}
}

// Atomically runs fn inside a transaction. A nested call joins the
// transaction already on the context instead of opening a second one.
func (d *DB) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	return tx.Commit()
}

// ext returns the executor for the current context: the enclosing
// transaction if one is running, the pool otherwise.
func (d *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx := txFrom(ctx); tx != nil {
		return tx
	}
	return d.DB
}

func txFrom(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}
