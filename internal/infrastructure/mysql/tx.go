package mysql

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql that repositories need. Both *sql.DB
// and *sql.Tx satisfy it, so the same repository method can run standalone or
// inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx is a transaction handle repositories can run against.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

type TxManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

type SQLTxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *SQLTxManager {
	return &SQLTxManager{db: db}
}

func (m *SQLTxManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	return m.db.BeginTx(ctx, opts)
}
