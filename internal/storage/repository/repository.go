// Package repository contains the per-table data access layers.
package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql operations the repositories use.
// Both *sql.DB and *sql.Tx satisfy it, so a repository can be rebound to
// a transaction with WithTx for multi-statement operations.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
