// Package postgres - helpers shared by every repository implementation.
package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier abstracts over *pgxpool.Pool and pgx.Tx so a repository method can
// run against either without knowing which — getQuerier picks transparently.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txKey is the context key the unit of work stores the active transaction
// under.
type txKey struct{}

func injectTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// extractTx returns the transaction stashed in ctx, or nil if none.
func extractTx(ctx context.Context) pgx.Tx {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil
	}
	return tx
}

func hasTx(ctx context.Context) bool {
	return extractTx(ctx) != nil
}

// Postgres error codes this package cares about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"

	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func isPgError(err error, code string) bool {
	if err == nil {
		return false
	}
	pgErr, ok := err.(*pgconn.PgError)
	if !ok {
		return false
	}
	return pgErr.Code == code
}

// isUniqueViolation reports whether err is a unique-constraint violation.
// constraintName is optional; pass "" to match any unique violation.
func isUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	pgErr, ok := err.(*pgconn.PgError)
	if !ok {
		return false
	}
	if pgErr.Code != pgUniqueViolation {
		return false
	}
	if constraintName != "" {
		return strings.Contains(pgErr.ConstraintName, constraintName)
	}
	return true
}

func isForeignKeyViolation(err error) bool {
	return isPgError(err, pgForeignKeyViolation)
}

// isSerializationFailure reports whether err is a retryable PG serialization
// failure or deadlock — the signal UnitOfWork.ExecuteWithRetry watches for.
func isSerializationFailure(err error) bool {
	return isPgError(err, pgSerializationFailure) || isPgError(err, pgDeadlockDetected)
}

func isNotNullViolation(err error) bool {
	return isPgError(err, pgNotNullViolation)
}

func isCheckViolation(err error) bool {
	return isPgError(err, pgCheckViolation)
}

// isRetryableError reports whether a failed operation is worth retrying:
// serialization conflicts, deadlocks, and connection-class errors.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if isSerializationFailure(err) {
		return true
	}
	pgErr, ok := err.(*pgconn.PgError)
	if ok {
		return strings.HasPrefix(pgErr.Code, "08")
	}
	return false
}
