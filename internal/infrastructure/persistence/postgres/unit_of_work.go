// Package postgres - UnitOfWork implementation for PostgreSQL.
//
// Unit of Work pattern:
//   - Owns transaction boundaries
//   - Guarantees atomicity of the operations run inside it
//   - Automatic ROLLBACK on error
//   - Automatic COMMIT on success
//
// Usage:
//
//	err := uow.Execute(ctx, func(txCtx context.Context) error {
//		// every repository call inside here must use txCtx
//		w, _ := walletRepo.FindByIDForUpdate(txCtx, walletID)
//		entry := entities.NewLedgerEntry(txID, w.ID(), entryType, amount, balance, "")
//		ledgerRepo.Append(txCtx, entry)
//		return nil // COMMIT
//		// return err // ROLLBACK
//	})
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haleralex/payflow/internal/application/ports"
)

// Compile-time check
var _ ports.UnitOfWork = (*UnitOfWork)(nil)
var _ ports.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)

// UnitOfWork implements ports.UnitOfWork with PostgreSQL transactions.
//
// Thread-safe: uses the connection pool. Isolation level defaults to
// READ COMMITTED.
type UnitOfWork struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{
		pool: pool,
		opts: pgx.TxOptions{
			IsoLevel: pgx.ReadCommitted, // Default isolation level
		},
	}
}

// NewUnitOfWorkWithIsolation creates a UnitOfWork at the given isolation
// level.
//
// Isolation levels:
//   - pgx.ReadCommitted (default): fits most cases
//   - pgx.RepeatableRead: guarantees consistent reads within the transaction
//   - pgx.Serializable: strictest isolation, may trigger retries on conflict
func NewUnitOfWorkWithIsolation(pool *pgxpool.Pool, isolation pgx.TxIsoLevel) *UnitOfWork {
	return &UnitOfWork{
		pool: pool,
		opts: pgx.TxOptions{
			IsoLevel: isolation,
		},
	}
}

// Execute runs fn inside a transaction.
//
// Behavior:
//   - begins a transaction
//   - injects the transaction into context
//   - runs fn with the new context
//   - fn returns nil: COMMIT
//   - fn returns an error: ROLLBACK
//   - fn panics: ROLLBACK, then re-panic
//
// Every repository call inside fn must use the txCtx it is passed.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	// Already inside a transaction (nested call) - just run fn. Postgres has
	// no true nested transactions, only savepoints, so this reuses the
	// outer one rather than attempting to open a new one.
	if hasTx(ctx) {
		return fn(ctx)
	}

	tx, err := u.pool.BeginTx(ctx, u.opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	txCtx := injectTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ExecuteWithResult runs fn inside a transaction and returns its result,
// for callers that need a value back out (e.g. a newly created entity).
func (u *UnitOfWork) ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	var result interface{}

	err := u.Execute(ctx, func(txCtx context.Context) error {
		var fnErr error
		result, fnErr = fn(txCtx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// ExecuteWithRetry runs the transaction with automatic retry on conflict,
// useful for optimistic-locking and serialization failures.
// maxRetries is the maximum number of attempts (0 disables retry).
func (u *UnitOfWork) ExecuteWithRetry(ctx context.Context, maxRetries int, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := u.Execute(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return err
		}

		lastErr = err
		// A future revision could add exponential backoff here.
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// UnitOfWorkFactory creates UnitOfWork instances, useful when different
// callers need different transaction settings.
type UnitOfWorkFactory struct {
	pool *pgxpool.Pool
}

// NewUnitOfWorkFactory creates a UnitOfWork factory.
func NewUnitOfWorkFactory(pool *pgxpool.Pool) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{pool: pool}
}

// New creates a new UnitOfWork with default settings.
func (f *UnitOfWorkFactory) New() ports.UnitOfWork {
	return NewUnitOfWork(f.pool)
}

// NewWithIsolation creates a UnitOfWork at the given isolation level.
func (f *UnitOfWorkFactory) NewWithIsolation(isolation pgx.TxIsoLevel) *UnitOfWork {
	return NewUnitOfWorkWithIsolation(f.pool, isolation)
}

// NewSerializable creates a UnitOfWork with SERIALIZABLE isolation. Use
// this for critical financial operations.
func (f *UnitOfWorkFactory) NewSerializable() *UnitOfWork {
	return NewUnitOfWorkWithIsolation(f.pool, pgx.Serializable)
}
