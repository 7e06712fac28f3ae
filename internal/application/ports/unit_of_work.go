// Package ports - Unit of Work abstracts transaction boundaries so the
// application layer never imports a driver directly.
package ports

import "context"

// UnitOfWork scopes a group of repository calls to one database transaction.
//
//	err := uow.Execute(ctx, func(txCtx context.Context) error {
//
// wallet, err := walletRepo.FindByIDForUpdate(txCtx, walletID)
// if err != nil {
// return err // rolled back
// }
// return ledgerRepo.Append(txCtx, entry)
//
//	})
//	// fn returning non-nil rolls back; nil commits.
//
// Every repository call inside fn must use the context fn receives, not the
// outer ctx — that's how the transaction is threaded through.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(context.Context) error) error

	// ExecuteWithResult is Execute but also returns a value, for callers that
	// need the entity a transaction produced.
	ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error)

	// ExecuteWithRetry retries fn when the underlying driver reports a
	// serialization failure or deadlock (Postgres codes 40001/40P01), up to
	// maxAttempts times with no caller-visible difference on success
	// (serialization failures are safe to retry). Non-retryable errors
	// propagate on the first attempt.
	ExecuteWithRetry(ctx context.Context, maxAttempts int, fn func(context.Context) error) error
}

// UnitOfWorkFactory creates UnitOfWork instances. Most call sites share a
// single UnitOfWork injected by the container; the factory exists for
// call sites that need an isolated transaction (e.g. the outbox poller
// running alongside an in-flight request transaction).
type UnitOfWorkFactory interface {
	New() UnitOfWork
}
