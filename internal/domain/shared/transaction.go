package shared

import "context"

// TransactionManager runs a function inside a database transaction.
// Repositories resolve the transactional handle from the context, so every
// repository call made inside fn joins the same transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
