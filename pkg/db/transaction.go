package db

import "context"

// TransactionFunc runs inside a store transaction. Repositories must use the
// ctx they are handed so their statements join the transaction.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}
