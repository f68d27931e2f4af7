package bob

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"

	"github.com/prowheel/wheellab/pkg/repository/api"
	bobCtx "github.com/prowheel/wheellab/pkg/repository/bob/context"
)

type bobTransaction struct {
	db *bob.DB
}

var _ api.TransactionManager = (*bobTransaction)(nil)

func NewTransactionManager(db bob.DB) api.TransactionManager {
	return &bobTransaction{
		db: &db,
	}
}

func NewTransactionManagerFromPool(pool *pgxpool.Pool) api.TransactionManager {
	return NewTransactionManager(bob.NewDB(stdlib.OpenDBFromPool(pool)))
}

// the contract with the repositories is:
// we put the current executor into the context, the repository should first look
// in the context for an executor and then use it to execute queries
//
//nolint:whitespace //editor/linter issue
func (b *bobTransaction) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return b.db.RunInTx(ctx, nil, func(ctx context.Context, e bob.Executor) error {
		return fn(bobCtx.NewContext(ctx, e))
	})
}
