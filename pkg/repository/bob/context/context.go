package context

import (
	"context"

	"github.com/stephenafamo/bob"
)

type bobContextKey struct{}

func NewContext(ctx context.Context, executor bob.Executor) context.Context {
	return context.WithValue(ctx, bobContextKey{}, executor)
}

func FromContext(ctx context.Context) bob.Executor {
	if ctx == nil {
		return nil
	}
	if executor, ok := ctx.Value(bobContextKey{}).(bob.Executor); ok {
		return executor
	}
	return nil
}

// ExecutorOrDefault returns the executor stored in ctx or def if there is none.
func ExecutorOrDefault(ctx context.Context, def bob.Executor) bob.Executor {
	if executor := FromContext(ctx); executor != nil {
		return executor
	}
	return def
}
