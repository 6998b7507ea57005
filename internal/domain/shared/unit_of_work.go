package shared

import "context"

// UnitOfWork collects writes and commits them together.
//
// Persist stages fn; staged work runs in registration order on Flush, inside a single
// transaction carried by the context passed to each fn. Flush with nothing staged is a no-op.
type UnitOfWork interface {
	Persist(ctx context.Context, fn func(ctx context.Context) error) error
	Flush(ctx context.Context) error
	Pending() int
}

type unitOfWorkKey struct{}

// WithUnitOfWork stores uow in the context.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork) context.Context {
	return context.WithValue(ctx, unitOfWorkKey{}, uow)
}

// UnitOfWorkFrom returns the request-scoped unit of work, or one that applies writes
// immediately when none was installed.
func UnitOfWorkFrom(ctx context.Context) UnitOfWork {
	if uow, ok := ctx.Value(unitOfWorkKey{}).(UnitOfWork); ok && uow != nil {
		return uow
	}
	return immediateUnitOfWork{}
}

type immediateUnitOfWork struct{}

func (immediateUnitOfWork) Persist(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (immediateUnitOfWork) Flush(context.Context) error { return nil }

func (immediateUnitOfWork) Pending() int { return 0 }
