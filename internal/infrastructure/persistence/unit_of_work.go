package persistence

import (
	"context"
	"sync"

	"github.com/restapi/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// conn returns the transaction bound to ctx by a flushing unit of work, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// GormUnitOfWork stages repository writes and commits them in a single transaction on Flush.
// One instance serves one request.
type GormUnitOfWork struct {
	db     *gorm.DB
	mu     sync.Mutex
	staged []func(ctx context.Context) error
}

var _ shared.UnitOfWork = (*GormUnitOfWork)(nil)

// NewUnitOfWork creates an empty unit of work on db
func NewUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Persist stages fn until the next Flush
func (u *GormUnitOfWork) Persist(_ context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.staged = append(u.staged, fn)
	return nil
}

// Flush runs the staged work in registration order inside one transaction. Staged work is
// dropped whether or not the transaction commits.
func (u *GormUnitOfWork) Flush(ctx context.Context) error {
	u.mu.Lock()
	staged := u.staged
	u.staged = nil
	u.mu.Unlock()

	if len(staged) == 0 {
		return nil
	}

	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		for _, fn := range staged {
			if err := fn(txCtx); err != nil {
				return err
			}
		}
		return nil
	})
}

// Pending returns the number of staged writes
func (u *GormUnitOfWork) Pending() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.staged)
}

// Discard drops staged writes and returns how many were dropped
func (u *GormUnitOfWork) Discard() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := len(u.staged)
	u.staged = nil
	return n
}
