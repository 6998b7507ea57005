// Package resource loads, reconciles and stores the API's entities. Each resource pairs
// a repository with the DTO schema of its entity and stages writes in the request's
// unit of work.
package resource

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Repository is the persistence contract a resource works against.
type Repository[E any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (E, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]E, int64, error)
	Save(ctx context.Context, entity E) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type resource[E any] struct {
	name     string
	repo     Repository[E]
	validate *validator.Validate
	logger   *zap.Logger
}

// FindOne loads the entity by id. A missing entity, or an id that is not a UUID,
// returns the zero value and no error unless required is set, in which case it
// returns shared.ErrNotFound.
func (r *resource[E]) FindOne(ctx context.Context, id string, required bool) (E, error) {
	var zero E

	uid, err := uuid.Parse(id)
	if err != nil {
		if required {
			return zero, shared.ErrNotFound
		}
		return zero, nil
	}

	entity, err := r.repo.FindByID(ctx, uid)
	if errors.Is(err, shared.ErrNotFound) {
		if required {
			return zero, shared.ErrNotFound
		}
		return zero, nil
	}
	if err != nil {
		return zero, err
	}
	return entity, nil
}

// Find returns one page of entities and the total count.
func (r *resource[E]) Find(ctx context.Context, filter shared.Filter) ([]E, int64, error) {
	return r.repo.FindAll(ctx, filter)
}

// Save validates the entity unless skipValidation is set, then stages the write in
// the unit of work carried by ctx. With flush every staged write is committed.
func (r *resource[E]) Save(ctx context.Context, entity E, flush, skipValidation bool) error {
	if !skipValidation {
		if err := r.validate.StructCtx(ctx, entity); err != nil {
			return err
		}
	}

	uow := shared.UnitOfWorkFrom(ctx)
	if err := uow.Persist(ctx, func(ctx context.Context) error {
		return r.repo.Save(ctx, entity)
	}); err != nil {
		return err
	}
	if !flush {
		logger.Enrich(ctx, r.logger).Debug("Write staged",
			zap.String("resource", r.name),
			zap.Int("pending", uow.Pending()))
		return nil
	}
	return uow.Flush(ctx)
}

// Delete removes the entity and flushes the unit of work.
func (r *resource[E]) Delete(ctx context.Context, id uuid.UUID) error {
	uow := shared.UnitOfWorkFrom(ctx)
	if err := uow.Persist(ctx, func(ctx context.Context) error {
		return r.repo.Delete(ctx, id)
	}); err != nil {
		return err
	}
	if err := uow.Flush(ctx); err != nil {
		return err
	}

	logger.Enrich(ctx, r.logger).Info("Entity deleted",
		zap.String("resource", r.name),
		zap.String("id", id.String()))
	return nil
}
