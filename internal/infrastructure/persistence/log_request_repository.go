package persistence

import (
	"context"
	"time"

	"github.com/restapi/backend/internal/domain/logrequest"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLogRequestRepository implements logrequest.Repository using GORM.
// Writes bypass the request unit of work so a failed request is still logged.
type GormLogRequestRepository struct {
	db *gorm.DB
}

var _ logrequest.Repository = (*GormLogRequestRepository)(nil)

// NewGormLogRequestRepository creates a new GormLogRequestRepository
func NewGormLogRequestRepository(db *gorm.DB) *GormLogRequestRepository {
	return &GormLogRequestRepository{db: db}
}

// Save inserts a log row
func (r *GormLogRequestRepository) Save(ctx context.Context, entry *logrequest.LogRequest) error {
	return translateError(r.db.WithContext(ctx).Create(models.LogRequestModelFromDomain(entry)).Error)
}

// FindAll returns a page of log rows, newest first by default
func (r *GormLogRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*logrequest.LogRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LogRequestModel{})
	if filter.Search != "" {
		query = query.Where("path LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*models.LogRequestModel
	err := query.
		Order(orderBy(filter, LogRequestSortFields)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	entries := make([]*logrequest.LogRequest, len(rows))
	for i, m := range rows {
		entries[i] = m.ToDomain()
	}
	return entries, total, nil
}

// DeleteBefore removes rows older than before and returns how many were removed
func (r *GormLogRequestRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.LogRequestModel{})
	return result.RowsAffected, result.Error
}
