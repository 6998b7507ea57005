package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserGroupRepository implements identity.UserGroupRepository using GORM
type GormUserGroupRepository struct {
	db *gorm.DB
}

var _ identity.UserGroupRepository = (*GormUserGroupRepository)(nil)

// NewGormUserGroupRepository creates a new GormUserGroupRepository
func NewGormUserGroupRepository(db *gorm.DB) *GormUserGroupRepository {
	return &GormUserGroupRepository{db: db}
}

// FindByID finds a group by ID with its users
func (r *GormUserGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.UserGroup, error) {
	var model models.UserGroupModel
	if err := conn(ctx, r.db).Preload("Users").First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of groups matching the filter
func (r *GormUserGroupRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*identity.UserGroup, int64, error) {
	query := conn(ctx, r.db).Model(&models.UserGroupModel{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(role) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*models.UserGroupModel
	err := query.
		Order(orderBy(filter, UserGroupSortFields)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	groups := make([]*identity.UserGroup, len(rows))
	for i, m := range rows {
		groups[i] = m.ToDomain()
	}
	return groups, total, nil
}

// Save upserts the group row
func (r *GormUserGroupRepository) Save(ctx context.Context, group *identity.UserGroup) error {
	err := conn(ctx, r.db).Omit(clause.Associations).Save(models.UserGroupModelFromDomain(group)).Error
	return translateError(err)
}

// Delete deletes a group and its memberships
func (r *GormUserGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("user_group_id = ?", id).Delete(&models.UserHasUserGroupModel{}).Error; err != nil {
		return translateError(err)
	}
	result := db.Delete(&models.UserGroupModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
