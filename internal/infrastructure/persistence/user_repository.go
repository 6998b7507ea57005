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

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID with its groups
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).Preload("Groups").First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByUsername finds a user by username, case-insensitively
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	if err := conn(ctx, r.db).
		Preload("Groups").
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*identity.User, int64, error) {
	query := conn(ctx, r.db).Model(&models.UserModel{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*models.UserModel
	err := query.
		Preload("Groups").
		Order(orderBy(filter, UserSortFields)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]*identity.User, len(rows))
	for i, m := range rows {
		users[i] = m.ToDomain()
	}
	return users, total, nil
}

// Save upserts the user and replaces its group memberships
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	db := conn(ctx, r.db)
	if err := db.Omit(clause.Associations).Save(models.UserModelFromDomain(user)).Error; err != nil {
		return translateError(err)
	}

	if err := db.Where("user_id = ?", user.ID).Delete(&models.UserHasUserGroupModel{}).Error; err != nil {
		return translateError(err)
	}
	if rows := models.MembershipsFromDomain(user); len(rows) > 0 {
		if err := db.Create(&rows).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}

// Delete deletes a user and its memberships
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("user_id = ?", id).Delete(&models.UserHasUserGroupModel{}).Error; err != nil {
		return translateError(err)
	}
	result := db.Delete(&models.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
