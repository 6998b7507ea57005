// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free from ORM concerns.
//
//   - base.go: BaseModel (id, created_at, updated_at)
//   - identity.go: user, user_group and the user_has_user_group join table
//   - log_request.go: request audit rows with JSON headers and parameters
package models
