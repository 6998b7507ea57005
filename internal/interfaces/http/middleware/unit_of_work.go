package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"github.com/restapi/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnitOfWork installs a fresh unit of work in every request context. Writes staged by
// resources are committed by their flushing save; whatever is still staged when the
// handler returns is discarded.
func UnitOfWork(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uow := persistence.NewUnitOfWork(db)
		c.Request = c.Request.WithContext(shared.WithUnitOfWork(c.Request.Context(), uow))

		c.Next()

		if n := uow.Discard(); n > 0 {
			logger.Enrich(c.Request.Context(), log).Warn("Discarding unflushed writes",
				zap.Int("pending", n),
				zap.String("path", c.Request.URL.Path),
			)
		}
	}
}
