package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clearbridge-dev/payments/internal/adapter/repository"
	domainRepo "github.com/clearbridge-dev/payments/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Transaction   domainRepo.TransactionRepository
	GatewayConfig domainRepo.GatewayConfigRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Transaction:   repository.NewTransactionRepository(db, logger),
		GatewayConfig: repository.NewGatewayConfigRepository(db, logger),
	}
}
