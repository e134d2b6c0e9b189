package load

import (
	"context"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"gorm.io/gorm"
)

// Loader интерфейс для публикации таблиц в хранилище
type Loader interface {
	// LoadCustomerDimension заменяет измерение клиентов
	LoadCustomerDimension(ctx context.Context, customers []models.CustomerDimension) (int, error)

	// LoadOpportunityFacts заменяет факты сделок
	LoadOpportunityFacts(ctx context.Context, facts []models.OpportunityFact) (int, error)
}

// WarehouseLoader реализация Loader для хранилища через gorm
type WarehouseLoader struct {
	customerLoader    *CustomerLoader
	opportunityLoader *OpportunityLoader
}

// NewWarehouseLoader создает новый экземпляр WarehouseLoader
func NewWarehouseLoader(db *gorm.DB, logger *utils.ETLLogger, batchSize int) *WarehouseLoader {
	return &WarehouseLoader{
		customerLoader:    NewCustomerLoader(db, logger, batchSize),
		opportunityLoader: NewOpportunityLoader(db, logger, batchSize),
	}
}

// LoadCustomerDimension заменяет измерение клиентов
func (l *WarehouseLoader) LoadCustomerDimension(ctx context.Context, customers []models.CustomerDimension) (int, error) {
	return l.customerLoader.Load(ctx, customers)
}

// LoadOpportunityFacts заменяет факты сделок
func (l *WarehouseLoader) LoadOpportunityFacts(ctx context.Context, facts []models.OpportunityFact) (int, error) {
	return l.opportunityLoader.Load(ctx, facts)
}
