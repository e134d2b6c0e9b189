package load

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"gorm.io/gorm"
)

// CustomerLoader отвечает за публикацию измерения клиентов
type CustomerLoader struct {
	db        *gorm.DB
	logger    *utils.ETLLogger
	batchSize int
}

// NewCustomerLoader создает новый экземпляр CustomerLoader
func NewCustomerLoader(db *gorm.DB, logger *utils.ETLLogger, batchSize int) *CustomerLoader {
	return &CustomerLoader{
		db:        db,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Load заменяет содержимое dim_clientes переданными строками
func (l *CustomerLoader) Load(ctx context.Context, customers []models.CustomerDimension) (int, error) {
	startTime := time.Now()
	l.logger.Info("Начало загрузки измерения клиентов (всего: %d)", len(customers))

	n, err := replaceTable(ctx, l.db, customers, l.batchSize)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", models.CustomerDimensionTable, err)
	}

	l.logger.Info("Загрузка %s завершена. Загружено записей: %d. Длительность: %v",
		models.CustomerDimensionTable, n, time.Since(startTime))
	return n, nil
}
