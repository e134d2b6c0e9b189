package load

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"gorm.io/gorm"
)

// OpportunityLoader отвечает за публикацию таблицы фактов продаж
type OpportunityLoader struct {
	db        *gorm.DB
	logger    *utils.ETLLogger
	batchSize int
}

// NewOpportunityLoader создает новый экземпляр OpportunityLoader
func NewOpportunityLoader(db *gorm.DB, logger *utils.ETLLogger, batchSize int) *OpportunityLoader {
	return &OpportunityLoader{
		db:        db,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Load заменяет содержимое fact_ventas переданными строками
func (l *OpportunityLoader) Load(ctx context.Context, facts []models.OpportunityFact) (int, error) {
	startTime := time.Now()
	l.logger.Info("Начало загрузки фактов сделок (всего: %d)", len(facts))

	n, err := replaceTable(ctx, l.db, facts, l.batchSize)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", models.OpportunityFactTable, err)
	}

	l.logger.Info("Загрузка %s завершена. Загружено записей: %d. Длительность: %v",
		models.OpportunityFactTable, n, time.Since(startTime))
	return n, nil
}
