package load

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
)

// LoadResult итог фазы загрузки
type LoadResult struct {
	CustomersPublished     int
	OpportunitiesPublished int
	CustomersSkipped       bool
	OpportunitiesSkipped   bool
	// Количество таблиц, опубликованных без ошибок
	TablesPublished int
}

// LoadManager отвечает за порядок публикации таблиц
type LoadManager struct {
	logger  *utils.ETLLogger
	loader  Loader
	metrics *utils.ETLMetrics
}

// NewLoadManager создает новый экземпляр LoadManager
func NewLoadManager(loader Loader, logger *utils.ETLLogger, metrics *utils.ETLMetrics) *LoadManager {
	return &LoadManager{
		logger:  logger,
		loader:  loader,
		metrics: metrics,
	}
}

// Load публикует сначала измерение, затем факты. Публикации независимы:
// ошибка первой не отменяет вторую, ошибки объединяются. Между таблицами нет
// общей транзакции, поэтому после частичной ошибки хранилище может содержать
// новое измерение и старые факты (или наоборот). Набор, равный nil, не
// публикуется, и прежняя таблица остаётся как есть.
func (m *LoadManager) Load(ctx context.Context, transformedData *models.TransformedData) (LoadResult, error) {
	startTime := time.Now()
	m.logger.Info("Начало фазы Load (Загрузка данных)")

	var result LoadResult
	var errs []error

	// 1. Публикуем измерение клиентов
	if transformedData.Customers != nil {
		n, err := m.loader.LoadCustomerDimension(ctx, transformedData.Customers)
		if err != nil {
			m.logger.Warn("Ошибка при загрузке измерения клиентов: %v", err)
			errs = append(errs, fmt.Errorf("ошибка при загрузке измерения клиентов: %w", err))
		} else {
			result.CustomersPublished = n
			result.TablesPublished++
			m.published(models.CustomerDimensionTable, n)
		}
	} else {
		result.CustomersSkipped = true
		m.logger.Warn("Измерение клиентов не сформировано, таблица %s не изменена", models.CustomerDimensionTable)
	}

	// 2. Публикуем факты сделок
	if transformedData.Opportunities != nil {
		n, err := m.loader.LoadOpportunityFacts(ctx, transformedData.Opportunities)
		if err != nil {
			m.logger.Warn("Ошибка при загрузке фактов сделок: %v", err)
			errs = append(errs, fmt.Errorf("ошибка при загрузке фактов сделок: %w", err))
		} else {
			result.OpportunitiesPublished = n
			result.TablesPublished++
			m.published(models.OpportunityFactTable, n)
		}
	} else {
		result.OpportunitiesSkipped = true
		m.logger.Warn("Факты сделок не сформированы, таблица %s не изменена", models.OpportunityFactTable)
	}

	m.logger.Info("Фаза Load завершена. Длительность: %v", time.Since(startTime))
	return result, errors.Join(errs...)
}

func (m *LoadManager) published(table string, n int) {
	if m.metrics != nil {
		m.metrics.RowsPublished.WithLabelValues(table).Add(float64(n))
	}
}
