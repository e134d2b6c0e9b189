package transform

import (
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
)

// Transformer координирует преобразование сырых выгрузок в измерение и факты
type Transformer struct {
	logger               *utils.ETLLogger
	now                  func() time.Time
	customerDimProcessor *CustomerDimensionProcessor
	opportunityProcessor *OpportunityFactsProcessor
}

// NewTransformer создает новый экземпляр Transformer.
// now задаёт дату обработки для возраста аккаунтов.
func NewTransformer(logger *utils.ETLLogger, rng RandomSource, now func() time.Time) *Transformer {
	return &Transformer{
		logger:               logger,
		now:                  now,
		customerDimProcessor: NewCustomerDimensionProcessor(logger),
		opportunityProcessor: NewOpportunityFactsProcessor(logger, rng),
	}
}

// Transform преобразует извлечённые наборы. Набор, который не удалось
// извлечь, пропускается и остаётся nil в результате. Фаза не прерывается
// на отдельных строках.
func (t *Transformer) Transform(extractedData *models.ExtractedData) *models.TransformedData {
	startTime := time.Now()
	t.logger.Info("Начало фазы Transform (Преобразование данных)")

	transformedData := &models.TransformedData{}
	meta := &transformedData.Metadata
	meta.RunTimestamp = t.now()
	meta.RejectedCustomers = extractedData.RejectedCustomers
	meta.RejectedOpportunities = extractedData.RejectedOpportunities

	// 1. Преобразование данных клиентов
	if extractedData.HasCustomers() {
		t.logger.Info("Преобразование данных клиентов...")
		customers, unparsable := t.customerDimProcessor.ProcessCustomerDimension(extractedData.Customers, meta.RunTimestamp)
		transformedData.Customers = customers
		meta.CustomersProcessed = len(customers)
		meta.UnparsableDates += unparsable
	} else {
		t.logger.Warn("Клиенты не извлечены, измерение клиентов пропущено")
	}

	// 2. Преобразование данных сделок
	if extractedData.HasOpportunities() {
		t.logger.Info("Преобразование данных сделок...")
		batch := t.opportunityProcessor.ProcessOpportunityFacts(extractedData.Opportunities)
		transformedData.Opportunities = batch.Facts
		transformedData.Repairs = batch.Repairs
		meta.OpportunitiesProcessed = len(batch.Facts)
		meta.ClosuresRepaired = len(batch.Repairs)
		meta.UnrepairableClosures = batch.UnrepairableClosures
		meta.UnparsableDates += batch.UnparsableDates
	} else {
		t.logger.Warn("Сделки не извлечены, таблица фактов пропущена")
	}

	// 3. Проверка ссылок сделок на клиентов (не принудительная)
	if extractedData.HasCustomers() && extractedData.HasOpportunities() {
		meta.OrphanOpportunities = countOrphans(extractedData.Customers, extractedData.Opportunities)
		if meta.OrphanOpportunities > 0 {
			t.logger.Warn("Сделок со ссылкой на неизвестного клиента: %d", meta.OrphanOpportunities)
		}
	}

	t.logger.Info("Фаза Transform завершена. Длительность: %v", time.Since(startTime))
	return transformedData
}

func countOrphans(customers []models.RawCustomer, opportunities []models.RawOpportunity) int {
	known := make(map[string]struct{}, len(customers))
	for _, c := range customers {
		known[c.ID] = struct{}{}
	}
	orphans := 0
	for _, o := range opportunities {
		if _, ok := known[o.CustomerID]; !ok {
			orphans++
		}
	}
	return orphans
}
