package extractors

import (
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/go-playground/validator/v10"
)

// Extractor координирует процесс извлечения сырых выгрузок CRM
type Extractor struct {
	logger               *utils.ETLLogger
	customerExtractor    *CustomerExtractor
	opportunityExtractor *OpportunityExtractor
	customersPath        string
	opportunitiesPath    string
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(logger *utils.ETLLogger, customersPath, opportunitiesPath string) *Extractor {
	validate := validator.New()
	return &Extractor{
		logger:               logger,
		customerExtractor:    NewCustomerExtractor(logger, validate),
		opportunityExtractor: NewOpportunityExtractor(logger, validate),
		customersPath:        customersPath,
		opportunitiesPath:    opportunitiesPath,
	}
}

// Extract извлекает оба набора. Ошибка одного набора фиксируется в
// ExtractedData и логируется как предупреждение, второй набор извлекается
// независимо. Извлечение никогда не прерывает запуск целиком.
func (e *Extractor) Extract() *models.ExtractedData {
	startTime := time.Now()
	e.logger.LogExtractStart()

	var extractedData models.ExtractedData

	// Извлекаем клиентов
	customers, rejected, err := e.customerExtractor.ExtractCustomers(e.customersPath)
	if err != nil {
		e.logger.Warn("Ошибка при извлечении клиентов: %v", err)
		extractedData.CustomersErr = err
	} else {
		extractedData.Customers = customers
		extractedData.RejectedCustomers = rejected
	}

	// Извлекаем сделки
	opportunities, rejected, err := e.opportunityExtractor.ExtractOpportunities(e.opportunitiesPath)
	if err != nil {
		e.logger.Warn("Ошибка при извлечении сделок: %v", err)
		extractedData.OpportunitiesErr = err
	} else {
		extractedData.Opportunities = opportunities
		extractedData.RejectedOpportunities = rejected
	}

	extractedData.ExtractedAt = time.Now()

	e.logger.LogExtractComplete(
		len(extractedData.Customers),
		len(extractedData.Opportunities),
		time.Since(startTime),
	)

	return &extractedData
}
