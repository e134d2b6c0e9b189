package extractors

import (
	"fmt"
	"strings"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/go-playground/validator/v10"
)

// CustomerExtractor извлекает клиентов из сырой выгрузки
type CustomerExtractor struct {
	logger   *utils.ETLLogger
	validate *validator.Validate
}

// NewCustomerExtractor создает новый экземпляр CustomerExtractor
func NewCustomerExtractor(logger *utils.ETLLogger, validate *validator.Validate) *CustomerExtractor {
	return &CustomerExtractor{
		logger:   logger,
		validate: validate,
	}
}

// ExtractCustomers читает файл клиентов. Строки с нарушенной структурой
// (пустой или повторный ID, неизвестная отрасль или источник) отклоняются,
// их количество возвращается вторым значением. Дата регистрации не проверяется.
func (e *CustomerExtractor) ExtractCustomers(path string) ([]models.RawCustomer, int, error) {
	e.logger.Debug("Начало извлечения клиентов из %s", path)

	table, err := readCSVTable(path, models.CustomerHeaders)
	if err != nil {
		return nil, 0, err
	}

	customers := make([]models.RawCustomer, 0, len(table.rows))
	seen := make(map[string]bool, len(table.rows))
	rejected := 0

	for i, row := range table.rows {
		line := i + 2
		customer, err := e.parseRow(table, row)
		if err == nil && seen[customer.ID] {
			err = fmt.Errorf("повторный ID_Cliente %q", customer.ID)
		}
		if err != nil {
			e.logger.Warn("Строка %d файла клиентов отклонена: %v", line, err)
			rejected++
			continue
		}
		seen[customer.ID] = true
		customers = append(customers, customer)
	}

	e.logger.Debug("Извлечено %d клиентов, отклонено %d", len(customers), rejected)
	return customers, rejected, nil
}

func (e *CustomerExtractor) parseRow(table *csvTable, row []string) (models.RawCustomer, error) {
	industry, err := models.ParseIndustry(table.value(row, "Industria"))
	if err != nil {
		return models.RawCustomer{}, err
	}
	leadSource, err := models.ParseLeadSource(table.value(row, "Fuente_Lead"))
	if err != nil {
		return models.RawCustomer{}, err
	}

	customer := models.RawCustomer{
		ID:             strings.TrimSpace(table.value(row, "ID_Cliente")),
		CompanyName:    table.value(row, "Nombre_Empresa"),
		ContactName:    table.value(row, "Contacto_Principal"),
		Email:          table.value(row, "Email"),
		City:           table.value(row, "Ciudad"),
		Industry:       industry,
		LeadSource:     leadSource,
		RegisteredDate: table.value(row, "Fecha_Registro"),
	}
	if err := e.validate.Struct(customer); err != nil {
		return models.RawCustomer{}, err
	}
	return customer, nil
}
