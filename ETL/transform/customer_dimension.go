package transform

import (
	"strings"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
)

// CustomerDimensionProcessor отвечает за преобразование клиентов в измерение
type CustomerDimensionProcessor struct {
	logger *utils.ETLLogger
}

// NewCustomerDimensionProcessor создает новый экземпляр CustomerDimensionProcessor
func NewCustomerDimensionProcessor(logger *utils.ETLLogger) *CustomerDimensionProcessor {
	return &CustomerDimensionProcessor{
		logger: logger,
	}
}

// ProcessCustomerDimension разбирает дату регистрации, считает возраст
// аккаунта относительно now (время суток отбрасывается) и нормализует город.
// Возраст зависит от now, поэтому меняется от запуска к запуску.
// Второе значение - количество нераспознанных дат регистрации.
func (p *CustomerDimensionProcessor) ProcessCustomerDimension(raw []models.RawCustomer, now time.Time) ([]models.CustomerDimension, int) {
	p.logger.Debug("Обработка измерения клиентов...")

	today := DayStart(now)
	dimensions := make([]models.CustomerDimension, 0, len(raw))
	unparsable := 0

	for _, c := range raw {
		registered := ParseDate(c.RegisteredDate)
		if registered == nil {
			unparsable++
			p.logger.Warn("Клиент %s: нераспознанная дата регистрации %q", c.ID, c.RegisteredDate)
		}

		dim := models.CustomerDimension{
			Customer: models.Customer{
				ID:               c.ID,
				CompanyName:      c.CompanyName,
				ContactName:      c.ContactName,
				Email:            c.Email,
				City:             c.City,
				Industry:         c.Industry,
				LeadSource:       c.LeadSource,
				RegistrationDate: registered,
			},
			NormalizedCity: NormalizeCity(c.City),
		}
		if registered != nil {
			age := DaysBetween(*registered, today)
			dim.AccountAgeDays = &age
		}

		dimensions = append(dimensions, dim)
	}

	p.logger.Info("Обработано измерение клиентов. Трансформировано записей: %d", len(dimensions))
	return dimensions, unparsable
}

// NormalizeCity приводит название города к верхнему регистру без крайних пробелов
func NormalizeCity(city string) string {
	return strings.ToUpper(strings.TrimSpace(city))
}
