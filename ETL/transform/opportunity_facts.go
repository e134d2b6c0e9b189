package transform

import (
	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
)

// Диапазон синтетической длительности сделки в днях, обе границы включены
const (
	MinRepairDays = 5
	MaxRepairDays = 120
)

// OpportunityBatch результат преобразования набора сделок
type OpportunityBatch struct {
	Facts                []models.OpportunityFact
	Repairs              []models.ClosureRepair
	UnparsableDates      int
	UnrepairableClosures int
}

// OpportunityFactsProcessor отвечает за преобразование сделок в таблицу фактов
type OpportunityFactsProcessor struct {
	logger *utils.ETLLogger
	rng    RandomSource
}

// NewOpportunityFactsProcessor создает новый экземпляр OpportunityFactsProcessor
func NewOpportunityFactsProcessor(logger *utils.ETLLogger, rng RandomSource) *OpportunityFactsProcessor {
	return &OpportunityFactsProcessor{
		logger: logger,
		rng:    rng,
	}
}

// ProcessOpportunityFacts выполняет полный цикл: разбор дат, восстановление
// дат закрытия, затем вычисление производных полей. Входной срез не изменяется.
func (p *OpportunityFactsProcessor) ProcessOpportunityFacts(raw []models.RawOpportunity) OpportunityBatch {
	p.logger.Debug("Обработка фактов сделок...")

	opportunities, unparsable := p.NormalizeDates(raw)
	repaired, repairs, unrepairable := p.RepairClosureDates(opportunities)

	facts := make([]models.OpportunityFact, 0, len(repaired))
	negative := 0
	for _, opp := range repaired {
		fact := DeriveOpportunityFact(opp)
		if fact.SalesCycleDays != nil && *fact.SalesCycleDays < 0 {
			negative++
			p.logger.Warn("Сделка %s закрыта раньше, чем создана (%d дней), оставлена без изменений",
				opp.ID, *fact.SalesCycleDays)
		}
		facts = append(facts, fact)
	}

	p.logger.Info("Обработаны факты сделок. Записей: %d, восстановлено дат закрытия: %d, нераспознанных дат: %d, отрицательных циклов: %d",
		len(facts), len(repairs), unparsable, negative)

	return OpportunityBatch{
		Facts:                facts,
		Repairs:              repairs,
		UnparsableDates:      unparsable,
		UnrepairableClosures: unrepairable,
	}
}

// NormalizeDates разбирает даты создания и закрытия. Нераспознанное
// значение становится nil; каждая строка обрабатывается независимо.
// Второе значение - количество непустых, но нераспознанных дат.
func (p *OpportunityFactsProcessor) NormalizeDates(raw []models.RawOpportunity) ([]models.Opportunity, int) {
	opportunities := make([]models.Opportunity, 0, len(raw))
	unparsable := 0

	for _, r := range raw {
		created := ParseDate(r.CreatedDate)
		if created == nil && !isNullToken(r.CreatedDate) {
			unparsable++
			p.logger.Debug("Сделка %s: нераспознанная дата создания %q", r.ID, r.CreatedDate)
		}
		closed := ParseDate(r.ClosedDate)
		if closed == nil && !isNullToken(r.ClosedDate) {
			unparsable++
			p.logger.Debug("Сделка %s: нераспознанная дата закрытия %q", r.ID, r.ClosedDate)
		}

		opportunities = append(opportunities, models.Opportunity{
			ID:           r.ID,
			CustomerID:   r.CustomerID,
			Salesperson:  r.Salesperson,
			Product:      r.Product,
			Amount:       r.Amount,
			Stage:        r.Stage,
			Probability:  r.Probability,
			CreationDate: created,
			ClosureDate:  closed,
		})
	}

	return opportunities, unparsable
}

// RepairClosureDates назначает дату закрытия сделкам в закрытой стадии,
// у которых она отсутствует: дата создания плюс случайное число дней из
// [MinRepairDays, MaxRepairDays]. Открытые сделки не трогаются.
// Сделку без даты создания восстановить нельзя, она остаётся без даты закрытия.
func (p *OpportunityFactsProcessor) RepairClosureDates(opportunities []models.Opportunity) ([]models.Opportunity, []models.ClosureRepair, int) {
	result := make([]models.Opportunity, len(opportunities))
	copy(result, opportunities)

	var repairs []models.ClosureRepair
	unrepairable := 0

	for i := range result {
		opp := &result[i]
		if !opp.Stage.IsClosed() || opp.HasClosureDate() {
			continue
		}
		if opp.CreationDate == nil {
			unrepairable++
			p.logger.Warn("Сделка %s в стадии %q без даты создания: дату закрытия восстановить нельзя", opp.ID, opp.Stage)
			continue
		}

		days := MinRepairDays + p.rng.IntN(MaxRepairDays-MinRepairDays+1)
		closure := opp.CreationDate.AddDate(0, 0, days)
		opp.ClosureDate = &closure

		repairs = append(repairs, models.ClosureRepair{
			OpportunityID: opp.ID,
			Stage:         opp.Stage,
			CreationDate:  *opp.CreationDate,
			SyntheticDays: days,
			ClosureDate:   closure,
		})
	}

	if len(repairs) > 0 {
		p.logger.Info("Обнаружено %d закрытых сделок без даты закрытия, даты сгенерированы", len(repairs))
	}
	return result, repairs, unrepairable
}

// DeriveOpportunityFact вычисляет производные поля сделки. Функция чистая:
// повторный вызов на той же сделке даёт тот же результат.
func DeriveOpportunityFact(opp models.Opportunity) models.OpportunityFact {
	fact := models.OpportunityFact{
		Opportunity: opp,
		DealSize:    CategorizeAmount(opp.Amount),
	}

	if opp.CreationDate != nil {
		month := int(opp.CreationDate.Month())
		year := opp.CreationDate.Year()
		fact.CreationMonth = &month
		fact.CreationYear = &year
	}

	if opp.CreationDate != nil && opp.ClosureDate != nil {
		days := DaysBetween(*opp.CreationDate, *opp.ClosureDate)
		fact.SalesCycleDays = &days
	}

	if opp.HasClosureDate() {
		fact.IsClosedFlag = 1
	}

	return fact
}
