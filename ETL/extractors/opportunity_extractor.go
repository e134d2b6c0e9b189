package extractors

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/go-playground/validator/v10"
)

// OpportunityExtractor извлекает сделки из сырой выгрузки
type OpportunityExtractor struct {
	logger   *utils.ETLLogger
	validate *validator.Validate
}

// NewOpportunityExtractor создает новый экземпляр OpportunityExtractor
func NewOpportunityExtractor(logger *utils.ETLLogger, validate *validator.Validate) *OpportunityExtractor {
	return &OpportunityExtractor{
		logger:   logger,
		validate: validate,
	}
}

// ExtractOpportunities читает файл сделок. Даты остаются текстом и
// разбираются на фазе Transform; отклоняются только строки с неверной
// структурой (ID, сумма, вероятность, стадия).
func (e *OpportunityExtractor) ExtractOpportunities(path string) ([]models.RawOpportunity, int, error) {
	e.logger.Debug("Начало извлечения сделок из %s", path)

	table, err := readCSVTable(path, models.OpportunityHeaders)
	if err != nil {
		return nil, 0, err
	}

	opportunities := make([]models.RawOpportunity, 0, len(table.rows))
	seen := make(map[string]bool, len(table.rows))
	rejected := 0

	for i, row := range table.rows {
		line := i + 2
		opp, err := e.parseRow(table, row)
		if err == nil && seen[opp.ID] {
			err = fmt.Errorf("повторный ID_Oportunidad %q", opp.ID)
		}
		if err != nil {
			e.logger.Warn("Строка %d файла сделок отклонена: %v", line, err)
			rejected++
			continue
		}
		seen[opp.ID] = true
		opportunities = append(opportunities, opp)
	}

	e.logger.Debug("Извлечено %d сделок, отклонено %d", len(opportunities), rejected)
	return opportunities, rejected, nil
}

func (e *OpportunityExtractor) parseRow(table *csvTable, row []string) (models.RawOpportunity, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(table.value(row, "Monto")), 64)
	if err != nil {
		return models.RawOpportunity{}, fmt.Errorf("некорректная сумма: %w", err)
	}
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return models.RawOpportunity{}, fmt.Errorf("некорректная сумма: %v", amount)
	}
	probability, err := parseProbability(table.value(row, "Probabilidad"))
	if err != nil {
		return models.RawOpportunity{}, err
	}
	stage, err := models.ParseStage(table.value(row, "Etapa"))
	if err != nil {
		return models.RawOpportunity{}, err
	}

	opp := models.RawOpportunity{
		ID:          strings.TrimSpace(table.value(row, "ID_Oportunidad")),
		CustomerID:  strings.TrimSpace(table.value(row, "ID_Cliente")),
		Salesperson: table.value(row, "Vendedor"),
		Product:     table.value(row, "Producto"),
		Amount:      amount,
		Stage:       stage,
		Probability: probability,
		CreatedDate: table.value(row, "Fecha_Creacion_Oportunidad"),
		ClosedDate:  table.value(row, "Fecha_Cierre_Real"),
	}
	if err := e.validate.Struct(opp); err != nil {
		return models.RawOpportunity{}, err
	}
	return opp, nil
}

// parseProbability принимает целое число, в том числе записанное как "60.0"
func parseProbability(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("некорректная вероятность %q", s)
	}
	return int(f), nil
}
