package load

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm/schema"
)

// ExcelExporter сохраняет копию опубликованных таблиц в книгу Excel
// для отчётов, которые не подключаются к хранилищу напрямую
type ExcelExporter struct {
	logger *utils.ETLLogger
	cache  *sync.Map
}

// NewExcelExporter создает новый экземпляр ExcelExporter
func NewExcelExporter(logger *utils.ETLLogger) *ExcelExporter {
	return &ExcelExporter{
		logger: logger,
		cache:  &sync.Map{},
	}
}

// Export перезаписывает книгу path листами dim_clientes и fact_ventas.
// Столбцы совпадают со столбцами таблиц хранилища.
func (e *ExcelExporter) Export(ctx context.Context, path string, data *models.TransformedData) error {
	startTime := time.Now()
	f := excelize.NewFile()
	defer f.Close()

	if data.Customers != nil {
		if err := writeSheet(ctx, f, e.cache, models.CustomerDimensionTable, data.Customers); err != nil {
			return err
		}
	}
	if data.Opportunities != nil {
		if err := writeSheet(ctx, f, e.cache, models.OpportunityFactTable, data.Opportunities); err != nil {
			return err
		}
	}
	if data.Customers != nil || data.Opportunities != nil {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("ошибка при удалении листа по умолчанию: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("ошибка при сохранении книги %s: %w", path, err)
	}

	e.logger.Info("Экспорт в %s завершён. Длительность: %v", path, time.Since(startTime))
	return nil
}

func writeSheet[T any](ctx context.Context, f *excelize.File, cache *sync.Map, sheet string, rows []T) error {
	var model T
	sch, err := schema.Parse(&model, cache, schema.NamingStrategy{})
	if err != nil {
		return fmt.Errorf("ошибка при разборе схемы %s: %w", sheet, err)
	}

	var fields []*schema.Field
	header := make([]interface{}, 0, len(sch.Fields))
	for _, field := range sch.Fields {
		if field.DBName == "" {
			continue
		}
		fields = append(fields, field)
		header = append(header, field.DBName)
	}

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("ошибка при создании листа %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("ошибка при записи заголовка %s: %w", sheet, err)
	}

	for i, row := range rows {
		rv := reflect.ValueOf(row)
		values := make([]interface{}, 0, len(fields))
		for _, field := range fields {
			v, _ := field.ValueOf(ctx, rv)
			values = append(values, cellValue(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("ошибка при записи строки %d листа %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

// cellValue приводит значение поля к виду, понятному Excel:
// nil-указатели становятся пустыми ячейками, даты - текстом ГГГГ-ММ-ДД
func cellValue(v interface{}) interface{} {
	switch x := v.(type) {
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.Format("2006-01-02")
	case time.Time:
		return x.Format("2006-01-02")
	case *int:
		if x == nil {
			return nil
		}
		return *x
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return v
}
