package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/golang/snappy"
)

// WriteCustomers записывает клиентов в CSV; путь с суффиксом .sz сжимается snappy
func WriteCustomers(path string, customers []models.RawCustomer) error {
	return writeCSV(path, models.CustomerHeaders, len(customers), func(i int) []string {
		c := customers[i]
		return []string{
			c.ID, c.CompanyName, c.ContactName, c.Email, c.City,
			string(c.Industry), string(c.LeadSource), c.RegisteredDate,
		}
	})
}

// WriteOpportunities записывает сделки в CSV; путь с суффиксом .sz сжимается snappy
func WriteOpportunities(path string, opportunities []models.RawOpportunity) error {
	return writeCSV(path, models.OpportunityHeaders, len(opportunities), func(i int) []string {
		o := opportunities[i]
		return []string{
			o.ID, o.CustomerID, o.Salesperson, o.Product,
			strconv.FormatFloat(o.Amount, 'f', 2, 64),
			string(o.Stage), strconv.Itoa(o.Probability),
			o.CreatedDate, o.ClosedDate,
		}
	})
}

func writeCSV(path string, header []string, n int, row func(i int) []string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("не удалось создать файл %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	var dst io.Writer = file
	if strings.HasSuffix(path, ".sz") {
		sw := snappy.NewBufferedWriter(file)
		defer func() {
			if cerr := sw.Close(); err == nil && cerr != nil {
				err = cerr
			}
		}()
		dst = sw
	}

	w := csv.NewWriter(dst)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("ошибка записи заголовка %s: %w", path, err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("ошибка записи строки %d в %s: %w", i+1, path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", path, err)
	}
	return nil
}
