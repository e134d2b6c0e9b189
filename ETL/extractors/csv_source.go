package extractors

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
)

// SnappySuffix расширение выгрузок, сжатых snappy (framing format)
const SnappySuffix = ".sz"

// csvTable содержимое CSV-файла с индексом столбцов по заголовку
type csvTable struct {
	index map[string]int
	rows  [][]string
}

// value возвращает значение столбца col в строке row без изменений
func (t *csvTable) value(row []string, col string) string {
	return row[t.index[col]]
}

// readCSVTable читает файл целиком и проверяет наличие обязательных столбцов.
// Порядок столбцов в файле не важен, имена должны совпадать буквально.
func readCSVTable(path string, required []string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл %s: %w", path, err)
	}
	defer file.Close()

	var src io.Reader = file
	if strings.HasSuffix(path, SnappySuffix) {
		src = snappy.NewReader(file)
	}

	reader := csv.NewReader(src)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("некорректный CSV в файле %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("файл %s пуст: отсутствует строка заголовков", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("в файле %s отсутствует столбец %q", path, col)
		}
	}

	return &csvTable{index: index, rows: records[1:]}, nil
}
