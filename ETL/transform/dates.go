package transform

import (
	"strings"
	"time"
)

// Форматы дат, которые встречаются в выгрузках CRM, включая ISO без
// ведущих нулей. Даты через косую черту читаются как месяц/день/год.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-1-2",
	"2006-1-2 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
}

// ParseDate разбирает дату. Пустое или нераспознанное значение
// превращается в nil и никогда не приводит к ошибке.
func ParseDate(s string) *time.Time {
	if isNullToken(s) {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// isNullToken сообщает, обозначает ли значение отсутствие даты
func isNullToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nat", "nan", "none", "null":
		return true
	}
	return false
}

// DayStart отбрасывает время суток, оставляя календарную дату
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween количество целых календарных дней от from до to.
// Разница может выходить за диапазон time.Duration, поэтому
// вычитаются номера дней.
func DaysBetween(from, to time.Time) int {
	return int(DayStart(to).Unix()/secondsPerDay - DayStart(from).Unix()/secondsPerDay)
}
