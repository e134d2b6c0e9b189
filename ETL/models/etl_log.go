package models

import (
	"time"
)

// Статусы запуска ETL
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusPartial    = "partial"
	RunStatusFailed     = "failed"
)

// ETLRunLog представляет запись о запуске ETL процесса
type ETLRunLog struct {
	ID                     int        `gorm:"primaryKey;autoIncrement" json:"id"`
	StartTime              time.Time  `gorm:"not null" json:"start_time"`
	EndTime                *time.Time `json:"end_time,omitempty"`
	Status                 string     `gorm:"size:16;not null;default:in_progress;index" json:"status"` // "success", "partial", "failed", "in_progress"
	CustomersProcessed     int        `gorm:"default:0" json:"customers_processed"`
	OpportunitiesProcessed int        `gorm:"default:0" json:"opportunities_processed"`
	ClosuresRepaired       int        `gorm:"default:0" json:"closures_repaired"`
	ErrorMessage           string     `gorm:"type:text" json:"error_message,omitempty"`
	ExecutionTimeSeconds   float64    `json:"execution_time_seconds"`
}

func (ETLRunLog) TableName() string {
	return "etl_run_log"
}

// RunCounts количество обработанных объектов за запуск
type RunCounts struct {
	CustomersProcessed     int
	OpportunitiesProcessed int
	ClosuresRepaired       int
}

// ETLLogRepository представляет репозиторий для работы с логами ETL
type ETLLogRepository interface {
	// CreateETLLogTable создает таблицу журнала, если она еще не существует
	CreateETLLogTable() error

	// CreateLogEntry создает новую запись о запуске ETL
	CreateLogEntry(startTime time.Time) (int, error)

	// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
	UpdateLogEntrySuccess(id int, endTime time.Time, counts RunCounts) error

	// UpdateLogEntryPartial обновляет запись, когда часть шагов завершилась ошибкой
	UpdateLogEntryPartial(id int, endTime time.Time, counts RunCounts, errorMessage string) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
	UpdateLogEntryFailure(id int, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
	GetLastSuccessfulRun() (*ETLRunLog, error)

	// GetETLRunStats получает статистику о запусках ETL за определенный период
	GetETLRunStats(days int) ([]ETLRunLog, error)

	// GetETLStateMonitor получает сводку о состоянии ETL процесса
	GetETLStateMonitor() (*ETLStateMonitor, error)
}

// ETLStateMonitor предоставляет информацию о текущем состоянии ETL процесса
type ETLStateMonitor struct {
	LastSuccessfulRun       *ETLRunLog `json:"last_successful_run"`
	LastFailedRun           *ETLRunLog `json:"last_failed_run,omitempty"`
	CurrentRun              *ETLRunLog `json:"current_run,omitempty"`
	TotalSuccessfulRuns     int        `json:"total_successful_runs"`
	TotalPartialRuns        int        `json:"total_partial_runs"`
	TotalFailedRuns         int        `json:"total_failed_runs"`
	AvgExecutionTimeSeconds float64    `json:"avg_execution_time_seconds"`
	TotalItemsProcessed     int        `json:"total_items_processed"` // клиенты + сделки за успешные запуски
}
