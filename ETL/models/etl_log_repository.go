package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormETLLogRepository реализация ETLLogRepository поверх gorm
type GormETLLogRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormETLLogRepository создает новый экземпляр GormETLLogRepository
func NewGormETLLogRepository(db *gorm.DB) *GormETLLogRepository {
	return &GormETLLogRepository{
		db:  db,
		now: time.Now,
	}
}

// CreateETLLogTable создает таблицу для логирования ETL процесса, если она не существует
func (r *GormETLLogRepository) CreateETLLogTable() error {
	if err := r.db.AutoMigrate(&ETLRunLog{}); err != nil {
		return fmt.Errorf("ошибка при создании таблицы etl_run_log: %w", err)
	}
	return nil
}

// CreateLogEntry создает новую запись о запуске ETL
func (r *GormETLLogRepository) CreateLogEntry(startTime time.Time) (int, error) {
	entry := ETLRunLog{
		StartTime: startTime,
		Status:    RunStatusInProgress,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("ошибка при создании записи о запуске ETL: %w", err)
	}
	return entry.ID, nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
func (r *GormETLLogRepository) UpdateLogEntrySuccess(id int, endTime time.Time, counts RunCounts) error {
	return r.finish(id, endTime, RunStatusSuccess, &counts, "")
}

// UpdateLogEntryPartial обновляет запись при частичном завершении ETL
func (r *GormETLLogRepository) UpdateLogEntryPartial(id int, endTime time.Time, counts RunCounts, errorMessage string) error {
	return r.finish(id, endTime, RunStatusPartial, &counts, errorMessage)
}

// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
func (r *GormETLLogRepository) UpdateLogEntryFailure(id int, endTime time.Time, errorMessage string) error {
	return r.finish(id, endTime, RunStatusFailed, nil, errorMessage)
}

func (r *GormETLLogRepository) finish(id int, endTime time.Time, status string, counts *RunCounts, errorMessage string) error {
	// Рассчитываем время выполнения в секундах
	var entry ETLRunLog
	if err := r.db.First(&entry, id).Error; err != nil {
		return fmt.Errorf("ошибка при получении времени начала ETL: %w", err)
	}

	updates := map[string]interface{}{
		"end_time":               endTime,
		"status":                 status,
		"error_message":          errorMessage,
		"execution_time_seconds": endTime.Sub(entry.StartTime).Seconds(),
	}
	if counts != nil {
		updates["customers_processed"] = counts.CustomersProcessed
		updates["opportunities_processed"] = counts.OpportunitiesProcessed
		updates["closures_repaired"] = counts.ClosuresRepaired
	}

	if err := r.db.Model(&ETLRunLog{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске ETL: %w", err)
	}
	return nil
}

// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
func (r *GormETLLogRepository) GetLastSuccessfulRun() (*ETLRunLog, error) {
	return r.lastWithStatus(RunStatusSuccess)
}

func (r *GormETLLogRepository) lastWithStatus(status string) (*ETLRunLog, error) {
	var entry ETLRunLog
	err := r.db.Where("status = ?", status).Order("start_time DESC").Order("id DESC").First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка при получении последнего запуска ETL со статусом %s: %w", status, err)
	}
	return &entry, nil
}

// GetETLRunStats получает статистику о запусках ETL за определенный период
func (r *GormETLLogRepository) GetETLRunStats(days int) ([]ETLRunLog, error) {
	since := r.now().AddDate(0, 0, -days)

	var logs []ETLRunLog
	err := r.db.Where("start_time >= ?", since).Order("start_time DESC").Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики запусков ETL: %w", err)
	}
	return logs, nil
}

// GetETLStateMonitor получает информацию о текущем состоянии ETL процесса
func (r *GormETLLogRepository) GetETLStateMonitor() (*ETLStateMonitor, error) {
	lastSuccessful, err := r.lastWithStatus(RunStatusSuccess)
	if err != nil {
		return nil, err
	}
	lastFailed, err := r.lastWithStatus(RunStatusFailed)
	if err != nil {
		return nil, err
	}
	currentRun, err := r.lastWithStatus(RunStatusInProgress)
	if err != nil {
		return nil, err
	}

	countByStatus := func(status string) (int, error) {
		var n int64
		if err := r.db.Model(&ETLRunLog{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return 0, fmt.Errorf("ошибка при подсчете запусков ETL (%s): %w", status, err)
		}
		return int(n), nil
	}

	monitor := &ETLStateMonitor{
		LastSuccessfulRun: lastSuccessful,
		LastFailedRun:     lastFailed,
		CurrentRun:        currentRun,
	}
	if monitor.TotalSuccessfulRuns, err = countByStatus(RunStatusSuccess); err != nil {
		return nil, err
	}
	if monitor.TotalPartialRuns, err = countByStatus(RunStatusPartial); err != nil {
		return nil, err
	}
	if monitor.TotalFailedRuns, err = countByStatus(RunStatusFailed); err != nil {
		return nil, err
	}

	var agg struct {
		AvgSeconds float64
		TotalItems int64
	}
	err = r.db.Model(&ETLRunLog{}).
		Select("COALESCE(AVG(execution_time_seconds), 0) AS avg_seconds, "+
			"COALESCE(SUM(customers_processed + opportunities_processed), 0) AS total_items").
		Where("status = ?", RunStatusSuccess).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики запусков ETL: %w", err)
	}
	monitor.AvgExecutionTimeSeconds = agg.AvgSeconds
	monitor.TotalItemsProcessed = int(agg.TotalItems)

	return monitor, nil
}
