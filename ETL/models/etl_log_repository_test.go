package models

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T, now time.Time) *GormETLLogRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := NewGormETLLogRepository(db)
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.CreateETLLogTable())
	return repo
}

func TestETLLogLifecycle(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, base.Add(time.Hour))

	last, err := repo.GetLastSuccessfulRun()
	require.NoError(t, err)
	assert.Nil(t, last)

	okID, err := repo.CreateLogEntry(base)
	require.NoError(t, err)

	monitor, err := repo.GetETLStateMonitor()
	require.NoError(t, err)
	require.NotNil(t, monitor.CurrentRun)
	assert.Equal(t, okID, monitor.CurrentRun.ID)

	require.NoError(t, repo.UpdateLogEntrySuccess(okID, base.Add(10*time.Second), RunCounts{
		CustomersProcessed:     3,
		OpportunitiesProcessed: 5,
		ClosuresRepaired:       2,
	}))

	partialID, err := repo.CreateLogEntry(base.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateLogEntryPartial(partialID, base.Add(2*time.Minute), RunCounts{CustomersProcessed: 3}, "нет столбца Etapa"))

	failedID, err := repo.CreateLogEntry(base.Add(2 * time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateLogEntryFailure(failedID, base.Add(3*time.Minute), "хранилище недоступно"))

	last, err = repo.GetLastSuccessfulRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, okID, last.ID)
	assert.Equal(t, RunStatusSuccess, last.Status)
	assert.Equal(t, 3, last.CustomersProcessed)
	assert.Equal(t, 5, last.OpportunitiesProcessed)
	assert.Equal(t, 2, last.ClosuresRepaired)
	assert.InDelta(t, 10.0, last.ExecutionTimeSeconds, 0.001)
	require.NotNil(t, last.EndTime)

	monitor, err = repo.GetETLStateMonitor()
	require.NoError(t, err)
	assert.Nil(t, monitor.CurrentRun)
	require.NotNil(t, monitor.LastFailedRun)
	assert.Equal(t, "хранилище недоступно", monitor.LastFailedRun.ErrorMessage)
	assert.Equal(t, 1, monitor.TotalSuccessfulRuns)
	assert.Equal(t, 1, monitor.TotalPartialRuns)
	assert.Equal(t, 1, monitor.TotalFailedRuns)
	assert.Equal(t, 8, monitor.TotalItemsProcessed)
	assert.InDelta(t, 10.0, monitor.AvgExecutionTimeSeconds, 0.001)
}

func TestGetETLRunStatsFiltersByPeriod(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, now)

	_, err := repo.CreateLogEntry(now.AddDate(0, 0, -30))
	require.NoError(t, err)
	recent, err := repo.CreateLogEntry(now.AddDate(0, 0, -2))
	require.NoError(t, err)
	newest, err := repo.CreateLogEntry(now.AddDate(0, 0, -1))
	require.NoError(t, err)

	runs, err := repo.GetETLRunStats(7)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newest, runs[0].ID)
	assert.Equal(t, recent, runs[1].ID)
}

func TestUpdateUnknownEntryFails(t *testing.T) {
	repo := newTestRepository(t, time.Now())
	assert.Error(t, repo.UpdateLogEntryFailure(42, time.Now(), "нет записи"))
}
