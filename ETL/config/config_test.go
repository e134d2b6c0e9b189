package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, Validate(DefaultETLConfig))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultETLConfig
	cfg.Destination.Driver = "oracle"
	assert.Error(t, Validate(cfg))

	cfg = DefaultETLConfig
	cfg.Destination.Driver = "sqlite"
	assert.Error(t, Validate(cfg))
	cfg.Destination.Path = "warehouse.db"
	assert.NoError(t, Validate(cfg))

	cfg = DefaultETLConfig
	cfg.BatchSize = 0
	assert.Error(t, Validate(cfg))

	cfg = DefaultETLConfig
	cfg.Source.OpportunitiesFile = ""
	assert.Error(t, Validate(cfg))
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm_etl.yml")
	content := `
destination:
  driver: sqlite
  path: /tmp/crm_warehouse.db
source:
  customers_file: data/crm_clientes_raw.csv.sz
run_interval: 1h
repair_seed: 17
export_xlsx: out/crm_warehouse.xlsx
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CRM_ETL_BATCH_SIZE", "50")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Destination.Driver)
	assert.Equal(t, "/tmp/crm_warehouse.db", cfg.Destination.Path)
	assert.Equal(t, "data/crm_clientes_raw.csv.sz", cfg.Source.CustomersFile)
	assert.Equal(t, DefaultETLConfig.Source.OpportunitiesFile, cfg.Source.OpportunitiesFile)
	assert.Equal(t, time.Hour, cfg.RunInterval)
	assert.Equal(t, uint64(17), cfg.RepairSeed)
	assert.Equal(t, "out/crm_warehouse.xlsx", cfg.ExportXLSX)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, DefaultETLConfig.Generator, cfg.Generator)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres"} {
		cfg := DefaultDestinationConfig
		cfg.Driver = driver
		d, err := Dialector(cfg)
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	cfg := DefaultDestinationConfig
	cfg.Driver = "sqlite"
	cfg.Path = filepath.Join(t.TempDir(), "w.db")
	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	cfg.Driver = "mssql"
	_, err = Dialector(cfg)
	assert.Error(t, err)
}

func TestGormLoggerWritesToETLLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := utils.NewETLLoggerFromZap(zap.New(core), false)

	gormLogger, err := NewGormLogger(log)
	require.NoError(t, err)
	gormLogger.Error(context.Background(), "сбой записи в %s", "fact_ventas")

	entries := logs.FilterLoggerName("gorm").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "сбой записи в fact_ventas")
}

func TestConnectDestinationUsesETLLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := utils.NewETLLoggerFromZap(zap.New(core), false)

	cfg := DefaultDestinationConfig
	cfg.Driver = "sqlite"
	cfg.Path = filepath.Join(t.TempDir(), "w.db")
	db, err := ConnectDestination(cfg, log)
	require.NoError(t, err)
	defer CloseDestination(db)

	err = db.First(&models.CustomerDimension{}).Error
	require.Error(t, err)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NotZero(t, logs.FilterLoggerName("gorm").Len())
}
