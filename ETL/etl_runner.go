package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/config"
	"github.com/LilVoxy/crm_warehouse/ETL/extractors"
	"github.com/LilVoxy/crm_warehouse/ETL/load"
	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/routes"
	"github.com/LilVoxy/crm_warehouse/ETL/transform"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

type ETLRunner struct {
	config      config.ETLConfig
	logger      *utils.ETLLogger
	metrics     *utils.ETLMetrics
	tracing     *utils.Tracing
	extractor   *extractors.Extractor
	transformer *transform.Transformer
	exporter    *load.ExcelExporter

	// Хранилище подключается лениво: его недоступность не мешает
	// извлечению и преобразованию, а только публикации
	mu   sync.Mutex
	dest *destination
}

// destination подключение к хранилищу и зависящие от него компоненты
type destination struct {
	db          *gorm.DB
	loadManager *load.LoadManager
	etlLogRepo  models.ETLLogRepository
}

// RunReport итог одного запуска ETL
type RunReport struct {
	Status      string
	Transformed *models.TransformedData
	Load        load.LoadResult
	Warnings    []error
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner(cfg config.ETLConfig, logger *utils.ETLLogger) (*ETLRunner, error) {
	logger.Info("Инициализация ETL Runner")

	tracing, err := utils.NewTracing(cfg.TraceFile)
	if err != nil {
		return nil, err
	}

	return &ETLRunner{
		config:      cfg,
		logger:      logger,
		metrics:     utils.NewETLMetrics(),
		tracing:     tracing,
		extractor:   extractors.NewExtractor(logger, cfg.Source.CustomersFile, cfg.Source.OpportunitiesFile),
		transformer: transform.NewTransformer(logger, transform.NewRandomSource(cfg.RepairSeed), time.Now),
		exporter:    load.NewExcelExporter(logger),
	}, nil
}

// Close закрывает соединение с хранилищем и останавливает трассировку
func (r *ETLRunner) Close() {
	r.logger.Info("Завершение работы ETL Runner")
	r.mu.Lock()
	dest := r.dest
	r.mu.Unlock()
	if dest != nil {
		if err := config.CloseDestination(dest.db); err != nil {
			r.logger.Error("Ошибка при закрытии соединения с хранилищем: %v", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.tracing.Shutdown(ctx); err != nil {
		r.logger.Error("%v", err)
	}
	r.logger.Sync()
}

// connect подключается к хранилищу, если подключения ещё нет
func (r *ETLRunner) connect() (*destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dest != nil {
		return r.dest, nil
	}

	db, err := config.ConnectDestination(r.config.Destination, r.logger)
	if err != nil {
		return nil, err
	}

	repo := models.NewGormETLLogRepository(db)
	if err := repo.CreateETLLogTable(); err != nil {
		_ = config.CloseDestination(db)
		return nil, err
	}

	r.dest = &destination{
		db:          db,
		etlLogRepo:  repo,
		loadManager: load.NewLoadManager(load.NewWarehouseLoader(db, r.logger, r.config.BatchSize), r.logger, r.metrics),
	}
	return r.dest, nil
}

// ExecuteETL выполняет полный ETL процесс. Ошибки извлечения, загрузки и
// экспорта не прерывают запуск: они логируются как предупреждения и
// попадают в отчёт. Ошибка возвращается, только если ничего не удалось
// опубликовать.
func (r *ETLRunner) ExecuteETL(ctx context.Context) (*RunReport, error) {
	r.logger.LogETLStart()
	startTime := time.Now()
	report := &RunReport{}

	ctx, span := r.tracing.Start(ctx, "etl.run")
	defer span.End()

	// Журнал запусков живёт в хранилище; без подключения запуск продолжается без журнала
	var repo models.ETLLogRepository
	var loadManager *load.LoadManager
	if dest, err := r.connect(); err != nil {
		r.logger.Warn("Хранилище недоступно: %v", err)
		report.Warnings = append(report.Warnings, fmt.Errorf("подключение к хранилищу: %w", err))
	} else {
		repo, loadManager = dest.etlLogRepo, dest.loadManager
	}

	logID := 0
	if repo != nil {
		id, err := repo.CreateLogEntry(startTime)
		if err != nil {
			r.logger.Error("Ошибка при создании записи в журнале ETL: %v", err)
		} else {
			logID = id
		}
	}

	// 1. Фаза извлечения данных (Extract)
	phaseStart := time.Now()
	_, extractSpan := r.tracing.Start(ctx, "etl.extract")
	extractedData := r.extractor.Extract()
	extractSpan.SetAttributes(
		attribute.Int("customers", len(extractedData.Customers)),
		attribute.Int("opportunities", len(extractedData.Opportunities)),
	)
	extractSpan.End()
	r.metrics.ObservePhase(utils.PhaseExtract, phaseStart)
	r.recordExtract(extractedData, report)

	if !extractedData.HasCustomers() && !extractedData.HasOpportunities() {
		report.Status = models.RunStatusFailed
		err := errors.Join(report.Warnings...)
		span.SetStatus(codes.Error, "extract failed")
		r.finishRun(repo, logID, report, err)
		r.pushMetrics()
		return report, fmt.Errorf("ошибка в фазе Extract: %w", err)
	}

	// 2. Фаза трансформации данных (Transform)
	phaseStart = time.Now()
	_, transformSpan := r.tracing.Start(ctx, "etl.transform")
	transformedData := r.transformer.Transform(extractedData)
	transformSpan.SetAttributes(attribute.Int("closures_repaired", transformedData.Metadata.ClosuresRepaired))
	transformSpan.End()
	r.metrics.ObservePhase(utils.PhaseTransform, phaseStart)
	r.metrics.ClosuresRepaired.Add(float64(transformedData.Metadata.ClosuresRepaired))
	r.metrics.UnparsableDates.Add(float64(transformedData.Metadata.UnparsableDates))
	report.Transformed = transformedData

	// 3. Фаза загрузки данных (Load)
	phaseStart = time.Now()
	loadCtx, loadSpan := r.tracing.Start(ctx, "etl.load")
	if loadManager == nil {
		r.metrics.PhaseFailures.WithLabelValues(utils.PhaseLoad).Inc()
		r.logger.Warn("Публикация пропущена: нет подключения к хранилищу, преобразованные данные не сохранены")
		loadSpan.SetStatus(codes.Error, "no destination")
	} else {
		result, err := loadManager.Load(loadCtx, transformedData)
		report.Load = result
		if err != nil {
			r.metrics.PhaseFailures.WithLabelValues(utils.PhaseLoad).Inc()
			report.Warnings = append(report.Warnings, err)
			loadSpan.SetStatus(codes.Error, err.Error())
		}
	}
	loadSpan.End()
	r.metrics.ObservePhase(utils.PhaseLoad, phaseStart)

	// 4. Экспорт в Excel (необязательный)
	if r.config.ExportXLSX != "" {
		phaseStart = time.Now()
		if err := r.exporter.Export(ctx, r.config.ExportXLSX, transformedData); err != nil {
			r.metrics.PhaseFailures.WithLabelValues(utils.PhaseExport).Inc()
			r.logger.Warn("Ошибка при экспорте в Excel: %v", err)
			report.Warnings = append(report.Warnings, err)
		}
		r.metrics.ObservePhase(utils.PhaseExport, phaseStart)
	}

	switch {
	case len(report.Warnings) == 0 && loadManager != nil:
		report.Status = models.RunStatusSuccess
		r.metrics.LastSuccess.SetToCurrentTime()
	case report.Load.TablesPublished > 0:
		report.Status = models.RunStatusPartial
	default:
		report.Status = models.RunStatusFailed
	}

	runErr := errors.Join(report.Warnings...)
	r.finishRun(repo, logID, report, runErr)
	r.pushMetrics()

	r.logger.LogETLComplete(startTime,
		transformedData.Metadata.CustomersProcessed,
		transformedData.Metadata.OpportunitiesProcessed,
		transformedData.Metadata.ClosuresRepaired)

	if report.Status == models.RunStatusFailed {
		span.SetStatus(codes.Error, "nothing published")
		return report, fmt.Errorf("ETL завершился без публикации: %w", runErr)
	}
	return report, nil
}

func (r *ETLRunner) recordExtract(data *models.ExtractedData, report *RunReport) {
	if data.CustomersErr != nil {
		r.metrics.PhaseFailures.WithLabelValues(utils.PhaseExtract).Inc()
		report.Warnings = append(report.Warnings, fmt.Errorf("извлечение клиентов: %w", data.CustomersErr))
	}
	if data.OpportunitiesErr != nil {
		r.metrics.PhaseFailures.WithLabelValues(utils.PhaseExtract).Inc()
		report.Warnings = append(report.Warnings, fmt.Errorf("извлечение сделок: %w", data.OpportunitiesErr))
	}
	r.metrics.RecordsExtracted.WithLabelValues(models.CustomerDimensionTable).Add(float64(len(data.Customers)))
	r.metrics.RecordsExtracted.WithLabelValues(models.OpportunityFactTable).Add(float64(len(data.Opportunities)))
	r.metrics.RecordsRejected.WithLabelValues(models.CustomerDimensionTable).Add(float64(data.RejectedCustomers))
	r.metrics.RecordsRejected.WithLabelValues(models.OpportunityFactTable).Add(float64(data.RejectedOpportunities))
}

// finishRun обновляет запись в журнале ETL по итогам запуска
func (r *ETLRunner) finishRun(repo models.ETLLogRepository, logID int, report *RunReport, runErr error) {
	if repo == nil || logID == 0 {
		return
	}

	var counts models.RunCounts
	if report.Transformed != nil {
		counts = models.RunCounts{
			CustomersProcessed:     report.Load.CustomersPublished,
			OpportunitiesProcessed: report.Load.OpportunitiesPublished,
			ClosuresRepaired:       report.Transformed.Metadata.ClosuresRepaired,
		}
	}

	var err error
	endTime := time.Now()
	switch report.Status {
	case models.RunStatusSuccess:
		err = repo.UpdateLogEntrySuccess(logID, endTime, counts)
	case models.RunStatusPartial:
		err = repo.UpdateLogEntryPartial(logID, endTime, counts, runErr.Error())
	default:
		msg := "неизвестная ошибка"
		if runErr != nil {
			msg = runErr.Error()
		}
		err = repo.UpdateLogEntryFailure(logID, endTime, msg)
	}
	if err != nil {
		r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", err)
	}
}

func (r *ETLRunner) pushMetrics() {
	if r.config.PushgatewayURL == "" {
		return
	}
	if err := r.metrics.Push(r.config.PushgatewayURL, "crm_etl"); err != nil {
		r.logger.Warn("%v", err)
	}
}

// StartScheduler запускает планировщик для регулярного выполнения ETL.
// Запуски не перекрываются: следующий ждёт завершения предыдущего.
func (r *ETLRunner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	r.logger.Info("Запуск планировщика ETL с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).Do(func() {
		r.logger.Info("Запланированный запуск ETL процесса")
		if _, err := r.ExecuteETL(ctx); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного ETL: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка при настройке планировщика: %w", err)
	}

	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	scheduler.Stop()
	r.logger.Info("Планировщик ETL остановлен")
	return nil
}

// StatusHandler возвращает маршрутизатор API статуса
func (r *ETLRunner) StatusHandler() (http.Handler, error) {
	dest, err := r.connect()
	if err != nil {
		return nil, err
	}
	router := mux.NewRouter()
	routes.SetupRoutes(router, dest.etlLogRepo, r.metrics.Registry)
	return router, nil
}

// serveStatus обслуживает API статуса до отмены контекста
func (r *ETLRunner) serveStatus(ctx context.Context) error {
	handler, err := r.StatusHandler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              r.config.StatusAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	r.logger.Info("API статуса ETL слушает %s", r.config.StatusAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка HTTP-сервера статуса: %w", err)
	}
	return nil
}

// signalContext отменяется при получении сигнала завершения
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func summarize(report *RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "статус=%s", report.Status)
	if report.Transformed != nil {
		m := report.Transformed.Metadata
		fmt.Fprintf(&b, " клиентов=%d сделок=%d восстановлено=%d", m.CustomersProcessed, m.OpportunitiesProcessed, m.ClosuresRepaired)
	}
	fmt.Fprintf(&b, " опубликовано=%d/%d", report.Load.CustomersPublished, report.Load.OpportunitiesPublished)
	return b.String()
}
