package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ETLLogger представляет логгер для ETL-процесса
type ETLLogger struct {
	sugar     *zap.SugaredLogger
	base      *zap.Logger
	isVerbose bool
}

// NewETLLogger создает логгер, который пишет в консоль и, если задан logDir,
// в дневной файл etl_log_YYYY-MM-DD.log в формате JSON
func NewETLLogger(verbose bool, logDir string) (*ETLLogger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), level),
	}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать каталог логов: %w", err)
		}
		logFileName := filepath.Join(logDir, fmt.Sprintf("etl_log_%s.log", time.Now().Format("2006-01-02")))
		file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("не удалось открыть или создать файл лога: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), level))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &ETLLogger{sugar: base.Sugar(), base: base, isVerbose: verbose}, nil
}

// NewETLLoggerFromZap оборачивает готовый zap.Logger
func NewETLLoggerFromZap(base *zap.Logger, verbose bool) *ETLLogger {
	base = base.WithOptions(zap.AddCallerSkip(1))
	return &ETLLogger{sugar: base.Sugar(), base: base, isVerbose: verbose}
}

// NewNopLogger возвращает логгер, который ничего не пишет
func NewNopLogger() *ETLLogger {
	return NewETLLoggerFromZap(zap.NewNop(), false)
}

// Zap возвращает исходный zap.Logger для библиотек, которым он нужен напрямую
func (l *ETLLogger) Zap() *zap.Logger {
	return l.base
}

// Sync сбрасывает буферы логгера
func (l *ETLLogger) Sync() {
	_ = l.base.Sync()
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warn логирует предупреждение
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.sugar.Debugf(format, v...)
}

// LogETLStart логирует начало ETL-процесса
func (l *ETLLogger) LogETLStart() {
	l.Info("Начало выполнения ETL-процесса")
}

// LogETLComplete логирует завершение ETL-процесса
func (l *ETLLogger) LogETLComplete(startTime time.Time, customers, opportunities, repaired int) {
	l.Info("ETL-процесс завершён. Длительность: %v", time.Since(startTime))
	l.Info("Обработано: %d клиентов, %d сделок, восстановлено дат закрытия: %d", customers, opportunities, repaired)
}

// LogExtractStart логирует начало фазы извлечения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Извлечение данных)")
}

// LogExtractComplete логирует завершение фазы извлечения данных
func (l *ETLLogger) LogExtractComplete(customers, opportunities int, duration time.Duration) {
	l.Info("Фаза Extract завершена. Длительность: %v", duration)
	l.Info("Извлечено: %d клиентов, %d сделок", customers, opportunities)
}
