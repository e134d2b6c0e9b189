package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ETLConfig содержит конфигурацию для ETL-процесса
type ETLConfig struct {
	// Хранилище, в которое публикуются измерение и факты
	Destination DatabaseConfig `mapstructure:"destination"`

	// Исходные выгрузки CRM
	Source SourceConfig `mapstructure:"source"`

	// Интервал запуска ETL в режиме scheduled
	RunInterval time.Duration `mapstructure:"run_interval" validate:"gt=0"`

	// Размер пакета вставки при загрузке
	BatchSize int `mapstructure:"batch_size" validate:"gte=1"`

	// Зерно генератора синтетических длительностей; 0 означает недетерминированный источник
	RepairSeed uint64 `mapstructure:"repair_seed"`

	// Путь к книге Excel с копией опубликованных таблиц; пусто - экспорт отключен
	ExportXLSX string `mapstructure:"export_xlsx"`

	// Адрес Pushgateway для метрик пакетного запуска; пусто - метрики не отправляются
	PushgatewayURL string `mapstructure:"pushgateway_url"`

	// Файл для спанов OpenTelemetry; пусто - трассировка отключена
	TraceFile string `mapstructure:"trace_file"`

	// Адрес HTTP-сервера статуса
	StatusAddr string `mapstructure:"status_addr"`

	Generator GeneratorConfig `mapstructure:"generator"`

	// Включение/отключение логирования
	EnableDetailedLogging bool   `mapstructure:"enable_detailed_logging"`
	LogDir                string `mapstructure:"log_dir"`
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=mysql postgres sqlite"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	// Путь к файлу базы для драйвера sqlite
	Path string `mapstructure:"path"`
}

// SourceConfig пути к сырым выгрузкам. Файлы с расширением .sz сжаты snappy
type SourceConfig struct {
	CustomersFile     string `mapstructure:"customers_file" validate:"required"`
	OpportunitiesFile string `mapstructure:"opportunities_file" validate:"required"`
}

// GeneratorConfig параметры генератора синтетических выгрузок
type GeneratorConfig struct {
	NumCustomers     int    `mapstructure:"num_customers" validate:"gte=1"`
	NumOpportunities int    `mapstructure:"num_opportunities" validate:"gte=0"`
	Seed             uint64 `mapstructure:"seed"`
}

// Значения конфигурации по умолчанию
var (
	DefaultDestinationConfig = DatabaseConfig{
		Driver:   "mysql",
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "",
		DBName:   "crm_warehouse",
		SSLMode:  "disable",
	}

	DefaultETLConfig = ETLConfig{
		Destination: DefaultDestinationConfig,
		Source: SourceConfig{
			CustomersFile:     "crm_clientes_raw.csv",
			OpportunitiesFile: "crm_ventas_raw.csv",
		},
		RunInterval: 24 * time.Hour,
		BatchSize:   500,
		StatusAddr:  ":8090",
		Generator: GeneratorConfig{
			NumCustomers:     100,
			NumOpportunities: 500,
			Seed:             42,
		},
		EnableDetailedLogging: true,
		LogDir:                "logs",
	}
)

// Load читает конфигурацию: значения по умолчанию, затем файл crm_etl.yml
// (или явно указанный path), затем переменные окружения CRM_ETL_*
// (включая .env в текущем каталоге)
func Load(path string) (ETLConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, DefaultETLConfig)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("crm_etl")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/crm_etl")
	}

	v.SetEnvPrefix("CRM_ETL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return ETLConfig{}, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	var cfg ETLConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ETLConfig{}, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return ETLConfig{}, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры конфигурации
func Validate(cfg ETLConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("некорректная конфигурация ETL: %w", err)
	}
	if cfg.Destination.Driver == "sqlite" && cfg.Destination.Path == "" {
		return errors.New("некорректная конфигурация ETL: для sqlite требуется destination.path")
	}
	return nil
}

func setDefaults(v *viper.Viper, d ETLConfig) {
	v.SetDefault("destination.driver", d.Destination.Driver)
	v.SetDefault("destination.host", d.Destination.Host)
	v.SetDefault("destination.port", d.Destination.Port)
	v.SetDefault("destination.user", d.Destination.User)
	v.SetDefault("destination.password", d.Destination.Password)
	v.SetDefault("destination.dbname", d.Destination.DBName)
	v.SetDefault("destination.sslmode", d.Destination.SSLMode)
	v.SetDefault("destination.path", d.Destination.Path)
	v.SetDefault("source.customers_file", d.Source.CustomersFile)
	v.SetDefault("source.opportunities_file", d.Source.OpportunitiesFile)
	v.SetDefault("run_interval", d.RunInterval)
	v.SetDefault("batch_size", d.BatchSize)
	v.SetDefault("repair_seed", d.RepairSeed)
	v.SetDefault("export_xlsx", d.ExportXLSX)
	v.SetDefault("pushgateway_url", d.PushgatewayURL)
	v.SetDefault("trace_file", d.TraceFile)
	v.SetDefault("status_addr", d.StatusAddr)
	v.SetDefault("generator.num_customers", d.Generator.NumCustomers)
	v.SetDefault("generator.num_opportunities", d.Generator.NumOpportunities)
	v.SetDefault("generator.seed", d.Generator.Seed)
	v.SetDefault("enable_detailed_logging", d.EnableDetailedLogging)
	v.SetDefault("log_dir", d.LogDir)
}
