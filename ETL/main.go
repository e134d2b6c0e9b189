package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/config"
	"github.com/LilVoxy/crm_warehouse/ETL/generator"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	configPath string
}

var rootCmd = &cobra.Command{
	Use:           "crm-etl",
	Short:         "ETL воронки продаж CRM: выгрузки CSV -> dim_clientes и fact_ventas",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Однократный запуск ETL",
	Args:  cobra.NoArgs,
	RunE:  runOnce,
}

var scheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "Запуск ETL по расписанию с API статуса",
	Args:  cobra.NoArgs,
	RunE:  runScheduled,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Только API статуса и журнал запусков",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var generateFlags struct {
	customers     int
	opportunities int
	seed          uint64
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Генерация синтетических выгрузок клиентов и сделок",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configPath, "config", "c", "", "Путь к файлу конфигурации (по умолчанию crm_etl.yml)")

	generateCmd.Flags().IntVar(&generateFlags.customers, "customers", 0, "Количество клиентов (по умолчанию из конфигурации)")
	generateCmd.Flags().IntVar(&generateFlags.opportunities, "opportunities", 0, "Количество сделок (по умолчанию из конфигурации)")
	generateCmd.Flags().Uint64Var(&generateFlags.seed, "seed", 0, "Зерно генератора (по умолчанию из конфигурации)")

	rootCmd.AddCommand(onceCmd, scheduledCmd, serveCmd, generateCmd)
}

// setup загружает конфигурацию и создает логгер
func setup() (config.ETLConfig, *utils.ETLLogger, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := utils.NewETLLogger(cfg.EnableDetailedLogging, cfg.LogDir)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// runOnce запускает ETL процесс один раз
func runOnce(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	runner, err := NewETLRunner(cfg, logger)
	if err != nil {
		return fmt.Errorf("ошибка при создании ETL Runner: %w", err)
	}
	defer runner.Close()

	ctx, cancel := signalContext()
	defer cancel()

	report, err := runner.ExecuteETL(ctx)
	logger.Info("Итог запуска: %s", summarize(report))
	return err
}

// runScheduled запускает ETL процесс по расписанию
func runScheduled(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	runner, err := NewETLRunner(cfg, logger)
	if err != nil {
		return fmt.Errorf("ошибка при создании ETL Runner: %w", err)
	}
	defer runner.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if cfg.StatusAddr != "" {
		go func() {
			if err := runner.serveStatus(ctx); err != nil {
				logger.Error("%v", err)
			}
		}()
	}

	return runner.StartScheduler(ctx)
}

// runServe обслуживает API статуса без запуска ETL
func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	runner, err := NewETLRunner(cfg, logger)
	if err != nil {
		return fmt.Errorf("ошибка при создании ETL Runner: %w", err)
	}
	defer runner.Close()

	ctx, cancel := signalContext()
	defer cancel()

	return runner.serveStatus(ctx)
}

// runGenerate записывает синтетические выгрузки по путям источника из конфигурации
func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	gen := cfg.Generator
	if cmd.Flags().Changed("customers") {
		gen.NumCustomers = generateFlags.customers
	}
	if cmd.Flags().Changed("opportunities") {
		gen.NumOpportunities = generateFlags.opportunities
	}
	if cmd.Flags().Changed("seed") {
		gen.Seed = generateFlags.seed
	}

	customers, opportunities, err := generator.New(gen.Seed, time.Now()).Generate(gen.NumCustomers, gen.NumOpportunities)
	if err != nil {
		return err
	}

	if err := generator.WriteCustomers(cfg.Source.CustomersFile, customers); err != nil {
		return err
	}
	if err := generator.WriteOpportunities(cfg.Source.OpportunitiesFile, opportunities); err != nil {
		return err
	}

	logger.Info("Сгенерировано %d клиентов -> %s, %d сделок -> %s",
		len(customers), cfg.Source.CustomersFile, len(opportunities), cfg.Source.OpportunitiesFile)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("Ошибка: %v", err)
		os.Exit(1)
	}
}
