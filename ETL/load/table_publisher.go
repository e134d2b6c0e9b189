package load

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// replaceTable полностью заменяет таблицу модели T: удаляет её, создаёт
// заново по объявлению структуры (порядок столбцов сохраняется, служебного
// номера строки нет) и вставляет строки пакетами. Всё выполняется в одной
// транзакции там, где СУБД поддерживает транзакционный DDL.
func replaceTable[T any](ctx context.Context, db *gorm.DB, rows []T, batchSize int) (int, error) {
	var model T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		migrator := tx.Migrator()
		if err := migrator.DropTable(&model); err != nil {
			return fmt.Errorf("ошибка при удалении таблицы: %w", err)
		}
		if err := migrator.CreateTable(&model); err != nil {
			return fmt.Errorf("ошибка при создании таблицы: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
			return fmt.Errorf("ошибка при вставке строк: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
