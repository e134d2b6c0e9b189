package models

// TransformedData содержит трансформированные данные для загрузки в хранилище.
// Набор, который не был извлечён, остаётся nil и не публикуется.
type TransformedData struct {
	// Измерения
	Customers []CustomerDimension

	// Факты
	Opportunities []OpportunityFact

	// Журнал синтетических дат закрытия
	Repairs []ClosureRepair

	// Метаданные
	Metadata ETLMetadata
}
