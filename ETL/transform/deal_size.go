package transform

import "github.com/LilVoxy/crm_warehouse/ETL/models"

// CategorizeAmount относит сумму сделки к категории.
// Граничные значения попадают в следующую категорию: 5000 - Mid-Market, 20000 - Enterprise.
func CategorizeAmount(amount float64) models.DealSize {
	switch {
	case amount < models.MidMarketThreshold:
		return models.DealSizeSmallBusiness
	case amount < models.EnterpriseThreshold:
		return models.DealSizeMidMarket
	default:
		return models.DealSizeEnterprise
	}
}
