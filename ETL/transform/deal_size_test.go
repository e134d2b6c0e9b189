package transform

import (
	"testing"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/stretchr/testify/assert"
)

func TestCategorizeAmountBoundaries(t *testing.T) {
	cases := []struct {
		amount float64
		want   models.DealSize
	}{
		{0, models.DealSizeSmallBusiness},
		{4999.99, models.DealSizeSmallBusiness},
		{5000, models.DealSizeMidMarket},
		{19999.99, models.DealSizeMidMarket},
		{20000, models.DealSizeEnterprise},
		{50000, models.DealSizeEnterprise},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CategorizeAmount(tc.amount), "amount %.2f", tc.amount)
	}
}
