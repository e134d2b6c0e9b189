package transform

import (
	"errors"
	"testing"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
}

func TestTransformEndToEnd(t *testing.T) {
	extracted := &models.ExtractedData{
		Customers: []models.RawCustomer{{
			ID:             "c-1",
			City:           " buenos aires ",
			Industry:       models.IndustryTechnology,
			LeadSource:     models.LeadSourceReferral,
			RegisteredDate: "2023-01-10",
		}},
		Opportunities: []models.RawOpportunity{
			rawOpportunity("o-1", models.StageClosedWon, "2023-06-01", ""),
			{ID: "o-2", CustomerID: "ghost", Salesperson: "Luis", Product: "CRM Lite", Amount: 900, Stage: models.StageProspect, Probability: 20, CreatedDate: "2023-08-20"},
		},
		RejectedOpportunities: 3,
	}

	data := NewTransformer(utils.NewNopLogger(), NewRandomSource(99), fixedNow).Transform(extracted)

	require.Len(t, data.Customers, 1)
	require.Len(t, data.Opportunities, 2)
	require.Len(t, data.Repairs, 1)

	closed := data.Opportunities[0]
	require.NotNil(t, closed.ClosureDate)
	assert.False(t, closed.ClosureDate.Before(date(2023, 6, 6)))
	assert.False(t, closed.ClosureDate.After(date(2023, 9, 29)))
	assert.Equal(t, DaysBetween(date(2023, 6, 1), *closed.ClosureDate), *closed.SalesCycleDays)
	assert.Equal(t, 1, closed.IsClosedFlag)

	open := data.Opportunities[1]
	assert.Nil(t, open.ClosureDate)
	assert.Equal(t, 0, open.IsClosedFlag)
	assert.Equal(t, models.DealSizeSmallBusiness, open.DealSize)

	assert.Equal(t, "BUENOS AIRES", data.Customers[0].NormalizedCity)
	assert.Equal(t, 365, *data.Customers[0].AccountAgeDays)

	meta := data.Metadata
	assert.Equal(t, fixedNow(), meta.RunTimestamp)
	assert.Equal(t, 1, meta.CustomersProcessed)
	assert.Equal(t, 2, meta.OpportunitiesProcessed)
	assert.Equal(t, 1, meta.ClosuresRepaired)
	assert.Equal(t, 3, meta.RejectedOpportunities)
	assert.Equal(t, 1, meta.OrphanOpportunities)
}

func TestTransformSkipsAbsentSets(t *testing.T) {
	extracted := &models.ExtractedData{
		CustomersErr: errors.New("файл не найден"),
		Opportunities: []models.RawOpportunity{
			rawOpportunity("o-1", models.StageNegotiation, "2023-06-01", ""),
		},
	}

	data := NewTransformer(utils.NewNopLogger(), fixedRandom{}, fixedNow).Transform(extracted)

	assert.Nil(t, data.Customers)
	assert.Len(t, data.Opportunities, 1)
	assert.Zero(t, data.Metadata.CustomersProcessed)
	assert.Zero(t, data.Metadata.OrphanOpportunities)

	extracted = &models.ExtractedData{
		Customers:        []models.RawCustomer{{ID: "c-1", RegisteredDate: "2023-01-10"}},
		OpportunitiesErr: errors.New("нет столбца Etapa"),
	}
	data = NewTransformer(utils.NewNopLogger(), fixedRandom{}, fixedNow).Transform(extracted)

	assert.Len(t, data.Customers, 1)
	assert.Nil(t, data.Opportunities)
	assert.Nil(t, data.Repairs)
}
