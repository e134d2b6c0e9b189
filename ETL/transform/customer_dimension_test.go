package transform

import (
	"testing"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCity(t *testing.T) {
	assert.Equal(t, "BUENOS AIRES", NormalizeCity(" buenos aires "))
	assert.Equal(t, "BOGOTÁ", NormalizeCity("Bogotá"))
	assert.Equal(t, "", NormalizeCity("   "))
}

func TestProcessCustomerDimension(t *testing.T) {
	now := time.Date(2024, 1, 10, 18, 45, 0, 0, time.UTC)
	raw := []models.RawCustomer{
		{
			ID:             "a1b2c3d4",
			CompanyName:    "Acme SA",
			City:           " buenos aires ",
			Industry:       models.IndustryRetail,
			LeadSource:     models.LeadSourceWebsite,
			RegisteredDate: "2023-01-10",
		},
		{
			ID:             "e5f6a7b8",
			City:           "Lima",
			Industry:       models.IndustryHealth,
			LeadSource:     models.LeadSourceEvent,
			RegisteredDate: "sin fecha",
		},
	}

	dims, unparsable := NewCustomerDimensionProcessor(utils.NewNopLogger()).ProcessCustomerDimension(raw, now)
	require.Len(t, dims, 2)
	assert.Equal(t, 1, unparsable)

	first := dims[0]
	require.NotNil(t, first.AccountAgeDays)
	assert.Equal(t, 365, *first.AccountAgeDays)
	assert.Equal(t, " buenos aires ", first.City)
	assert.Equal(t, "BUENOS AIRES", first.NormalizedCity)
	assert.Equal(t, "Acme SA", first.CompanyName)
	assert.Equal(t, time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), *first.RegistrationDate)

	second := dims[1]
	assert.Nil(t, second.RegistrationDate)
	assert.Nil(t, second.AccountAgeDays)
	assert.Equal(t, "LIMA", second.NormalizedCity)
}

func TestAccountAgeDependsOnInjectedNow(t *testing.T) {
	raw := []models.RawCustomer{{ID: "c-1", RegisteredDate: "2023-01-10"}}
	p := NewCustomerDimensionProcessor(utils.NewNopLogger())

	early, _ := p.ProcessCustomerDimension(raw, time.Date(2023, 1, 10, 23, 0, 0, 0, time.UTC))
	later, _ := p.ProcessCustomerDimension(raw, time.Date(2023, 2, 9, 1, 0, 0, 0, time.UTC))

	assert.Equal(t, 0, *early[0].AccountAgeDays)
	assert.Equal(t, 30, *later[0].AccountAgeDays)
}
