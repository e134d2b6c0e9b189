package generator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/LilVoxy/crm_warehouse/ETL/extractors"
	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestGenerateShape(t *testing.T) {
	customers, opportunities, err := New(42, testNow).Generate(50, 400)
	require.NoError(t, err)
	require.Len(t, customers, 50)
	require.Len(t, opportunities, 400)

	today := dayStart(testNow)
	registered := make(map[string]time.Time, len(customers))
	for _, c := range customers {
		assert.Len(t, c.ID, 8)
		assert.NotContains(t, registered, c.ID)
		reg := mustDate(t, c.RegisteredDate)
		assert.False(t, reg.Before(today.AddDate(-2, 0, 0)))
		assert.False(t, reg.After(today))
		assert.Contains(t, models.Industries, c.Industry)
		assert.Contains(t, models.LeadSources, c.LeadSource)
		registered[c.ID] = reg
	}

	seen := make(map[string]bool, len(opportunities))
	closed := 0
	for _, o := range opportunities {
		assert.False(t, seen[o.ID], o.ID)
		seen[o.ID] = true

		reg, ok := registered[o.CustomerID]
		require.True(t, ok, o.CustomerID)
		created := mustDate(t, o.CreatedDate)
		assert.False(t, created.Before(reg))
		assert.False(t, created.After(today))

		assert.GreaterOrEqual(t, o.Amount, 1000.0)
		assert.LessOrEqual(t, o.Amount, 50000.0)

		if o.Stage.IsClosed() {
			closed++
			closure := mustDate(t, o.ClosedDate)
			days := int(closure.Sub(created).Hours() / 24)
			assert.GreaterOrEqual(t, days, 5)
			assert.LessOrEqual(t, days, 120)
			if o.Stage == models.StageClosedWon {
				assert.Equal(t, 100, o.Probability)
			} else {
				assert.Equal(t, 0, o.Probability)
			}
		} else {
			assert.Empty(t, o.ClosedDate)
			assert.Contains(t, []int{20, 40, 60, 80}, o.Probability)
		}
	}

	// около 70% закрытых сделок
	assert.InDelta(t, 0.7, float64(closed)/float64(len(opportunities)), 0.1)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	c1, o1, err := New(7, testNow).Generate(10, 30)
	require.NoError(t, err)
	c2, o2, err := New(7, testNow).Generate(10, 30)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
	assert.Equal(t, o1, o2)

	c3, _, err := New(8, testNow).Generate(10, 30)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c3)
}

func TestGenerateRequiresCustomers(t *testing.T) {
	_, _, err := New(1, testNow).Generate(0, 10)
	assert.Error(t, err)
}

func TestWrittenFilesAreExtractable(t *testing.T) {
	customers, opportunities, err := New(3, testNow).Generate(20, 60)
	require.NoError(t, err)

	dir := t.TempDir()
	customersPath := filepath.Join(dir, "crm_clientes_raw.csv")
	opportunitiesPath := filepath.Join(dir, "crm_ventas_raw.csv.sz")
	require.NoError(t, WriteCustomers(customersPath, customers))
	require.NoError(t, WriteOpportunities(opportunitiesPath, opportunities))

	data := extractors.NewExtractor(utils.NewNopLogger(), customersPath, opportunitiesPath).Extract()
	require.NoError(t, data.CustomersErr)
	require.NoError(t, data.OpportunitiesErr)
	assert.Equal(t, customers, data.Customers)
	assert.Len(t, data.Opportunities, len(opportunities))
	assert.Zero(t, data.RejectedCustomers)
	assert.Zero(t, data.RejectedOpportunities)

	for i, o := range data.Opportunities {
		assert.Equal(t, opportunities[i].ID, o.ID)
		assert.Equal(t, opportunities[i].Stage, o.Stage)
		assert.InDelta(t, opportunities[i].Amount, o.Amount, 0.001)
		assert.Equal(t, opportunities[i].ClosedDate, o.ClosedDate)
	}
}
