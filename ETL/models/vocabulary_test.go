package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStageAcceptsCanonicalNames(t *testing.T) {
	cases := map[string]Stage{
		"Prospecto":       StageProspect,
		"Análisis":        StageAnalysis,
		" Negociación ":   StageNegotiation,
		"Cerrado Ganado":  StageClosedWon,
		"Cerrado Perdido": StageClosedLost,
		"Prospect":        StageProspect,
		"Proposal":        StageProposal,
		"Closed-Won":      StageClosedWon,
		"Closed-Lost":     StageClosedLost,
	}
	for in, want := range cases {
		got, err := ParseStage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseStageRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "cerrado ganado", "Won", "Cerrado"} {
		_, err := ParseStage(in)
		assert.True(t, errors.Is(err, ErrUnknownStage), "%q", in)
	}
}

func TestStageIsClosed(t *testing.T) {
	for _, s := range ClosedStages {
		assert.True(t, s.IsClosed(), s)
	}
	for _, s := range OpenStages {
		assert.False(t, s.IsClosed(), s)
	}
}

func TestParseIndustryAndLeadSource(t *testing.T) {
	industry, err := ParseIndustry("Manofactura")
	require.NoError(t, err)
	assert.Equal(t, IndustryManufacturing, industry)

	_, err = ParseIndustry("Mining")
	assert.ErrorIs(t, err, ErrUnknownIndustry)

	source, err := ParseLeadSource("Email Cold")
	require.NoError(t, err)
	assert.Equal(t, LeadSourceColdEmail, source)

	_, err = ParseLeadSource("Cold Email")
	assert.ErrorIs(t, err, ErrUnknownLeadSource)
}

func TestOpportunityHasClosureDateIgnoresStage(t *testing.T) {
	closed := time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC)

	assert.False(t, Opportunity{Stage: StageClosedWon}.HasClosureDate())
	assert.True(t, Opportunity{Stage: StageNegotiation, ClosureDate: &closed}.HasClosureDate())
}
