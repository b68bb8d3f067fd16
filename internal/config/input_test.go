package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikrosim/taxben/internal/domain"
)

const validPopulationYAML = `
persons:
  - id: 1
    birth_year: 1950
    birth_month: 3
    sex: female
    region: west
    tax_unit_id: 10
    household_id: 100
    is_retired: true
    retirement_year: 2015
    earning_points: 35.5
    gross_transfer_income_monthly: 420.10
  - id: 2
    birth_year: 1980
    birth_month: 0
    sex: male
    region: east
    tax_unit_id: 11
    household_id: 101
    gross_wage_monthly: 3100
    public_pension_contrib_monthly: 288.30
tax_units:
  - id: 10
    joint_filing: false
    income_tax_annual: 1200
  - id: 11
    income_tax_annual: 4800
    solidarity_surcharge_annual: 264
households:
  - id: 100
    wealth: 4000
    basic_need_monthly: 880
  - id: 101
    wealth: 25000
    housing_benefit_priority: true
`

func TestParsePopulation(t *testing.T) {
	pop, err := NewInputParser().ParsePopulation([]byte(validPopulationYAML))
	require.NoError(t, err)

	require.Len(t, pop.Persons, 2)
	require.Len(t, pop.TaxUnits, 2)
	require.Len(t, pop.Households, 2)

	p1 := pop.Persons[0]
	assert.Equal(t, 1950, p1.BirthYear)
	assert.Equal(t, domain.SexFemale, p1.Sex)
	assert.Equal(t, domain.RegionWest, p1.Region)
	assert.True(t, p1.IsRetired)
	assert.Equal(t, 2015, p1.RetirementYear)
	assert.Equal(t, "35.5", p1.EarningPoints.String())

	p2 := pop.Persons[1]
	assert.Equal(t, domain.RegionEast, p2.Region)
	assert.False(t, p2.IsRetired)

	assert.True(t, pop.Households[1].HousingBenefitPriority)
}

func TestValidatePopulationErrors(t *testing.T) {
	base := func() *domain.Population {
		pop, err := NewInputParser().ParsePopulation([]byte(validPopulationYAML))
		require.NoError(t, err)
		return pop
	}

	tests := []struct {
		name    string
		mutate  func(*domain.Population)
		wantErr string
	}{
		{
			"duplicate person id",
			func(p *domain.Population) { p.Persons[1].ID = p.Persons[0].ID },
			"duplicate person id",
		},
		{
			"unknown tax unit",
			func(p *domain.Population) { p.Persons[0].TaxUnitID = 99 },
			"unknown tax unit",
		},
		{
			"unknown household",
			func(p *domain.Population) { p.Persons[0].HouseholdID = 99 },
			"unknown household",
		},
		{
			"retired without retirement year",
			func(p *domain.Population) { p.Persons[0].RetirementYear = 0 },
			"no retirement year",
		},
		{
			"retirement year without retirement",
			func(p *domain.Population) { p.Persons[1].RetirementYear = 2010 },
			"not retired",
		},
		{
			"tax unit spanning households",
			func(p *domain.Population) { p.Persons[1].TaxUnitID = 10 },
			"spans households",
		},
		{
			"bad birth month",
			func(p *domain.Population) { p.Persons[0].BirthMonth = 12 },
			"birth month",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := base()
			tt.mutate(pop)
			err := NewInputParser().ValidatePopulation(pop)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParsePopulationRejectsUnknownRegion(t *testing.T) {
	bad := `
persons:
  - id: 1
    birth_year: 1950
    region: north
    tax_unit_id: 10
    household_id: 100
tax_units: [{id: 10}]
households: [{id: 100}]
`
	_, err := NewInputParser().ParsePopulation([]byte(bad))
	assert.Error(t, err)
}

func TestParsePopulationEmpty(t *testing.T) {
	_, err := NewInputParser().ParsePopulation([]byte("persons: []"))
	assert.Error(t, err)
}
