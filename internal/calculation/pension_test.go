package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikrosim/taxben/internal/domain"
)

func testPensionCalculator(t *testing.T) *PensionCalculator {
	t.Helper()
	pc, err := NewPensionCalculator(testSet(t))
	require.NoError(t, err)
	return pc
}

func TestRetirementGate(t *testing.T) {
	pc := testPensionCalculator(t)
	p := &domain.Person{
		ID: 1, BirthYear: 1950, BirthMonth: 6, Sex: domain.SexFemale,
		Region:           domain.RegionWest,
		GrossWageMonthly: decimal.NewFromInt(3000),
		EarningPoints:    decimal.NewFromInt(40),
		IsRetired:        false,
		PensionSupplementMonthly: decimal.NewFromInt(100),
		PrivatePensionMonthly:    decimal.NewFromInt(250),
	}

	out := pc.Claim(p)
	assert.True(t, out.AccessFactor.IsZero())
	assert.True(t, out.BaseClaim.IsZero())
	assert.True(t, out.ClaimWithSupplement.IsZero())
	// Private pension is independent of the public claim.
	assertDecimalEqual(t, "250", out.TotalRetirementIncome)
	// Eligibility ages and earning points are defined regardless.
	assert.Greater(t, out.RegularRetirementAge, 0.0)
	assert.False(t, out.EarningPoints.IsZero())
}

func TestRegularRetirementAge(t *testing.T) {
	pc := testPensionCalculator(t)

	assert.InDelta(t, 65.0, pc.RegularRetirementAge(1940), 1e-9)
	assert.InDelta(t, 65.0+8.0/12.0, pc.RegularRetirementAge(1955), 1e-9)
	assert.InDelta(t, 67.0, pc.RegularRetirementAge(1970), 1e-9)
}

func TestFullRetirementAgeWomenTrack(t *testing.T) {
	pc := testPensionCalculator(t)

	// Women born before 1952 can claim at 63, below their regular age.
	assert.InDelta(t, 63.0, pc.FullRetirementAge(1950, 0, domain.SexFemale), 1e-9)
	// Men always keep the regular age.
	assert.InDelta(t, 65.0+3.0/12.0, pc.FullRetirementAge(1950, 0, domain.SexMale), 1e-9)
	// For younger cohorts the women's track exceeds the regular age and
	// the min keeps the regular age.
	assert.InDelta(t, pc.RegularRetirementAge(1955), pc.FullRetirementAge(1955, 0, domain.SexFemale), 1e-9)
	// Birth month shifts the women's-track x value across its threshold.
	assert.InDelta(t, 63.0, pc.FullRetirementAge(1951, 11, domain.SexFemale), 1e-9)
	assert.InDelta(t, pc.RegularRetirementAge(1952), pc.FullRetirementAge(1952, 1, domain.SexFemale), 1e-9)
}

func TestAccessFactorEarlyRetirement(t *testing.T) {
	pc := testPensionCalculator(t)

	// Born 1955, regular age 65 + 8/12 = 65.666..; retiring in 2020 at 65
	// is 2/3 of a year early.
	p := &domain.Person{BirthYear: 1955, IsRetired: true, RetirementYear: 2020, Region: domain.RegionWest}
	got := pc.AccessFactor(p)
	want := decimal.NewFromFloat(1 + (65.0-(65.0+8.0/12.0))*0.036)
	assert.True(t, got.Sub(want).Abs().LessThan(dec("0.0000001")), "want ~%s, got %s", want, got)
}

func TestAccessFactorLateRetirement(t *testing.T) {
	pc := testPensionCalculator(t)

	// Born 1940, regular age 65, retires at 67: two years late.
	p := &domain.Person{BirthYear: 1940, IsRetired: true, RetirementYear: 2007, Region: domain.RegionWest}
	assertDecimalEqual(t, "1.12", pc.AccessFactor(p))
}

func TestAccessFactorNeverNegative(t *testing.T) {
	pc := testPensionCalculator(t)

	// A degenerate record: retirement decades before the eligibility age.
	p := &domain.Person{BirthYear: 1970, IsRetired: true, RetirementYear: 1990, Region: domain.RegionWest}
	assert.True(t, pc.AccessFactor(p).IsZero())

	// Even a retirement year before the birth year only clamps, never aborts.
	p = &domain.Person{BirthYear: 1970, IsRetired: true, RetirementYear: 1960, Region: domain.RegionWest}
	assert.True(t, pc.AccessFactor(p).GreaterThanOrEqual(decimal.Zero))
}

func TestUpdatedEarningPoints(t *testing.T) {
	pc := testPensionCalculator(t)

	tests := []struct {
		name string
		p    domain.Person
		want string
	}{
		{
			name: "west wage at the average earns one point",
			p:    domain.Person{Region: domain.RegionWest, GrossWageMonthly: decimal.NewFromInt(3000), EarningPoints: decimal.NewFromInt(30)},
			want: "31",
		},
		{
			name: "east wage is scaled up before conversion",
			p:    domain.Person{Region: domain.RegionEast, GrossWageMonthly: decimal.NewFromInt(3000), EarningPoints: decimal.Zero},
			want: "1.07",
		},
		{
			name: "west wage capped at the contribution ceiling",
			p:    domain.Person{Region: domain.RegionWest, GrossWageMonthly: decimal.NewFromInt(10000), EarningPoints: decimal.Zero},
			want: "2.3", // 6900 / 3000
		},
		{
			name: "east cap applies to the scaled wage",
			p:    domain.Person{Region: domain.RegionEast, GrossWageMonthly: decimal.NewFromInt(10000), EarningPoints: decimal.Zero},
			want: "2.15", // 6450 / 3000
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimalEqual(t, tt.want, pc.UpdatedEarningPoints(&tt.p))
		})
	}
}

func TestClaimAmounts(t *testing.T) {
	pc := testPensionCalculator(t)

	// Born 1947, retires 2012 at 65 = exactly the regular age, so the
	// access factor is 1 and the claim is EP x Rw.
	p := &domain.Person{
		BirthYear: 1947, IsRetired: true, RetirementYear: 2012,
		Region:                   domain.RegionWest,
		EarningPoints:            decimal.NewFromInt(30),
		GrossWageMonthly:         decimal.Zero,
		PensionSupplementMonthly: dec("75.505"),
		PrivatePensionMonthly:    decimal.NewFromInt(200),
	}

	out := pc.Claim(p)
	assertDecimalEqual(t, "1", out.AccessFactor)
	assertDecimalEqual(t, "30", out.EarningPoints)
	assertDecimalEqual(t, "1025.70", out.BaseClaim) // 30 * 34.19
	// 1025.70 + 75.505 rounds half-up at the boundary.
	assertDecimalEqual(t, "1101.21", out.ClaimWithSupplement)
	assertDecimalEqual(t, "1301.21", out.TotalRetirementIncome)
}

func TestRegionalPointValuesAndCeilings(t *testing.T) {
	pc := testPensionCalculator(t)

	assertDecimalEqual(t, "34.19", pc.PointValue(domain.RegionWest))
	assertDecimalEqual(t, "33.23", pc.PointValue(domain.RegionEast))
	assertDecimalEqual(t, "33.05", pc.PriorYearPointValue(domain.RegionWest))
	assertDecimalEqual(t, "32.38", pc.PriorYearPointValue(domain.RegionEast))
	assertDecimalEqual(t, "6900", pc.PensionContributionCeiling(domain.RegionWest))
	assertDecimalEqual(t, "6450", pc.PensionContributionCeiling(domain.RegionEast))
	assertDecimalEqual(t, "4837.50", pc.HealthContributionCeiling(domain.RegionWest))
}

func TestClaimCarriesRegionalReferenceColumns(t *testing.T) {
	pc := testPensionCalculator(t)

	east := pc.Claim(&domain.Person{BirthYear: 1950, Region: domain.RegionEast})
	assertDecimalEqual(t, "32.38", east.PriorYearPointValue)
	assertDecimalEqual(t, "4837.50", east.HealthContributionCeiling)

	// Defined for everyone, retired or not.
	west := pc.Claim(&domain.Person{
		BirthYear: 1947, IsRetired: true, RetirementYear: 2012,
		Region: domain.RegionWest,
	})
	assertDecimalEqual(t, "33.05", west.PriorYearPointValue)
	assertDecimalEqual(t, "4837.50", west.HealthContributionCeiling)
}
