package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mikrosim/taxben/internal/domain"
	"github.com/mikrosim/taxben/internal/params"
	"github.com/mikrosim/taxben/internal/piecewise"
)

// PensionCalculator computes individual monthly public pension claims:
// earning-point accumulation, eligibility ages, the access factor
// (Zugangsfaktor) for early or late retirement, the base claim
// EP x ZF x Rw, and the claim including the Grundrente supplement.
// All policy constants are resolved once at construction from the active
// parameter set; the calculator is then read-only and safe for
// concurrent use.
type PensionCalculator struct {
	regularAgeSpec *piecewise.Spec
	womenAgeSpec   *piecewise.Spec

	earlyRate decimal.Decimal // per year retired before the regular age, negative
	lateRate  decimal.Decimal // per year retired after the regular age, positive

	eastWageScale  decimal.Decimal
	avgWageMonthly decimal.Decimal

	pointValueEast      decimal.Decimal
	pointValueWest      decimal.Decimal
	priorPointValueEast decimal.Decimal
	priorPointValueWest decimal.Decimal

	pensionCeilingEast decimal.Decimal
	pensionCeilingWest decimal.Decimal
	healthCeilingEast  decimal.Decimal
	healthCeilingWest  decimal.Decimal
}

// PensionOutcome holds the per-person derived pension quantities.
type PensionOutcome struct {
	RegularRetirementAge float64
	FullRetirementAge    float64

	AccessFactor          decimal.Decimal
	EarningPoints         decimal.Decimal
	BaseClaim             decimal.Decimal
	ClaimWithSupplement   decimal.Decimal
	TotalRetirementIncome decimal.Decimal

	// Regional reference values resolved for the person's region,
	// carried through as derived columns for downstream consumers.
	PriorYearPointValue       decimal.Decimal
	HealthContributionCeiling decimal.Decimal
}

// NewPensionCalculator resolves every pension parameter from the active
// set. A missing key fails construction; the policy year is unsupported.
func NewPensionCalculator(set *params.Set) (*PensionCalculator, error) {
	pc := &PensionCalculator{}
	var err error

	if pc.regularAgeSpec, err = set.Piecewise("ges_rente", "regelaltersgrenze"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.womenAgeSpec, err = set.Piecewise("ges_rente", "altersrente_fuer_frauen"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.earlyRate, err = set.Scalar("ges_rente", "zugangsfaktor_veraenderung_pro_jahr", "vorzeitiger_renteneintritt"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.lateRate, err = set.Scalar("ges_rente", "zugangsfaktor_veraenderung_pro_jahr", "spaeterer_renteneintritt"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.eastWageScale, err = set.Scalar("ges_rente", "umrechnung_entgeltp_beitrittsgebiet"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}

	avgWageAnnual, err := set.Scalar("ges_rente", "beitragspflichtiges_durchschnittsentgelt")
	if err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	pc.avgWageMonthly = avgWageAnnual.Div(twelve)

	if pc.pointValueEast, err = set.Regional(domain.RegionEast, "ges_rente", "rentenwert"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.pointValueWest, err = set.Regional(domain.RegionWest, "ges_rente", "rentenwert"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.priorPointValueEast, err = set.Regional(domain.RegionEast, "ges_rente", "rentenwert_vorjahr"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.priorPointValueWest, err = set.Regional(domain.RegionWest, "ges_rente", "rentenwert_vorjahr"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.pensionCeilingEast, err = set.Regional(domain.RegionEast, "soz_vers_beitr", "beitr_bemess_grenze_m", "ges_rentenv"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.pensionCeilingWest, err = set.Regional(domain.RegionWest, "soz_vers_beitr", "beitr_bemess_grenze_m", "ges_rentenv"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.healthCeilingEast, err = set.Regional(domain.RegionEast, "soz_vers_beitr", "beitr_bemess_grenze_m", "ges_krankenv"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}
	if pc.healthCeilingWest, err = set.Regional(domain.RegionWest, "soz_vers_beitr", "beitr_bemess_grenze_m", "ges_krankenv"); err != nil {
		return nil, fmt.Errorf("pension calculator: %w", err)
	}

	return pc, nil
}

// RegularRetirementAge is the normal retirement age for a birth cohort.
func (pc *PensionCalculator) RegularRetirementAge(birthYear int) float64 {
	return pc.regularAgeSpec.Evaluate(float64(birthYear))
}

// FullRetirementAge is the earliest age at which a full (unreduced) claim
// is available. For women born early enough the statutory women's track
// can undercut the regular age; it never exceeds it.
func (pc *PensionCalculator) FullRetirementAge(birthYear, birthMonth int, sex domain.Sex) float64 {
	regular := pc.RegularRetirementAge(birthYear)
	if sex != domain.SexFemale {
		return regular
	}
	women := pc.womenAgeSpec.Evaluate(float64(birthYear) + float64(birthMonth)/12.0)
	if women < regular {
		return women
	}
	return regular
}

// AccessFactor is the actuarial claim multiplier. Retiring before the
// regular age reduces the claim, retiring after increases it; the factor
// never goes below zero. A person who is not retired has no claim and the
// factor is exactly zero by definition, not as missing data.
func (pc *PensionCalculator) AccessFactor(p *domain.Person) decimal.Decimal {
	if !p.IsRetired {
		return decimal.Zero
	}
	ageAtRetirement := p.RetirementYear - p.BirthYear
	diff := decimal.NewFromFloat(float64(ageAtRetirement) - pc.RegularRetirementAge(p.BirthYear))

	rate := pc.lateRate
	if diff.IsNegative() {
		rate = pc.earlyRate
	}
	return clampZero(one.Add(diff.Mul(rate)))
}

// UpdatedEarningPoints adds the points earned from the current wage to the
// accumulated prior-year points. East-region wages are scaled by the
// statutory conversion factor before being capped at the region's pension
// contribution ceiling.
func (pc *PensionCalculator) UpdatedEarningPoints(p *domain.Person) decimal.Decimal {
	wage := p.GrossWageMonthly
	if p.Region == domain.RegionEast {
		wage = wage.Mul(pc.eastWageScale)
	}
	ceiling := pc.PensionContributionCeiling(p.Region)
	if wage.GreaterThan(ceiling) {
		wage = ceiling
	}
	return p.EarningPoints.Add(wage.Div(pc.avgWageMonthly))
}

// PointValue is the region's current pension point value (Rentenwert).
func (pc *PensionCalculator) PointValue(region domain.Region) decimal.Decimal {
	if region == domain.RegionEast {
		return pc.pointValueEast
	}
	return pc.pointValueWest
}

// PriorYearPointValue is the region's point value of the preceding year.
func (pc *PensionCalculator) PriorYearPointValue(region domain.Region) decimal.Decimal {
	if region == domain.RegionEast {
		return pc.priorPointValueEast
	}
	return pc.priorPointValueWest
}

// PensionContributionCeiling is the region's monthly assessment ceiling
// for pension insurance contributions.
func (pc *PensionCalculator) PensionContributionCeiling(region domain.Region) decimal.Decimal {
	if region == domain.RegionEast {
		return pc.pensionCeilingEast
	}
	return pc.pensionCeilingWest
}

// HealthContributionCeiling is the region's monthly assessment ceiling
// for health insurance contributions.
func (pc *PensionCalculator) HealthContributionCeiling(region domain.Region) decimal.Decimal {
	if region == domain.RegionEast {
		return pc.healthCeilingEast
	}
	return pc.healthCeilingWest
}

// Claim computes every derived pension quantity for one person.
// Eligibility ages and earning points are defined for everyone; the
// monetary claims are exactly zero until the person retires.
func (pc *PensionCalculator) Claim(p *domain.Person) PensionOutcome {
	out := PensionOutcome{
		RegularRetirementAge:      pc.RegularRetirementAge(p.BirthYear),
		FullRetirementAge:         pc.FullRetirementAge(p.BirthYear, p.BirthMonth, p.Sex),
		EarningPoints:             pc.UpdatedEarningPoints(p),
		PriorYearPointValue:       pc.PriorYearPointValue(p.Region),
		HealthContributionCeiling: pc.HealthContributionCeiling(p.Region),
	}

	if !p.IsRetired {
		out.AccessFactor = decimal.Zero
		out.BaseClaim = decimal.Zero
		out.ClaimWithSupplement = decimal.Zero
		out.TotalRetirementIncome = p.PrivatePensionMonthly
		return out
	}

	out.AccessFactor = pc.AccessFactor(p)
	out.BaseClaim = roundCents(out.EarningPoints.Mul(out.AccessFactor).Mul(pc.PointValue(p.Region)))
	out.ClaimWithSupplement = roundCents(out.BaseClaim.Add(p.PensionSupplementMonthly))
	out.TotalRetirementIncome = out.ClaimWithSupplement.Add(p.PrivatePensionMonthly)
	return out
}
