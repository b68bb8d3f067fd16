package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Region identifies the former East/West split that still drives several
// pension parameters (point values, contribution ceilings, wage scaling).
type Region int

const (
	RegionWest Region = iota
	RegionEast
)

// String returns the yaml/file representation of the region.
func (r Region) String() string {
	if r == RegionEast {
		return "east"
	}
	return "west"
}

// UnmarshalYAML parses "east"/"west" region tags.
func (r *Region) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "east", "ost":
		*r = RegionEast
	case "west":
		*r = RegionWest
	default:
		return fmt.Errorf("unknown region %q (want east or west)", s)
	}
	return nil
}

// Sex is used only for retirement-age tracks that are sex-specific
// (the women's early retirement track for pre-1952 cohorts).
type Sex int

const (
	SexMale Sex = iota
	SexFemale
)

// String returns the yaml/file representation of the sex attribute.
func (s Sex) String() string {
	if s == SexFemale {
		return "female"
	}
	return "male"
}

// UnmarshalYAML parses "male"/"female" sex tags.
func (s *Sex) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v string
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch v {
	case "female", "f":
		*s = SexFemale
	case "male", "m":
		*s = SexMale
	default:
		return fmt.Errorf("unknown sex %q (want male or female)", v)
	}
	return nil
}

// Person is one simulated individual: demographic attributes, group
// membership, and the externally supplied input columns the engine
// consumes as plain values (contributions, transfer income, supplements).
// Persons carry no identity beyond one evaluation pass.
type Person struct {
	ID          int    `yaml:"id"`
	BirthYear   int    `yaml:"birth_year"`
	BirthMonth  int    `yaml:"birth_month"`
	Sex         Sex    `yaml:"sex"`
	Region      Region `yaml:"region"`
	TaxUnitID   int    `yaml:"tax_unit_id"`
	HouseholdID int    `yaml:"household_id"`

	GrossWageMonthly decimal.Decimal `yaml:"gross_wage_monthly"`
	IsRetired        bool            `yaml:"is_retired"`
	RetirementYear   int             `yaml:"retirement_year,omitempty"`
	EarningPoints    decimal.Decimal `yaml:"earning_points"`

	// Externally computed collaborator inputs, monthly amounts.
	PrivatePensionMonthly    decimal.Decimal `yaml:"private_pension_monthly"`
	PensionSupplementMonthly decimal.Decimal `yaml:"pension_supplement_monthly"`

	PublicPensionContribMonthly  decimal.Decimal `yaml:"public_pension_contrib_monthly"`
	PrivatePensionContribMonthly decimal.Decimal `yaml:"private_pension_contrib_monthly"`
	HealthContribMonthly         decimal.Decimal `yaml:"health_contrib_monthly"`
	CareContribMonthly           decimal.Decimal `yaml:"care_contrib_monthly"`
	UnemploymentContribMonthly   decimal.Decimal `yaml:"unemployment_contrib_monthly"`

	SocialInsuranceContribMonthly decimal.Decimal `yaml:"social_insurance_contrib_monthly"`
	GrossTransferIncomeMonthly    decimal.Decimal `yaml:"gross_transfer_income_monthly"`
	SubsistenceExemptionMonthly   decimal.Decimal `yaml:"subsistence_exemption_monthly"`
}

// Age returns the person's age in whole years at the given calendar year.
func (p *Person) Age(year int) int {
	return year - p.BirthYear
}

// TaxUnit is the smallest group filing income tax jointly. Income tax and
// solidarity surcharge are externally assessed at unit level and spread
// across the unit's adults where per-person shares are needed.
type TaxUnit struct {
	ID          int  `yaml:"id"`
	JointFiling bool `yaml:"joint_filing"`

	IncomeTaxAnnual           decimal.Decimal `yaml:"income_tax_annual"`
	SolidaritySurchargeAnnual decimal.Decimal `yaml:"solidarity_surcharge_annual"`
}

// Household is the group sharing means-tested benefit eligibility.
// Wealth, basic need and the competing-benefit priority flags are
// household-level attributes.
type Household struct {
	ID int `yaml:"id"`

	Wealth                    decimal.Decimal `yaml:"wealth"`
	BasicNeedMonthly          decimal.Decimal `yaml:"basic_need_monthly"`
	ChildBenefitMonthly       decimal.Decimal `yaml:"child_benefit_monthly"`
	AdvanceMaintenanceMonthly decimal.Decimal `yaml:"advance_maintenance_monthly"`

	HousingBenefitPriority        bool `yaml:"housing_benefit_priority"`
	ChildSupplementPriority       bool `yaml:"child_supplement_priority"`
	HousingChildSupplementPriority bool `yaml:"housing_child_supplement_priority"`
}

// Population is one evaluation pass worth of input data. The engine
// borrows it read-only; all derived values land in a ResultSet.
type Population struct {
	Persons    []Person    `yaml:"persons"`
	TaxUnits   []TaxUnit   `yaml:"tax_units"`
	Households []Household `yaml:"households"`
}

// TaxUnitByID returns the tax unit with the given id, or nil.
func (p *Population) TaxUnitByID(id int) *TaxUnit {
	for i := range p.TaxUnits {
		if p.TaxUnits[i].ID == id {
			return &p.TaxUnits[i]
		}
	}
	return nil
}

// HouseholdByID returns the household with the given id, or nil.
func (p *Population) HouseholdByID(id int) *Household {
	for i := range p.Households {
		if p.Households[i].ID == id {
			return &p.Households[i]
		}
	}
	return nil
}

// AdultsOf counts the adults in the given simulation year among a set of
// member positions into Persons.
func (p *Population) AdultsOf(members []int, year int) int {
	n := 0
	for _, i := range members {
		if p.Persons[i].Age(year) >= 18 {
			n++
		}
	}
	return n
}

// HouseholdStats are the derived household attributes the means test needs.
type HouseholdStats struct {
	Size         int
	AdultCount   int
	RetireeCount int
}

// StatsOf derives size, adult count and retiree count for a set of member
// positions into Persons in the given simulation year.
func (p *Population) StatsOf(members []int, year int) HouseholdStats {
	st := HouseholdStats{Size: len(members)}
	for _, i := range members {
		if p.Persons[i].Age(year) >= 18 {
			st.AdultCount++
		}
		if p.Persons[i].IsRetired {
			st.RetireeCount++
		}
	}
	return st
}
