package domain

import "github.com/shopspring/decimal"

// PersonResult holds the per-person derived columns of one evaluation pass.
type PersonResult struct {
	PersonID int `json:"person_id"`

	RegularRetirementAge float64 `json:"regular_retirement_age"`
	FullRetirementAge    float64 `json:"full_retirement_age"`

	AccessFactor          decimal.Decimal `json:"access_factor"`
	EarningPoints         decimal.Decimal `json:"earning_points"`
	PensionClaim          decimal.Decimal `json:"pension_claim"`
	PensionWithSupplement decimal.Decimal `json:"pension_with_supplement"`
	TotalRetirementIncome decimal.Decimal `json:"total_retirement_income"`

	PriorYearPointValue       decimal.Decimal `json:"prior_year_point_value"`
	HealthContributionCeiling decimal.Decimal `json:"health_contribution_ceiling"`

	CountableIncome decimal.Decimal `json:"countable_income"`
}

// TaxUnitResult holds the per-tax-unit derived columns.
type TaxUnitResult struct {
	TaxUnitID  int             `json:"tax_unit_id"`
	AdultCount int             `json:"adult_count"`
	Deduction  decimal.Decimal `json:"retirement_savings_deduction"`
}

// HouseholdResult holds the per-household derived columns.
type HouseholdResult struct {
	HouseholdID int `json:"household_id"`

	CountableIncome     decimal.Decimal `json:"countable_income"`
	WealthThreshold     decimal.Decimal `json:"wealth_threshold"`
	NeedAfterWealthTest decimal.Decimal `json:"need_after_wealth_test"`
	SubsistenceBenefit  decimal.Decimal `json:"subsistence_benefit"`
}

// ResultSet is the complete output of one engine run, keyed like the input.
type ResultSet struct {
	Year       int               `json:"year"`
	Persons    []PersonResult    `json:"persons"`
	TaxUnits   []TaxUnitResult   `json:"tax_units"`
	Households []HouseholdResult `json:"households"`
}

// PersonByID returns the result row for one person id, or nil.
func (rs *ResultSet) PersonByID(id int) *PersonResult {
	for i := range rs.Persons {
		if rs.Persons[i].PersonID == id {
			return &rs.Persons[i]
		}
	}
	return nil
}

// HouseholdByID returns the result row for one household id, or nil.
func (rs *ResultSet) HouseholdByID(id int) *HouseholdResult {
	for i := range rs.Households {
		if rs.Households[i].HouseholdID == id {
			return &rs.Households[i]
		}
	}
	return nil
}

// TaxUnitByID returns the result row for one tax unit id, or nil.
func (rs *ResultSet) TaxUnitByID(id int) *TaxUnitResult {
	for i := range rs.TaxUnits {
		if rs.TaxUnits[i].TaxUnitID == id {
			return &rs.TaxUnits[i]
		}
	}
	return nil
}
