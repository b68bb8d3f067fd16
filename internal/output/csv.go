package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/mikrosim/taxben/internal/domain"
)

// CSVFormatter writes three sections of rows (persons, tax units,
// households), each with its own header, into one CSV stream.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(results *domain.ResultSet) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{
		"person_id", "regular_retirement_age", "full_retirement_age",
		"access_factor", "earning_points", "pension_claim",
		"pension_with_supplement", "total_retirement_income",
		"prior_year_point_value", "health_contribution_ceiling", "countable_income",
	}); err != nil {
		return nil, err
	}
	persons := append([]domain.PersonResult(nil), results.Persons...)
	sort.Slice(persons, func(i, j int) bool { return persons[i].PersonID < persons[j].PersonID })
	for _, p := range persons {
		if err := w.Write([]string{
			fmt.Sprintf("%d", p.PersonID),
			fmt.Sprintf("%.4f", p.RegularRetirementAge),
			fmt.Sprintf("%.4f", p.FullRetirementAge),
			p.AccessFactor.String(),
			p.EarningPoints.String(),
			p.PensionClaim.StringFixed(2),
			p.PensionWithSupplement.StringFixed(2),
			p.TotalRetirementIncome.StringFixed(2),
			p.PriorYearPointValue.StringFixed(2),
			p.HealthContributionCeiling.StringFixed(2),
			p.CountableIncome.StringFixed(2),
		}); err != nil {
			return nil, err
		}
	}

	if err := w.Write([]string{"tax_unit_id", "adult_count", "retirement_savings_deduction"}); err != nil {
		return nil, err
	}
	units := append([]domain.TaxUnitResult(nil), results.TaxUnits...)
	sort.Slice(units, func(i, j int) bool { return units[i].TaxUnitID < units[j].TaxUnitID })
	for _, u := range units {
		if err := w.Write([]string{
			fmt.Sprintf("%d", u.TaxUnitID),
			fmt.Sprintf("%d", u.AdultCount),
			u.Deduction.StringFixed(2),
		}); err != nil {
			return nil, err
		}
	}

	if err := w.Write([]string{
		"household_id", "countable_income", "wealth_threshold",
		"need_after_wealth_test", "subsistence_benefit",
	}); err != nil {
		return nil, err
	}
	households := append([]domain.HouseholdResult(nil), results.Households...)
	sort.Slice(households, func(i, j int) bool { return households[i].HouseholdID < households[j].HouseholdID })
	for _, h := range households {
		if err := w.Write([]string{
			fmt.Sprintf("%d", h.HouseholdID),
			h.CountableIncome.StringFixed(2),
			h.WealthThreshold.StringFixed(2),
			h.NeedAfterWealthTest.StringFixed(2),
			h.SubsistenceBenefit.StringFixed(2),
		}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
