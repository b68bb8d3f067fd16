package calculation

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mikrosim/taxben/internal/aggregate"
	"github.com/mikrosim/taxben/internal/domain"
	"github.com/mikrosim/taxben/internal/params"
)

// Engine evaluates one population under one policy date. Components run
// in topological dependency order; the group aggregation steps are the
// only synchronization barriers, and per-record work inside a phase fans
// out across workers with no shared mutable state. The parameter set is
// resolved once at construction and shared read-only.
type Engine struct {
	Year int

	Pension     *PensionCalculator
	Deduction   *DeductionCalculator
	Subsistence *SubsistenceCalculator

	logger  Logger
	workers int
}

// NewEngine resolves the parameter set in force at the reference date and
// builds the three calculators from it.
func NewEngine(table *params.Table, refDate time.Time) (*Engine, error) {
	set, err := table.At(refDate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve parameter set: %w", err)
	}

	year := refDate.Year()
	e := &Engine{Year: year, logger: NopLogger{}}

	if e.Pension, err = NewPensionCalculator(set); err != nil {
		return nil, err
	}
	if e.Deduction, err = NewDeductionCalculator(set, year); err != nil {
		return nil, err
	}
	if e.Subsistence, err = NewSubsistenceCalculator(set); err != nil {
		return nil, err
	}
	return e, nil
}

// SetLogger installs a logger; nil restores the no-op default.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.logger = l
}

// SetWorkers overrides the worker count for per-record phases.
// Zero or negative means one worker per CPU.
func (e *Engine) SetWorkers(n int) { e.workers = n }

// Run evaluates the full population and returns one derived row per
// person, tax unit and household. A malformed individual record never
// aborts the batch; its arithmetic result stands (clamped where the
// formulas clamp).
func (e *Engine) Run(ctx context.Context, pop *domain.Population) (*domain.ResultSet, error) {
	start := time.Now()
	rs := &domain.ResultSet{
		Year:       e.Year,
		Persons:    make([]domain.PersonResult, len(pop.Persons)),
		TaxUnits:   make([]domain.TaxUnitResult, len(pop.TaxUnits)),
		Households: make([]domain.HouseholdResult, len(pop.Households)),
	}

	// Group membership is indexed once; every later group statistic is a
	// walk over the member positions, not the full person slice.
	unitIDs := make([]int, len(pop.Persons))
	hhIDs := make([]int, len(pop.Persons))
	for i := range pop.Persons {
		unitIDs[i] = pop.Persons[i].TaxUnitID
		hhIDs[i] = pop.Persons[i].HouseholdID
	}
	unitMembers := aggregate.Index(unitIDs)
	hhMembers := aggregate.Index(hhIDs)

	if err := e.pensionPhase(ctx, pop, rs); err != nil {
		return nil, err
	}
	taxShares, soliShares := e.deductionPhase(pop, rs, unitIDs, unitMembers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.subsistencePhase(pop, rs, taxShares, soliShares, hhIDs, hhMembers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Infof("evaluated %d persons, %d tax units, %d households in %s",
		len(pop.Persons), len(pop.TaxUnits), len(pop.Households), time.Since(start))
	return rs, nil
}

// pensionPhase computes the per-person pension columns in parallel.
func (e *Engine) pensionPhase(ctx context.Context, pop *domain.Population, rs *domain.ResultSet) error {
	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pop.Persons) {
		workers = len(pop.Persons)
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (len(pop.Persons) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(pop.Persons) {
			hi = len(pop.Persons)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return
				}
				p := &pop.Persons[i]
				outcome := e.Pension.Claim(p)
				rs.Persons[i] = domain.PersonResult{
					PersonID:                  p.ID,
					RegularRetirementAge:      outcome.RegularRetirementAge,
					FullRetirementAge:         outcome.FullRetirementAge,
					AccessFactor:              outcome.AccessFactor,
					EarningPoints:             outcome.EarningPoints,
					PensionClaim:              outcome.BaseClaim,
					PensionWithSupplement:     outcome.ClaimWithSupplement,
					TotalRetirementIncome:     outcome.TotalRetirementIncome,
					PriorYearPointValue:       outcome.PriorYearPointValue,
					HealthContributionCeiling: outcome.HealthContributionCeiling,
				}
			}
		}(lo, hi)
	}
	wg.Wait()
	return ctx.Err()
}

// deductionPhase aggregates contributions to tax-unit level, computes the
// deduction per unit, and returns the per-person monthly tax shares the
// means test needs (annual unit tax over adults over twelve, broadcast
// back to every member).
func (e *Engine) deductionPhase(pop *domain.Population, rs *domain.ResultSet, unitIDs []int, unitMembers map[int][]int) (taxShares, soliShares []decimal.Decimal) {
	n := len(pop.Persons)
	wage := make([]decimal.Decimal, n)
	publicPension := make([]decimal.Decimal, n)
	privatePension := make([]decimal.Decimal, n)
	health := make([]decimal.Decimal, n)
	care := make([]decimal.Decimal, n)
	unemployment := make([]decimal.Decimal, n)
	for i := range pop.Persons {
		p := &pop.Persons[i]
		wage[i] = p.GrossWageMonthly
		publicPension[i] = p.PublicPensionContribMonthly
		privatePension[i] = p.PrivatePensionContribMonthly
		health[i] = p.HealthContribMonthly
		care[i] = p.CareContribMonthly
		unemployment[i] = p.UnemploymentContribMonthly
	}

	wageByUnit := aggregate.Sum(unitIDs, wage)
	publicByUnit := aggregate.Sum(unitIDs, publicPension)
	privateByUnit := aggregate.Sum(unitIDs, privatePension)
	healthByUnit := aggregate.Sum(unitIDs, health)
	careByUnit := aggregate.Sum(unitIDs, care)
	unemploymentByUnit := aggregate.Sum(unitIDs, unemployment)

	taxShareByUnit := make(map[int]decimal.Decimal, len(pop.TaxUnits))
	soliShareByUnit := make(map[int]decimal.Decimal, len(pop.TaxUnits))

	for i := range pop.TaxUnits {
		tu := &pop.TaxUnits[i]
		adults := pop.AdultsOf(unitMembers[tu.ID], e.Year)
		in := DeductionInputs{
			GrossWageMonthly:             wageByUnit[tu.ID],
			PublicPensionContribMonthly:  publicByUnit[tu.ID],
			PrivatePensionContribMonthly: privateByUnit[tu.ID],
			HealthContribMonthly:         healthByUnit[tu.ID],
			CareContribMonthly:           careByUnit[tu.ID],
			UnemploymentContribMonthly:   unemploymentByUnit[tu.ID],
			AdultCount:                   adults,
			JointFiling:                  tu.JointFiling,
		}
		rs.TaxUnits[i] = domain.TaxUnitResult{
			TaxUnitID:  tu.ID,
			AdultCount: adults,
			Deduction:  e.Deduction.Deduction(in),
		}

		divisor := in.adults().Mul(twelve)
		taxShareByUnit[tu.ID] = tu.IncomeTaxAnnual.Div(divisor)
		soliShareByUnit[tu.ID] = tu.SolidaritySurchargeAnnual.Div(divisor)
	}

	taxShares = aggregate.Broadcast(unitIDs, taxShareByUnit)
	soliShares = aggregate.Broadcast(unitIDs, soliShareByUnit)
	return taxShares, soliShares
}

// subsistencePhase computes per-person countable income, sums it per
// household, and resolves the household benefit with wealth test and
// priority gates.
func (e *Engine) subsistencePhase(pop *domain.Population, rs *domain.ResultSet, taxShares, soliShares []decimal.Decimal, hhIDs []int, hhMembers map[int][]int) {
	n := len(pop.Persons)
	income := make([]decimal.Decimal, n)
	for i := range pop.Persons {
		p := &pop.Persons[i]
		income[i] = e.Subsistence.CountableIncome(CountableIncomeInputs{
			GrossTransferIncomeMonthly:      p.GrossTransferIncomeMonthly,
			IncomeTaxShareMonthly:           taxShares[i],
			SolidaritySurchargeShareMonthly: soliShares[i],
			SocialInsuranceContribMonthly:   p.SocialInsuranceContribMonthly,
			GrossWageMonthly:                p.GrossWageMonthly,
			SupplementExemptionMonthly:      p.SubsistenceExemptionMonthly,
		})
		rs.Persons[i].CountableIncome = income[i]
	}

	incomeByHH := aggregate.Sum(hhIDs, income)

	for i := range pop.Households {
		hh := &pop.Households[i]
		stats := pop.StatsOf(hhMembers[hh.ID], e.Year)

		belowPensionAge := false
		for _, idx := range hhMembers[hh.ID] {
			p := &pop.Persons[idx]
			if float64(p.Age(e.Year)) < rs.Persons[idx].RegularRetirementAge {
				belowPensionAge = true
				break
			}
		}

		needAfterWealth := e.Subsistence.NeedAfterWealthTest(hh.BasicNeedMonthly, hh.Wealth, stats.Size)
		rs.Households[i] = domain.HouseholdResult{
			HouseholdID:         hh.ID,
			CountableIncome:     incomeByHH[hh.ID],
			WealthThreshold:     e.Subsistence.WealthThreshold(stats.Size),
			NeedAfterWealthTest: needAfterWealth,
			SubsistenceBenefit: e.Subsistence.Benefit(BenefitInputs{
				NeedAfterWealthTest:            needAfterWealth,
				HouseholdIncome:                incomeByHH[hh.ID],
				ChildBenefit:                   hh.ChildBenefitMonthly,
				AdvanceMaintenance:             hh.AdvanceMaintenanceMonthly,
				HousingBenefitPriority:         hh.HousingBenefitPriority,
				ChildSupplementPriority:        hh.ChildSupplementPriority,
				HousingChildSupplementPriority: hh.HousingChildSupplementPriority,
				AnyMemberBelowPensionAge:       belowPensionAge,
				AdultCount:                     stats.AdultCount,
				RetireeCount:                   stats.RetireeCount,
			}),
		}
	}
}
