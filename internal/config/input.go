package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mikrosim/taxben/internal/domain"
)

// InputParser handles parsing of population input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadPopulation loads a population from a YAML file.
func (ip *InputParser) LoadPopulation(filename string) (*domain.Population, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.ParsePopulation(data)
}

// ParsePopulation parses and validates a population from YAML bytes.
func (ip *InputParser) ParsePopulation(data []byte) (*domain.Population, error) {
	var pop domain.Population
	if err := yaml.Unmarshal(data, &pop); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ip.ValidatePopulation(&pop); err != nil {
		return nil, fmt.Errorf("population validation failed: %w", err)
	}
	return &pop, nil
}

// ValidatePopulation checks the structural invariants of the input:
// unique ids, complete group membership (every person in exactly one
// existing tax unit and household), and the retirement attributes being
// consistent. Business plausibility of individual records is not checked
// here; a degenerate record flows through the engine's arithmetic.
func (ip *InputParser) ValidatePopulation(pop *domain.Population) error {
	if len(pop.Persons) == 0 {
		return fmt.Errorf("no persons provided")
	}

	unitIDs := make(map[int]bool, len(pop.TaxUnits))
	for _, tu := range pop.TaxUnits {
		if unitIDs[tu.ID] {
			return fmt.Errorf("duplicate tax unit id %d", tu.ID)
		}
		unitIDs[tu.ID] = true
	}
	hhIDs := make(map[int]bool, len(pop.Households))
	for _, hh := range pop.Households {
		if hhIDs[hh.ID] {
			return fmt.Errorf("duplicate household id %d", hh.ID)
		}
		hhIDs[hh.ID] = true
	}

	// Each tax unit must sit inside exactly one household: all members
	// of a unit share one household id.
	unitHousehold := make(map[int]int)

	personIDs := make(map[int]bool, len(pop.Persons))
	for i := range pop.Persons {
		p := &pop.Persons[i]
		if personIDs[p.ID] {
			return fmt.Errorf("duplicate person id %d", p.ID)
		}
		personIDs[p.ID] = true

		if err := ip.validatePerson(p); err != nil {
			return fmt.Errorf("person %d: %w", p.ID, err)
		}
		if !unitIDs[p.TaxUnitID] {
			return fmt.Errorf("person %d references unknown tax unit %d", p.ID, p.TaxUnitID)
		}
		if !hhIDs[p.HouseholdID] {
			return fmt.Errorf("person %d references unknown household %d", p.ID, p.HouseholdID)
		}
		if prev, seen := unitHousehold[p.TaxUnitID]; seen && prev != p.HouseholdID {
			return fmt.Errorf("tax unit %d spans households %d and %d", p.TaxUnitID, prev, p.HouseholdID)
		}
		unitHousehold[p.TaxUnitID] = p.HouseholdID
	}

	return nil
}

func (ip *InputParser) validatePerson(p *domain.Person) error {
	if p.BirthYear <= 0 {
		return fmt.Errorf("birth year is required")
	}
	if p.BirthMonth < 0 || p.BirthMonth > 11 {
		return fmt.Errorf("birth month %d out of range 0..11", p.BirthMonth)
	}
	// Retirement year is defined iff the person is retired.
	if p.IsRetired && p.RetirementYear == 0 {
		return fmt.Errorf("retired person has no retirement year")
	}
	if !p.IsRetired && p.RetirementYear != 0 {
		return fmt.Errorf("retirement year set for a person who is not retired")
	}
	if p.GrossWageMonthly.IsNegative() {
		return fmt.Errorf("gross wage cannot be negative")
	}
	if p.EarningPoints.IsNegative() {
		return fmt.Errorf("earning points cannot be negative")
	}
	return nil
}
