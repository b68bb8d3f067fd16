package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdultsOf(t *testing.T) {
	pop := &Population{
		Persons: []Person{
			{ID: 1, BirthYear: 1980},
			{ID: 2, BirthYear: 2010},
			{ID: 3, BirthYear: 2002},
		},
	}

	// 2020: the 2002 cohort just makes the adult cutoff.
	assert.Equal(t, 2, pop.AdultsOf([]int{0, 1, 2}, 2020))
	assert.Equal(t, 1, pop.AdultsOf([]int{0, 2}, 2019))
	assert.Equal(t, 0, pop.AdultsOf(nil, 2020))
}

func TestStatsOf(t *testing.T) {
	pop := &Population{
		Persons: []Person{
			{ID: 1, BirthYear: 1950, IsRetired: true},
			{ID: 2, BirthYear: 1952, IsRetired: true},
			{ID: 3, BirthYear: 2008},
		},
	}

	st := pop.StatsOf([]int{0, 1, 2}, 2020)
	assert.Equal(t, HouseholdStats{Size: 3, AdultCount: 2, RetireeCount: 2}, st)

	// A member subset only sees its own rows.
	st = pop.StatsOf([]int{2}, 2020)
	assert.Equal(t, HouseholdStats{Size: 1}, st)

	assert.Equal(t, HouseholdStats{}, pop.StatsOf(nil, 2020))
}
