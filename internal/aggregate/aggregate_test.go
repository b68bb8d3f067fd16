package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestSumAndBroadcast(t *testing.T) {
	hhIDs := []int{1, 1, 2, 3, 2}
	income := []decimal.Decimal{d(100), d(250.50), d(0), d(10), d(99.50)}

	totals := Sum(hhIDs, income)
	assert.True(t, totals[1].Equal(d(350.50)))
	assert.True(t, totals[2].Equal(d(100)))
	assert.True(t, totals[3].Equal(d(10)))

	back := Broadcast(hhIDs, totals)
	assert.Len(t, back, len(hhIDs))
	assert.True(t, back[0].Equal(d(350.50)))
	assert.True(t, back[1].Equal(d(350.50)))
	assert.True(t, back[2].Equal(d(100)))
	assert.True(t, back[3].Equal(d(10)))
	assert.True(t, back[4].Equal(d(100)))
}

func TestBroadcastMissingGroupIsZero(t *testing.T) {
	out := Broadcast([]int{7}, map[int]decimal.Decimal{})
	assert.True(t, out[0].IsZero())
}

func TestCount(t *testing.T) {
	counts := Count([]int{5, 5, 9})
	assert.Equal(t, 2, counts[5])
	assert.Equal(t, 1, counts[9])
	assert.Equal(t, 0, counts[4])
}

func TestIndex(t *testing.T) {
	members := Index([]int{1, 2, 1, 3, 1})
	assert.Equal(t, []int{0, 2, 4}, members[1])
	assert.Equal(t, []int{1}, members[2])
	assert.Equal(t, []int{3}, members[3])
	assert.Nil(t, members[4])
}
