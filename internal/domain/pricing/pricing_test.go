package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drively/internal/domain/shared/money"
)

func TestComputeTotal_BasePlusPerDayAddOn(t *testing.T) {
	// 3 days at 50/day with insurance: 150 + 45
	total, err := ComputeTotal(3, money.Must(50, "USD"), AddOns{Insurance: true})
	require.NoError(t, err)
	assert.Equal(t, int64(195), total.Amount)
	assert.Equal(t, "USD", total.Currency)
}

func TestComputeTotal_FlatFeeIgnoresDuration(t *testing.T) {
	short, err := ComputeTotal(2, money.Must(80, "USD"), AddOns{AdditionalDriver: true})
	require.NoError(t, err)
	assert.Equal(t, int64(185), short.Amount)

	long, err := ComputeTotal(10, money.Must(80, "USD"), AddOns{AdditionalDriver: true})
	require.NoError(t, err)
	// flat component is 25 in both quotes
	assert.Equal(t, int64(10*80+25), long.Amount)
}

func TestComputeTotal_AllAddOns(t *testing.T) {
	total, err := ComputeTotal(4, money.Must(60, "USD"), AddOns{
		Insurance:        true,
		GPS:              true,
		ChildSeat:        true,
		AdditionalDriver: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4*60+4*15+4*5+4*8+25), total.Amount)
}

func TestComputeTotal_ZeroDays(t *testing.T) {
	total, err := ComputeTotal(0, money.Must(50, "USD"), AddOns{Insurance: true, GPS: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total.Amount)

	withDriver, err := ComputeTotal(0, money.Must(50, "USD"), AddOns{AdditionalDriver: true})
	require.NoError(t, err)
	assert.Equal(t, int64(AdditionalDriverFlat), withDriver.Amount)
}

func TestComputeTotal_ClampsNegativeRate(t *testing.T) {
	total, err := ComputeTotal(3, money.Must(-10, "USD"), AddOns{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total.Amount)
}

func TestComputeTotal_Deterministic(t *testing.T) {
	addOns := AddOns{GPS: true, ChildSeat: true}
	first, err := ComputeTotal(7, money.Must(95, "USD"), addOns)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ComputeTotal(7, money.Must(95, "USD"), addOns)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeTotal_InvalidInputs(t *testing.T) {
	_, err := ComputeTotal(3, money.Money{Amount: 50}, AddOns{})
	assert.ErrorIs(t, err, ErrCurrencyUnset)

	_, err = ComputeTotal(-1, money.Must(50, "USD"), AddOns{})
	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestComputeTotal_EnablingAddOnNeverLowersTotal(t *testing.T) {
	// Walk every add-on combination; flipping any single add-on on must not
	// decrease the quote, and flipping it off must not increase it.
	combo := func(mask int) AddOns {
		return AddOns{
			Insurance:        mask&1 != 0,
			GPS:              mask&2 != 0,
			ChildSeat:        mask&4 != 0,
			AdditionalDriver: mask&8 != 0,
		}
	}
	for _, days := range []int{0, 1, 3, 14} {
		for mask := 0; mask < 16; mask++ {
			base, err := ComputeTotal(days, money.Must(50, "USD"), combo(mask))
			require.NoError(t, err)
			for bit := 0; bit < 4; bit++ {
				if mask&(1<<bit) != 0 {
					continue
				}
				richer, err := ComputeTotal(days, money.Must(50, "USD"), combo(mask|1<<bit))
				require.NoError(t, err)
				assert.GreaterOrEqual(t, richer.Amount, base.Amount,
					"days=%d mask=%04b bit=%d", days, mask, bit)
			}
		}
	}
}

func TestNewBreakdown_LinesSumToTotal(t *testing.T) {
	b, err := NewBreakdown(3, money.Must(50, "USD"), AddOns{Insurance: true, AdditionalDriver: true})
	require.NoError(t, err)
	require.Len(t, b.Lines, 3)

	var sum int64
	for _, line := range b.Lines {
		sum += line.Amount.Amount
	}
	assert.Equal(t, b.Total.Amount, sum)
	assert.Equal(t, int64(3*50+3*15+25), b.Total.Amount)
}
