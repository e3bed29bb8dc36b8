package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricelens/pricelens/internal/core"
)

func listing(amount float64, currency string) core.Listing {
	return core.Listing{Price: core.Price{Amount: amount, Currency: core.Currency(currency)}}
}

func TestNormalize(t *testing.T) {
	t.Run("DropsUnknownCurrencies", func(t *testing.T) {
		listings := []core.Listing{
			listing(10, "chaos"),
			listing(2, "divine"),
			listing(5, "exalt"),
		}

		require.Equal(t, []float64{10, 300}, Normalize(listings, 150))
	})

	t.Run("PreservesRelativeOrder", func(t *testing.T) {
		listings := []core.Listing{
			listing(1, "divine"),
			listing(3, "mirror"),
			listing(7, "chaos"),
			listing(0.5, "divine"),
		}

		require.Equal(t, []float64{200, 7, 100}, Normalize(listings, 200))
	})

	t.Run("EmptyWhenNothingSurvives", func(t *testing.T) {
		values := Normalize([]core.Listing{listing(1, "alch")}, 150)
		require.NotNil(t, values)
		require.Empty(t, values)
	})
}

func TestAverage(t *testing.T) {
	avg, ok := Average([]float64{10, 300})
	require.True(t, ok)
	require.InDelta(t, 155.0, avg, 1e-9)

	_, ok = Average(nil)
	require.False(t, ok)
}
