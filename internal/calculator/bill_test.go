package calculator

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBill(t *testing.T) {
	people := []PersonID{"A", "B", "C"}

	t.Run("no charges returns split", func(t *testing.T) {
		items := []Item{
			{Name: "Pizza", PriceCents: 2000, Participants: []PersonID{"A", "B"}},
			{Name: "Salad", PriceCents: 1000, Participants: []PersonID{"C"}},
		}

		got := ComputeBill(people, items, PercentOf(0), PercentOf(0), PercentOf(0))

		assert.Equal(t, int64(3000), got.ItemsTotalCents)
		assert.Equal(t, Shares{{"A", 1000}, {"B", 1000}, {"C", 1000}}, got.PerPerson)
		assert.Equal(t, int64(3000), got.GrandTotalCents)
		assert.Zero(t, got.DiscountCents)
		assert.Zero(t, got.VATCents)
		assert.Zero(t, got.ServiceChargeCents)
	})

	t.Run("vat and service on discounted base", func(t *testing.T) {
		items := []Item{
			{Name: "Platter", PriceCents: 1000, Participants: people},
		}

		got := ComputeBill(people, items, PercentOf(10), PercentOf(8), PercentOf(12))

		// base 333 each (999), discount 100 -> 899 as 299/300/300,
		// VAT round(71.92)=72, service round(107.88)=108, total 1079.
		assert.Equal(t, int64(1000), got.ItemsTotalCents)
		assert.Equal(t, int64(100), got.DiscountCents)
		assert.Equal(t, int64(72), got.VATCents)
		assert.Equal(t, int64(108), got.ServiceChargeCents)
		assert.Equal(t, int64(1079), got.GrandTotalCents)
		assert.Equal(t, Shares{{"A", 359}, {"B", 360}, {"C", 360}}, got.PerPerson)

		require.Len(t, got.Lines, 3)
		assert.Equal(t, Line{PersonID: "A", BaseCents: 333, DiscountCents: 34, ChargesCents: 60, TotalCents: 359}, got.Lines[0])
		assert.Equal(t, Line{PersonID: "B", BaseCents: 333, DiscountCents: 33, ChargesCents: 60, TotalCents: 360}, got.Lines[1])
	})

	t.Run("charges computed independently against discounted total", func(t *testing.T) {
		items := []Item{
			{Name: "Set menu", PriceCents: 900, Participants: people},
		}

		got := ComputeBill(people, items, AmountOf(0), PercentOf(8), PercentOf(12))

		assert.Equal(t, int64(72), got.VATCents)
		assert.Equal(t, int64(108), got.ServiceChargeCents)
		assert.Equal(t, int64(1080), got.GrandTotalCents)
		assert.Equal(t, Shares{{"A", 360}, {"B", 360}, {"C", 360}}, got.PerPerson)
	})

	t.Run("fixed amounts", func(t *testing.T) {
		items := []Item{
			{Name: "Ramen", PriceCents: 1500, Participants: []PersonID{"A"}},
			{Name: "Gyoza", PriceCents: 500, Participants: []PersonID{"B"}},
		}

		got := ComputeBill(people, items, AmountOf(400), AmountOf(160), AmountOf(0))

		assert.Equal(t, int64(400), got.DiscountCents)
		assert.Equal(t, int64(160), got.VATCents)
		assert.Equal(t, Shares{{"A", 1320}, {"B", 440}, {"C", 0}}, got.PerPerson)
		assert.Equal(t, int64(1760), got.GrandTotalCents)
	})

	t.Run("discount wipes bill so no charges apply", func(t *testing.T) {
		items := []Item{
			{Name: "Coffee", PriceCents: 450, Participants: []PersonID{"A", "B"}},
		}

		got := ComputeBill(people, items, PercentOf(100), PercentOf(20), AmountOf(300))

		assert.Equal(t, int64(450), got.DiscountCents)
		assert.Zero(t, got.VATCents)
		assert.Zero(t, got.ServiceChargeCents)
		assert.Zero(t, got.GrandTotalCents)
		assert.Equal(t, Shares{{"A", 0}, {"B", 0}, {"C", 0}}, got.PerPerson)
	})

	t.Run("unassigned items reported but not charged", func(t *testing.T) {
		items := []Item{
			{Name: "Bread", PriceCents: 300},
			{Name: "Soup", PriceCents: 700, Participants: []PersonID{"B"}},
		}

		got := ComputeBill(people, items, PercentOf(0), PercentOf(10), PercentOf(0))

		assert.Equal(t, int64(1000), got.ItemsTotalCents)
		assert.Equal(t, int64(300), got.UnassignedCents)
		assert.Equal(t, int64(70), got.VATCents)
		assert.Equal(t, int64(770), got.GrandTotalCents)
	})

	t.Run("no people", func(t *testing.T) {
		items := []Item{{Name: "Ghost", PriceCents: 100, Participants: []PersonID{"x"}}}

		got := ComputeBill(nil, items, PercentOf(10), PercentOf(10), PercentOf(10))

		assert.Empty(t, got.PerPerson)
		assert.Zero(t, got.GrandTotalCents)
		assert.Equal(t, int64(100), got.ItemsTotalCents)
	})
}

func TestComputeBill_Properties(t *testing.T) {
	people := []PersonID{"a", "b", "c", "d", "e"}

	prop := func(prices []uint16, masks []uint8, d, v, s uint16, pctD, pctV, pctS bool) bool {
		items := make([]Item, len(prices))
		for i, p := range prices {
			var mask uint8
			if i < len(masks) {
				mask = masks[i]
			}
			var parts []PersonID
			for j, id := range people {
				if mask&(1<<j) != 0 {
					parts = append(parts, id)
				}
			}
			items[i] = Item{PriceCents: int64(p), Participants: parts}
		}
		spec := func(pct bool, v uint16) ChargeSpec {
			if pct {
				return PercentOf(float64(v % 101))
			}
			return AmountOf(int64(v))
		}

		got := ComputeBill(people, items, spec(pctD, d), spec(pctV, v), spec(pctS, s))
		again := ComputeBill(people, items, spec(pctD, d), spec(pctV, v), spec(pctS, s))

		base := Split(people, items).Sum()
		var lineTotal int64
		for _, line := range got.Lines {
			lineTotal += line.TotalCents
			if line.TotalCents != line.BaseCents-line.DiscountCents+line.ChargesCents {
				return false
			}
		}

		return got.GrandTotalCents == got.PerPerson.Sum() &&
			got.GrandTotalCents == base-got.DiscountCents+got.VATCents+got.ServiceChargeCents &&
			lineTotal == got.GrandTotalCents &&
			assert.ObjectsAreEqual(got, again)
	}

	require.NoError(t, quick.Check(prop, &quick.Config{MaxCount: 1000}))
}

func TestComputeBill_HugePrices(t *testing.T) {
	huge := int64(1<<62 + 1<<61)
	items := []Item{
		{Name: "Yacht", PriceCents: huge, Participants: []PersonID{"A"}},
		{Name: "Island", PriceCents: huge, Participants: []PersonID{"A"}},
	}

	got := ComputeBill([]PersonID{"A"}, items, PercentOf(10), PercentOf(8), PercentOf(0))

	require.Len(t, got.Lines, 1)
	line := got.Lines[0]
	assert.Equal(t, int64(2*MaxPriceCents), line.BaseCents)
	assert.Equal(t, int64(2*MaxPriceCents), got.ItemsTotalCents)
	assert.Positive(t, got.DiscountCents)
	assert.Positive(t, got.VATCents)
	assert.Equal(t, line.BaseCents-got.DiscountCents+got.VATCents, got.GrandTotalCents)
	assert.Equal(t, got.GrandTotalCents, got.PerPerson.Get("A"))
}
