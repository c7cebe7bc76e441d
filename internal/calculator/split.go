package calculator

// MaxPriceCents is the largest item price the calculator charges. Dearer
// prices are capped to it.
const MaxPriceCents = maxAmountCents

// maxTotalCents caps the cents credited across a whole bill, leaving room to
// add VAT and service charge without overflowing int64.
const maxTotalCents = 1 << 60

// Item represents a single priced line item on the bill.
type Item struct {
	Name         string
	PriceCents   int64
	Participants []PersonID
}

// Split computes each person's base amount from the items assigned to them.
//
// Every person in people starts at 0. Each item's price is divided by the number
// of distinct participants and rounded half up; that share is added to every
// participant. Items with no participants are skipped, so their cost reaches
// nobody. Participant ids that are not in people still count toward the divisor
// but are not credited.
//
// The shares of one item are not reconciled against its price: 1000 cents split
// three ways is 333 each, one cent short.
//
// Prices are capped at MaxPriceCents, and once maxTotalCents has been credited
// in total, later items are credited only what is left.
func Split(people []PersonID, items []Item) Shares {
	shares := make(Shares, 0, len(people))
	index := make(map[PersonID]int, len(people))
	for _, p := range people {
		if _, seen := index[p]; seen {
			continue
		}
		index[p] = len(shares)
		shares = append(shares, Share{PersonID: p})
	}

	var credited int64
	for _, item := range items {
		sharers := distinct(item.Participants)
		if len(sharers) == 0 {
			continue
		}

		var known int64
		for _, p := range sharers {
			if _, ok := index[p]; ok {
				known++
			}
		}
		if known == 0 {
			continue
		}

		share := divRound(clampPrice(item.PriceCents), int64(len(sharers)))
		if room := maxTotalCents - credited; share > room/known {
			share = room / known
		}
		for _, p := range sharers {
			if i, ok := index[p]; ok {
				shares[i].Cents += share
			}
		}
		credited += share * known
	}

	return shares
}

// ItemsTotal returns the raw sum of all item prices, assigned or not.
func ItemsTotal(items []Item) int64 {
	var total int64
	for _, item := range items {
		total = addCapped(total, clampPrice(item.PriceCents))
	}
	return total
}

// UnassignedTotal returns the sum of the prices of items nobody shares.
func UnassignedTotal(items []Item) int64 {
	var total int64
	for _, item := range items {
		if len(item.Participants) == 0 {
			total = addCapped(total, clampPrice(item.PriceCents))
		}
	}
	return total
}

func distinct(ids []PersonID) []PersonID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[PersonID]struct{}, len(ids))
	out := make([]PersonID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// divRound divides a non-negative a by a positive b, rounding half up.
func divRound(a, b int64) int64 {
	q, r := a/b, a%b
	if 2*r >= b {
		q++
	}
	return q
}

// clampPrice bounds a price to [0, MaxPriceCents].
func clampPrice(c int64) int64 {
	return min(max(c, 0), MaxPriceCents)
}

// addCapped adds two non-negative amounts, saturating at maxTotalCents.
func addCapped(a, b int64) int64 {
	if b > maxTotalCents-a {
		return maxTotalCents
	}
	return a + b
}
