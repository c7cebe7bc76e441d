package calculator

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

// ChargeKind selects how a ChargeSpec value is interpreted.
type ChargeKind string

const (
	// Percent treats the value as a percentage of the base, clamped to [0, 100].
	Percent ChargeKind = "percent"
	// Amount treats the value as a fixed number of cents.
	Amount ChargeKind = "amount"
)

// ChargeSpec describes a discount, VAT or service charge.
type ChargeSpec struct {
	Kind  ChargeKind
	Value float64
}

// PercentOf returns a percentage charge.
func PercentOf(pct float64) ChargeSpec {
	return ChargeSpec{Kind: Percent, Value: pct}
}

// AmountOf returns a fixed charge in cents.
func AmountOf(cents int64) ChargeSpec {
	return ChargeSpec{Kind: Amount, Value: float64(cents)}
}

// Direction says whether a charge is taken off the base or added on top.
type Direction int

const (
	Subtract Direction = iota
	Add
)

func (d Direction) String() string {
	if d == Add {
		return "add"
	}
	return "subtract"
}

// Distribution is the result of spreading a charge over a base mapping.
type Distribution struct {
	PerPerson   Shares
	Net         int64 // sum of PerPerson
	ChargeCents int64
	Adjustments int // one-cent reconciliation steps taken
}

// maxAmountCents bounds fixed amounts to the range a float64 holds exactly.
const maxAmountCents = 1 << 53

var hundred = decimal.NewFromInt(100)

// ChargeCents resolves spec against a base total. It never fails: non-finite
// values count as zero, percentages are clamped to [0, 100], amounts are
// rounded and floored at zero, and a subtracted amount never exceeds sum.
func ChargeCents(sum int64, spec ChargeSpec, dir Direction) int64 {
	if sum <= 0 {
		return 0
	}
	value := finite(spec.Value)

	if spec.Kind == Amount {
		cents := int64(math.Round(min(max(value, 0), maxAmountCents)))
		if dir == Subtract && cents > sum {
			cents = sum
		}
		return cents
	}

	pct := decimal.NewFromFloat(min(max(value, 0), 100))
	return decimal.NewFromInt(sum).Mul(pct).Div(hundred).Round(0).IntPart()
}

// Distribute resolves spec against the total of base and spreads the resulting
// charge over base in proportion to each person's amount.
func Distribute(base Shares, spec ChargeSpec, dir Direction) Distribution {
	return Apply(base, ChargeCents(base.Sum(), spec, dir), dir)
}

// Apply spreads chargeCents over base in proportion to each person's amount,
// then reconciles rounding so the result sums exactly to the target (base
// total minus the charge for Subtract, plus the charge for Add).
//
// Leftover cents are handed out one at a time to people ordered by their base
// amount, largest first, ties in input order, cycling until the sum matches.
// Nobody is taken below zero.
func Apply(base Shares, chargeCents int64, dir Direction) Distribution {
	sum := base.Sum()
	if sum <= 0 {
		return Distribution{PerPerson: base.zeroed()}
	}

	chargeCents = max(chargeCents, 0)
	if dir == Subtract {
		chargeCents = min(chargeCents, sum)
	}
	if chargeCents == 0 {
		return Distribution{PerPerson: base.clone(), Net: sum}
	}

	target := sum + chargeCents
	if dir == Subtract {
		target = sum - chargeCents
	}

	out := make(Shares, len(base))
	for i, share := range base {
		out[i] = Share{PersonID: share.PersonID, Cents: scale(share.Cents, target, sum)}
	}

	return Distribution{
		PerPerson:   out,
		Net:         target,
		ChargeCents: chargeCents,
		Adjustments: reconcile(base, out, target),
	}
}

// scale returns cents*target/sum rounded half away from zero, without
// overflowing on large products.
func scale(cents, target, sum int64) int64 {
	d := decimal.NewFromInt(sum)
	q, r := decimal.NewFromInt(cents).Mul(decimal.NewFromInt(target)).QuoRem(d, 0)
	if r.Abs().Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(d) {
		if r.IsNegative() {
			q = q.Sub(decimal.NewFromInt(1))
		} else {
			q = q.Add(decimal.NewFromInt(1))
		}
	}
	return q.IntPart()
}

// reconcile nudges out one cent at a time until it sums to target.
func reconcile(base, out Shares, target int64) int {
	diff := target - out.Sum()
	if diff == 0 || len(out) == 0 {
		return 0
	}

	order := make([]int, len(base))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(base[b].Cents, base[a].Cents)
	})

	step := int64(1)
	if diff < 0 {
		step = -1
	}

	steps := 0
	for i := 0; diff != 0; i = (i + 1) % len(order) {
		idx := order[i]
		if step < 0 && out[idx].Cents == 0 {
			continue
		}
		out[idx].Cents += step
		diff -= step
		steps++
	}
	return steps
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
