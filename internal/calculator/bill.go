package calculator

// Line is one person's breakdown of the bill.
type Line struct {
	PersonID      PersonID
	BaseCents     int64 // sum of item shares
	DiscountCents int64 // taken off BaseCents
	ChargesCents  int64 // VAT and service charge added after the discount
	TotalCents    int64
}

// BillResult is the computed bill.
type BillResult struct {
	// ItemsTotalCents is the raw sum of every item price, including items
	// nobody was assigned to. It is not reconciled with PerPerson.
	ItemsTotalCents int64

	// UnassignedCents is the part of ItemsTotalCents with no participants.
	UnassignedCents int64

	DiscountCents      int64
	VATCents           int64
	ServiceChargeCents int64

	// PerPerson holds the final amount owed by each person, in input order.
	PerPerson Shares

	// GrandTotalCents equals PerPerson.Sum().
	GrandTotalCents int64

	Lines []Line

	// Adjustments counts the one-cent reconciliation steps of both passes.
	Adjustments int
}

// ComputeBill runs the full allocation pipeline.
//
// The discount is distributed first. VAT and service charge are then each
// resolved against the discounted total and distributed together in a single
// pass, so the grand total is the discounted total plus both charges.
func ComputeBill(people []PersonID, items []Item, discount, vat, service ChargeSpec) BillResult {
	base := Split(people, items)

	discounted := Distribute(base, discount, Subtract)
	afterDiscount := discounted.Net

	vatCents := ChargeCents(afterDiscount, vat, Add)
	serviceCents := ChargeCents(afterDiscount, service, Add)
	final := Apply(discounted.PerPerson, vatCents+serviceCents, Add)

	lines := make([]Line, len(base))
	for i, share := range base {
		mid := discounted.PerPerson[i].Cents
		total := final.PerPerson[i].Cents
		lines[i] = Line{
			PersonID:      share.PersonID,
			BaseCents:     share.Cents,
			DiscountCents: share.Cents - mid,
			ChargesCents:  total - mid,
			TotalCents:    total,
		}
	}

	return BillResult{
		ItemsTotalCents:    ItemsTotal(items),
		UnassignedCents:    UnassignedTotal(items),
		DiscountCents:      discounted.ChargeCents,
		VATCents:           vatCents,
		ServiceChargeCents: serviceCents,
		PerPerson:          final.PerPerson,
		GrandTotalCents:    final.Net,
		Lines:              lines,
		Adjustments:        discounted.Adjustments + final.Adjustments,
	}
}
