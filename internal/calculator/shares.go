// Package calculator implements the bill allocation engine.
//
// All money is held in integer cents. The engine is stateless: every function
// is a pure function of its inputs, so it can be called from any number of
// goroutines as long as the inputs are not mutated concurrently.
//
// A bill is computed in three stages:
//
//	base     = Split(people, items)                  // equal share of each item, per person
//	discount = Distribute(base, discount, Subtract)  // proportional, reconciled to the cent
//	final    = Apply(discounted, vat+service, Add)   // one combined proportional pass
//
// The discount and charge stages always sum exactly to their target; the split
// stage does not reconcile per-item rounding (1000 cents over 3 people is 333
// each).
package calculator

// PersonID identifies a person on a bill.
type PersonID string

// Share is one person's amount in cents.
type Share struct {
	PersonID PersonID
	Cents    int64
}

// Shares is an ordered per-person cent mapping. The order is the caller's
// person order and breaks ties during reconciliation.
type Shares []Share

// Sum returns the total of all shares.
func (s Shares) Sum() int64 {
	var total int64
	for _, share := range s {
		total += share.Cents
	}
	return total
}

// Get returns the amount for id, or 0 if id is not present.
func (s Shares) Get(id PersonID) int64 {
	for _, share := range s {
		if share.PersonID == id {
			return share.Cents
		}
	}
	return 0
}

// Map returns the shares keyed by person.
func (s Shares) Map() map[PersonID]int64 {
	m := make(map[PersonID]int64, len(s))
	for _, share := range s {
		m[share.PersonID] = share.Cents
	}
	return m
}

// IDs returns the person ids in order.
func (s Shares) IDs() []PersonID {
	ids := make([]PersonID, len(s))
	for i, share := range s {
		ids[i] = share.PersonID
	}
	return ids
}

func (s Shares) clone() Shares {
	out := make(Shares, len(s))
	copy(out, s)
	return out
}

func (s Shares) zeroed() Shares {
	out := make(Shares, len(s))
	for i, share := range s {
		out[i] = Share{PersonID: share.PersonID}
	}
	return out
}
