package models

import "github.com/mmynk/sharely/internal/calculator"

// Bill is a complete snapshot of one bill: who is sharing it, what was
// ordered, and the discount and charges to apply.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Title is the human-readable name for the bill.
	// Auto-generated from the creation date when empty.
	Title string

	// People are the participants, in display order.
	// The order also breaks ties when rounding cents.
	People []Person

	// Items are the line items, in display order.
	Items []Item

	Discount ChargeSpec
	VAT      ChargeSpec
	Service  ChargeSpec

	// Version increases on every successful update and guards against
	// concurrent edits overwriting each other.
	Version int64

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// Person is someone sharing the bill.
type Person struct {
	// ID is the unique identifier for the person within the bill.
	ID string

	// Name is the display name. Unique per bill, compared case-insensitively.
	Name string

	// Color is a cosmetic display colour (e.g. "#e76f51").
	Color string
}

// Item represents a single line item on a bill.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the description of the item (e.g., "Pizza", "Beer").
	Name string

	// PriceCents is the price in minor currency units.
	PriceCents int64

	// ParticipantIDs are the people sharing this item equally.
	// An item with no participants is not charged to anyone.
	ParticipantIDs []string
}

// Charge kinds accepted in a ChargeSpec.
const (
	ChargePercent = string(calculator.Percent)
	ChargeAmount  = string(calculator.Amount)
)

// ChargeSpec is a discount, VAT or service charge setting.
type ChargeSpec struct {
	// Kind is ChargePercent or ChargeAmount.
	Kind string

	// Value is a percentage for ChargePercent, or cents for ChargeAmount.
	Value float64
}

// Calc converts the setting for the calculator. Anything other than
// ChargeAmount is treated as a percentage.
func (c ChargeSpec) Calc() calculator.ChargeSpec {
	if c.Kind == ChargeAmount {
		return calculator.ChargeSpec{Kind: calculator.Amount, Value: c.Value}
	}
	return calculator.ChargeSpec{Kind: calculator.Percent, Value: c.Value}
}

// Normalized returns the setting with its kind resolved to a known value.
func (c ChargeSpec) Normalized() ChargeSpec {
	return ChargeSpec{Kind: string(c.Calc().Kind), Value: c.Value}
}

// PersonIDs returns the ids of all people in order.
func (b *Bill) PersonIDs() []calculator.PersonID {
	ids := make([]calculator.PersonID, len(b.People))
	for i, p := range b.People {
		ids[i] = calculator.PersonID(p.ID)
	}
	return ids
}

// FindPerson returns the index of the person with the given id, or -1.
func (b *Bill) FindPerson(id string) int {
	for i, p := range b.People {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// FindItem returns the index of the item with the given id, or -1.
func (b *Bill) FindItem(id string) int {
	for i, item := range b.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Compute runs the allocation engine over the snapshot.
func (b *Bill) Compute() calculator.BillResult {
	items := make([]calculator.Item, len(b.Items))
	for i, item := range b.Items {
		participants := make([]calculator.PersonID, len(item.ParticipantIDs))
		for j, id := range item.ParticipantIDs {
			participants[j] = calculator.PersonID(id)
		}
		items[i] = calculator.Item{
			Name:         item.Name,
			PriceCents:   item.PriceCents,
			Participants: participants,
		}
	}
	return calculator.ComputeBill(b.PersonIDs(), items, b.Discount.Calc(), b.VAT.Calc(), b.Service.Calc())
}

// Clone returns a deep copy of the bill.
func (b *Bill) Clone() *Bill {
	out := *b
	out.People = append([]Person(nil), b.People...)
	out.Items = nil
	for _, item := range b.Items {
		item.ParticipantIDs = append([]string(nil), item.ParticipantIDs...)
		out.Items = append(out.Items, item)
	}
	return &out
}
