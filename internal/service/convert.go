package service

import (
	"fmt"

	"github.com/mmynk/sharely/internal/calculator"
	"github.com/mmynk/sharely/internal/models"
	"github.com/mmynk/sharely/pkg/billrpc"
)

func toRPCBill(bill *models.Bill) billrpc.Bill {
	people := make([]billrpc.Person, len(bill.People))
	for i, p := range bill.People {
		people[i] = billrpc.Person{ID: p.ID, Name: p.Name, Color: p.Color}
	}
	items := make([]billrpc.Item, len(bill.Items))
	for i, item := range bill.Items {
		ids := item.ParticipantIDs
		if ids == nil {
			ids = []string{}
		}
		items[i] = billrpc.Item{
			ID:             item.ID,
			Name:           item.Name,
			PriceCents:     item.PriceCents,
			ParticipantIDs: ids,
		}
	}

	return billrpc.Bill{
		ID:        bill.ID,
		Title:     bill.Title,
		People:    people,
		Items:     items,
		Discount:  toRPCCharge(bill.Discount),
		VAT:       toRPCCharge(bill.VAT),
		Service:   toRPCCharge(bill.Service),
		Version:   bill.Version,
		CreatedAt: bill.CreatedAt,
		UpdatedAt: bill.UpdatedAt,
	}
}

func toRPCCharge(c models.ChargeSpec) billrpc.Charge {
	c = c.Normalized()
	return billrpc.Charge{Kind: c.Kind, Value: c.Value}
}

func fromRPCCharge(c billrpc.Charge) models.ChargeSpec {
	return models.ChargeSpec{Kind: c.Kind, Value: c.Value}.Normalized()
}

// toRPCResult converts a computed bill. Names are looked up from the bill's
// people so clients need not join them.
func toRPCResult(bill *models.Bill, res calculator.BillResult) billrpc.Result {
	names := make(map[calculator.PersonID]string, len(bill.People))
	for _, p := range bill.People {
		names[calculator.PersonID(p.ID)] = p.Name
	}

	people := make([]billrpc.PersonTotal, len(res.Lines))
	for i, line := range res.Lines {
		people[i] = billrpc.PersonTotal{
			PersonID:      string(line.PersonID),
			Name:          names[line.PersonID],
			BaseCents:     line.BaseCents,
			DiscountCents: line.DiscountCents,
			ChargesCents:  line.ChargesCents,
			TotalCents:    line.TotalCents,
		}
	}

	return billrpc.Result{
		ItemsTotalCents:    res.ItemsTotalCents,
		UnassignedCents:    res.UnassignedCents,
		DiscountCents:      res.DiscountCents,
		VATCents:           res.VATCents,
		ServiceChargeCents: res.ServiceChargeCents,
		GrandTotalCents:    res.GrandTotalCents,
		People:             people,
	}
}

// billFromCalculateRequest builds an unsaved bill for a stateless calculation.
// People sent without an id are keyed by name, so ids (or names) must be
// unique. Prices must lie in [0, calculator.MaxPriceCents].
func billFromCalculateRequest(req *billrpc.CalculateRequest) (*models.Bill, error) {
	bill := &models.Bill{
		Discount: fromRPCCharge(req.Discount),
		VAT:      fromRPCCharge(req.VAT),
		Service:  fromRPCCharge(req.Service),
	}
	for i, p := range req.People {
		id := p.ID
		if id == "" {
			id = p.Name
		}
		if id == "" {
			return nil, fmt.Errorf("%w: person %d has neither id nor name", errInvalidRequest, i)
		}
		if bill.FindPerson(id) >= 0 {
			return nil, fmt.Errorf("%w: duplicate person %q", errInvalidRequest, id)
		}
		bill.People = append(bill.People, models.Person{ID: id, Name: p.Name, Color: p.Color})
	}
	for _, item := range req.Items {
		if item.PriceCents < 0 || item.PriceCents > calculator.MaxPriceCents {
			return nil, fmt.Errorf("%w: price of %q out of range: %d", errInvalidRequest, item.Name, item.PriceCents)
		}
		bill.Items = append(bill.Items, models.Item{
			ID:             item.ID,
			Name:           item.Name,
			PriceCents:     item.PriceCents,
			ParticipantIDs: item.ParticipantIDs,
		})
	}
	return bill, nil
}
