// Package billedit applies user edits to a bill snapshot.
//
// These are the checks the calculator never makes: names must be non-empty
// and unique, prices must be positive, and references must resolve. Every
// function mutates the bill in place and leaves it untouched on error.
package billedit

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/sharely/internal/calculator"
	"github.com/mmynk/sharely/internal/models"
)

var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrDuplicatePerson = errors.New("person already exists")
	ErrInvalidPrice    = errors.New("price out of range")
	ErrPersonNotFound  = errors.New("person not found")
	ErrItemNotFound    = errors.New("item not found")
)

// Palette is the set of display colours handed out to people in turn.
var Palette = []string{
	"#e76f51", "#2a9d8f", "#e9c46a", "#264653",
	"#f4a261", "#8ab17d", "#b56576", "#6d597a",
}

// AddPerson appends a person with the given name. Names are trimmed and
// must be unique ignoring case.
func AddPerson(bill *models.Bill, name string) (models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Person{}, ErrEmptyName
	}
	for _, p := range bill.People {
		if strings.EqualFold(p.Name, name) {
			return models.Person{}, fmt.Errorf("%w: %q", ErrDuplicatePerson, name)
		}
	}

	person := models.Person{
		ID:    newID(),
		Name:  name,
		Color: nextColor(bill.People),
	}
	bill.People = append(bill.People, person)
	return person, nil
}

// RemovePerson deletes a person and drops them from every item they share.
func RemovePerson(bill *models.Bill, personID string) error {
	idx := bill.FindPerson(personID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}

	bill.People = slices.Delete(bill.People, idx, idx+1)
	for i := range bill.Items {
		bill.Items[i].ParticipantIDs = slices.DeleteFunc(bill.Items[i].ParticipantIDs, func(id string) bool {
			return id == personID
		})
	}
	return nil
}

// AddItem appends an item. price is a decimal currency string such as
// "12.50"; it must come to at least one cent and at most
// calculator.MaxPriceCents. participantIDs may be empty.
func AddItem(bill *models.Bill, name, price string, participantIDs []string) (models.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Item{}, ErrEmptyName
	}
	cents := calculator.ToCents(price)
	if cents <= 0 || cents > calculator.MaxPriceCents {
		return models.Item{}, fmt.Errorf("%w: %q", ErrInvalidPrice, price)
	}

	var participants []string
	for _, id := range participantIDs {
		if bill.FindPerson(id) < 0 {
			return models.Item{}, fmt.Errorf("%w: %s", ErrPersonNotFound, id)
		}
		if !slices.Contains(participants, id) {
			participants = append(participants, id)
		}
	}

	item := models.Item{
		ID:             newID(),
		Name:           name,
		PriceCents:     cents,
		ParticipantIDs: participants,
	}
	bill.Items = append(bill.Items, item)
	return item, nil
}

// RemoveItem deletes an item.
func RemoveItem(bill *models.Bill, itemID string) error {
	idx := bill.FindItem(itemID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	bill.Items = slices.Delete(bill.Items, idx, idx+1)
	return nil
}

// ToggleParticipant adds the person to the item if absent, or removes them
// if present. It reports whether the person now shares the item.
func ToggleParticipant(bill *models.Bill, itemID, personID string) (bool, error) {
	idx := bill.FindItem(itemID)
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if bill.FindPerson(personID) < 0 {
		return false, fmt.Errorf("%w: %s", ErrPersonNotFound, personID)
	}

	item := &bill.Items[idx]
	if pos := slices.Index(item.ParticipantIDs, personID); pos >= 0 {
		item.ParticipantIDs = slices.Delete(item.ParticipantIDs, pos, pos+1)
		return false, nil
	}
	item.ParticipantIDs = append(item.ParticipantIDs, personID)
	return true, nil
}

// SetCharges replaces the discount, VAT and service charge settings. Values
// are stored as given; the calculator clamps them when the bill is computed.
func SetCharges(bill *models.Bill, discount, vat, service models.ChargeSpec) {
	bill.Discount = discount.Normalized()
	bill.VAT = vat.Normalized()
	bill.Service = service.Normalized()
}

// Reset removes all people and items. Charge settings are kept.
func Reset(bill *models.Bill) {
	bill.People = nil
	bill.Items = nil
}

func newID() string {
	return uuid.NewString()
}

// nextColor returns the first palette colour nobody uses yet, cycling once
// the palette is exhausted.
func nextColor(people []models.Person) string {
	for _, c := range Palette {
		if !slices.ContainsFunc(people, func(p models.Person) bool { return p.Color == c }) {
			return c
		}
	}
	return Palette[len(people)%len(Palette)]
}
