package billedit

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/sharely/internal/calculator"
	"github.com/mmynk/sharely/internal/models"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = 1

// ErrInvalidDocument is returned when an import is not a bill document.
var ErrInvalidDocument = errors.New("invalid bill document")

// Document is the portable JSON form of a bill. The people and items keys
// match the files written by earlier versions of the app, so those import
// unchanged.
type Document struct {
	Version  int               `json:"version"`
	Title    string            `json:"title,omitempty"`
	People   *[]DocumentPerson `json:"people"`
	Items    *[]DocumentItem   `json:"items"`
	Discount *DocumentCharge   `json:"discount,omitempty"`
	VAT      *DocumentCharge   `json:"vat,omitempty"`
	Service  *DocumentCharge   `json:"service,omitempty"`
}

type DocumentPerson struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type DocumentItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	PriceCents     int64    `json:"priceCents"`
	ParticipantIDs []string `json:"participantIds"`
}

type DocumentCharge struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// Export encodes the bill as an indented JSON document.
func Export(bill *models.Bill) ([]byte, error) {
	people := make([]DocumentPerson, len(bill.People))
	for i, p := range bill.People {
		people[i] = DocumentPerson{ID: p.ID, Name: p.Name, Color: p.Color}
	}
	items := make([]DocumentItem, len(bill.Items))
	for i, item := range bill.Items {
		ids := item.ParticipantIDs
		if ids == nil {
			ids = []string{}
		}
		items[i] = DocumentItem{
			ID:             item.ID,
			Name:           item.Name,
			PriceCents:     item.PriceCents,
			ParticipantIDs: ids,
		}
	}

	doc := Document{
		Version:  DocumentVersion,
		Title:    bill.Title,
		People:   &people,
		Items:    &items,
		Discount: exportCharge(bill.Discount),
		VAT:      exportCharge(bill.VAT),
		Service:  exportCharge(bill.Service),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode bill: %w", err)
	}
	return data, nil
}

// Import decodes a JSON document into a new bill snapshot without an ID.
//
// The document must carry people and items arrays. Everything else is
// repaired rather than rejected: missing ids are generated, people with
// blank, repeated or clashing names are dropped, unknown or repeated
// participant references are removed, and prices are clamped to
// [0, calculator.MaxPriceCents].
func Import(data []byte) (*models.Bill, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.People == nil || doc.Items == nil {
		return nil, fmt.Errorf("%w: people and items are required", ErrInvalidDocument)
	}

	bill := &models.Bill{Title: strings.TrimSpace(doc.Title)}

	for _, p := range *doc.People {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		id := p.ID
		if id == "" {
			id = newID()
		}
		clash := slices.ContainsFunc(bill.People, func(q models.Person) bool {
			return q.ID == id || strings.EqualFold(q.Name, name)
		})
		if clash {
			continue
		}
		color := p.Color
		if color == "" {
			color = nextColor(bill.People)
		}
		bill.People = append(bill.People, models.Person{ID: id, Name: name, Color: color})
	}

	for _, it := range *doc.Items {
		id := it.ID
		if id == "" || bill.FindItem(id) >= 0 {
			id = newID()
		}
		var participants []string
		for _, pid := range it.ParticipantIDs {
			if bill.FindPerson(pid) >= 0 && !slices.Contains(participants, pid) {
				participants = append(participants, pid)
			}
		}
		bill.Items = append(bill.Items, models.Item{
			ID:             id,
			Name:           strings.TrimSpace(it.Name),
			PriceCents:     min(max(it.PriceCents, 0), calculator.MaxPriceCents),
			ParticipantIDs: participants,
		})
	}

	bill.Discount = importCharge(doc.Discount)
	bill.VAT = importCharge(doc.VAT)
	bill.Service = importCharge(doc.Service)
	return bill, nil
}

func exportCharge(c models.ChargeSpec) *DocumentCharge {
	c = c.Normalized()
	return &DocumentCharge{Kind: c.Kind, Value: c.Value}
}

func importCharge(c *DocumentCharge) models.ChargeSpec {
	if c == nil {
		return models.ChargeSpec{Kind: models.ChargePercent}
	}
	return models.ChargeSpec{Kind: c.Kind, Value: c.Value}.Normalized()
}
