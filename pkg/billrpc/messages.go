package billrpc

import (
	"encoding/json"
	"log/slog"
)

// Person is someone sharing a bill.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Item is a line item. PriceCents is in minor currency units.
type Item struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	PriceCents     int64    `json:"price_cents"`
	ParticipantIDs []string `json:"participant_ids"`
}

// Charge is a discount, VAT or service charge setting. Kind is "percent"
// (Value is a percentage) or "amount" (Value is in cents).
type Charge struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// Bill is a stored bill snapshot.
type Bill struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	People    []Person `json:"people"`
	Items     []Item   `json:"items"`
	Discount  Charge   `json:"discount"`
	VAT       Charge   `json:"vat"`
	Service   Charge   `json:"service"`
	Version   int64    `json:"version"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// PersonTotal is one person's breakdown.
type PersonTotal struct {
	PersonID      string `json:"person_id"`
	Name          string `json:"name,omitempty"`
	BaseCents     int64  `json:"base_cents"`
	DiscountCents int64  `json:"discount_cents"`
	ChargesCents  int64  `json:"charges_cents"`
	TotalCents    int64  `json:"total_cents"`
}

// Result is a computed bill.
type Result struct {
	ItemsTotalCents    int64         `json:"items_total_cents"`
	UnassignedCents    int64         `json:"unassigned_cents"`
	DiscountCents      int64         `json:"discount_cents"`
	VATCents           int64         `json:"vat_cents"`
	ServiceChargeCents int64         `json:"service_charge_cents"`
	GrandTotalCents    int64         `json:"grand_total_cents"`
	People             []PersonTotal `json:"people"`
}

// BillResponse is returned by every call that reads or changes one bill.
// EditToken is only set when a bill is created or imported.
type BillResponse struct {
	Bill      Bill   `json:"bill"`
	Result    Result `json:"result"`
	EditToken string `json:"edit_token,omitempty"`
}

// LogValue summarizes the response for logs without dumping the whole bill.
func (r BillResponse) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bill_id", r.Bill.ID),
		slog.Int64("version", r.Bill.Version),
		slog.Int("people", len(r.Bill.People)),
		slog.Int("items", len(r.Bill.Items)),
		slog.Int64("grand_total_cents", r.Result.GrandTotalCents),
	)
}

type CalculateRequest struct {
	People   []Person `json:"people"`
	Items    []Item   `json:"items"`
	Discount Charge   `json:"discount"`
	VAT      Charge   `json:"vat"`
	Service  Charge   `json:"service"`
}

type CalculateResponse struct {
	Result Result `json:"result"`
}

func (r CalculateResponse) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("people", len(r.Result.People)),
		slog.Int64("grand_total_cents", r.Result.GrandTotalCents),
	)
}

type CreateBillRequest struct {
	Title string `json:"title,omitempty"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type ListBillsRequest struct{}

type BillSummary struct {
	BillID          string `json:"bill_id"`
	Title           string `json:"title"`
	PeopleCount     int    `json:"people_count"`
	ItemCount       int    `json:"item_count"`
	GrandTotalCents int64  `json:"grand_total_cents"`
	UpdatedAt       int64  `json:"updated_at"`
}

type ListBillsResponse struct {
	Bills []BillSummary `json:"bills"`
}

type AddPersonRequest struct {
	BillID string `json:"bill_id"`
	Name   string `json:"name"`
}

type RemovePersonRequest struct {
	BillID   string `json:"bill_id"`
	PersonID string `json:"person_id"`
}

// AddItemRequest adds an item. Price is a decimal currency string such as "12.50".
type AddItemRequest struct {
	BillID         string   `json:"bill_id"`
	Name           string   `json:"name"`
	Price          string   `json:"price"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

type RemoveItemRequest struct {
	BillID string `json:"bill_id"`
	ItemID string `json:"item_id"`
}

type ToggleParticipantRequest struct {
	BillID   string `json:"bill_id"`
	ItemID   string `json:"item_id"`
	PersonID string `json:"person_id"`
}

type SetChargesRequest struct {
	BillID   string `json:"bill_id"`
	Discount Charge `json:"discount"`
	VAT      Charge `json:"vat"`
	Service  Charge `json:"service"`
}

type ResetBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillResponse struct{}

type ExportBillRequest struct {
	BillID string `json:"bill_id"`
}

type ExportBillResponse struct {
	Document json.RawMessage `json:"document"`
}

type ImportBillRequest struct {
	Document json.RawMessage `json:"document"`
}
