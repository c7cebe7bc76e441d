// Package service implements the Connect BillService on top of the storage,
// edit and calculator packages.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/sharely/internal/auth"
	"github.com/mmynk/sharely/internal/billedit"
	"github.com/mmynk/sharely/internal/calculator"
	"github.com/mmynk/sharely/internal/metrics"
	"github.com/mmynk/sharely/internal/middleware"
	"github.com/mmynk/sharely/internal/models"
	"github.com/mmynk/sharely/internal/storage"
	"github.com/mmynk/sharely/pkg/billrpc"
)

var (
	errMissingBillID  = errors.New("bill_id is required")
	errInvalidRequest = errors.New("invalid request")
	errWrongBill      = errors.New("edit token is for a different bill")
)

// Computation sources reported to metrics.
const (
	sourceStored = "stored"
	sourceAdhoc  = "adhoc"
)

// BillService implements billrpc.BillServiceHandler.
type BillService struct {
	store   storage.Store
	tokens  *auth.TokenManager
	metrics *metrics.Metrics
}

var _ billrpc.BillServiceHandler = (*BillService)(nil)

// NewBillService creates a new BillService. m may be nil.
func NewBillService(store storage.Store, tokens *auth.TokenManager, m *metrics.Metrics) *BillService {
	return &BillService{store: store, tokens: tokens, metrics: m}
}

// Calculate computes a bill that is not stored.
func (s *BillService) Calculate(ctx context.Context, req *connect.Request[billrpc.CalculateRequest]) (*connect.Response[billrpc.CalculateResponse], error) {
	slog.Debug("Calculate request received",
		"people_count", len(req.Msg.People),
		"items_count", len(req.Msg.Items),
	)

	bill, err := billFromCalculateRequest(req.Msg)
	if err != nil {
		slog.Warn("Calculate rejected", "error", err)
		return nil, toConnectError(err)
	}
	res := s.compute(sourceAdhoc, bill)

	return connect.NewResponse(&billrpc.CalculateResponse{
		Result: toRPCResult(bill, res),
	}), nil
}

// CreateBill creates an empty bill and hands back its edit token.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[billrpc.CreateBillRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("CreateBill request received", "title", req.Msg.Title)

	bill := &models.Bill{
		Title:    req.Msg.Title,
		Discount: models.ChargeSpec{Kind: models.ChargePercent},
		VAT:      models.ChargeSpec{Kind: models.ChargePercent},
		Service:  models.ChargeSpec{Kind: models.ChargePercent},
	}
	return s.create(ctx, "CreateBill", bill)
}

// GetBill returns a bill and its computed totals.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[billrpc.GetBillRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("GetBill request received", "bill_id", req.Msg.BillID)

	bill, err := s.load(ctx, req.Msg.BillID)
	if err != nil {
		slog.Error("GetBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	return s.respond(bill, ""), nil
}

// ListBills returns summaries of every stored bill.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[billrpc.ListBillsRequest]) (*connect.Response[billrpc.ListBillsResponse], error) {
	slog.Info("ListBills request received")

	summaries, err := s.store.ListBills(ctx)
	if err != nil {
		slog.Error("ListBills failed", "error", err)
		return nil, toConnectError(err)
	}

	bills := make([]billrpc.BillSummary, len(summaries))
	for i, summary := range summaries {
		bills[i] = billrpc.BillSummary{
			BillID:          summary.ID,
			Title:           summary.Title,
			PeopleCount:     summary.PeopleCount,
			ItemCount:       summary.ItemCount,
			GrandTotalCents: summary.GrandTotalCents,
			UpdatedAt:       summary.UpdatedAt,
		}
	}

	slog.Info("ListBills successful", "count", len(bills))

	return connect.NewResponse(&billrpc.ListBillsResponse{Bills: bills}), nil
}

// AddPerson adds a person to a bill.
func (s *BillService) AddPerson(ctx context.Context, req *connect.Request[billrpc.AddPersonRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("AddPerson request received", "bill_id", req.Msg.BillID, "name", req.Msg.Name)

	return s.mutate(ctx, "AddPerson", req.Msg.BillID, func(bill *models.Bill) error {
		person, err := billedit.AddPerson(bill, req.Msg.Name)
		if err == nil {
			slog.Debug("Person added", "bill_id", bill.ID, "person_id", person.ID)
		}
		return err
	})
}

// RemovePerson removes a person and their item shares.
func (s *BillService) RemovePerson(ctx context.Context, req *connect.Request[billrpc.RemovePersonRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("RemovePerson request received", "bill_id", req.Msg.BillID, "person_id", req.Msg.PersonID)

	return s.mutate(ctx, "RemovePerson", req.Msg.BillID, func(bill *models.Bill) error {
		return billedit.RemovePerson(bill, req.Msg.PersonID)
	})
}

// AddItem adds an item to a bill.
func (s *BillService) AddItem(ctx context.Context, req *connect.Request[billrpc.AddItemRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("AddItem request received",
		"bill_id", req.Msg.BillID,
		"name", req.Msg.Name,
		"price", req.Msg.Price,
		"participants", req.Msg.ParticipantIDs,
	)

	return s.mutate(ctx, "AddItem", req.Msg.BillID, func(bill *models.Bill) error {
		_, err := billedit.AddItem(bill, req.Msg.Name, req.Msg.Price, req.Msg.ParticipantIDs)
		return err
	})
}

// RemoveItem removes an item from a bill.
func (s *BillService) RemoveItem(ctx context.Context, req *connect.Request[billrpc.RemoveItemRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("RemoveItem request received", "bill_id", req.Msg.BillID, "item_id", req.Msg.ItemID)

	return s.mutate(ctx, "RemoveItem", req.Msg.BillID, func(bill *models.Bill) error {
		return billedit.RemoveItem(bill, req.Msg.ItemID)
	})
}

// ToggleParticipant adds or removes a person from an item.
func (s *BillService) ToggleParticipant(ctx context.Context, req *connect.Request[billrpc.ToggleParticipantRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("ToggleParticipant request received",
		"bill_id", req.Msg.BillID,
		"item_id", req.Msg.ItemID,
		"person_id", req.Msg.PersonID,
	)

	return s.mutate(ctx, "ToggleParticipant", req.Msg.BillID, func(bill *models.Bill) error {
		_, err := billedit.ToggleParticipant(bill, req.Msg.ItemID, req.Msg.PersonID)
		return err
	})
}

// SetCharges replaces the discount, VAT and service charge settings.
func (s *BillService) SetCharges(ctx context.Context, req *connect.Request[billrpc.SetChargesRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("SetCharges request received",
		"bill_id", req.Msg.BillID,
		"discount", req.Msg.Discount,
		"vat", req.Msg.VAT,
		"service", req.Msg.Service,
	)

	return s.mutate(ctx, "SetCharges", req.Msg.BillID, func(bill *models.Bill) error {
		billedit.SetCharges(bill,
			fromRPCCharge(req.Msg.Discount),
			fromRPCCharge(req.Msg.VAT),
			fromRPCCharge(req.Msg.Service),
		)
		return nil
	})
}

// ResetBill removes every person and item.
func (s *BillService) ResetBill(ctx context.Context, req *connect.Request[billrpc.ResetBillRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("ResetBill request received", "bill_id", req.Msg.BillID)

	return s.mutate(ctx, "ResetBill", req.Msg.BillID, func(bill *models.Bill) error {
		billedit.Reset(bill)
		return nil
	})
}

// DeleteBill deletes a bill.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[billrpc.DeleteBillRequest]) (*connect.Response[billrpc.DeleteBillResponse], error) {
	slog.Info("DeleteBill request received", "bill_id", req.Msg.BillID)

	if err := s.authorize(ctx, req.Msg.BillID); err != nil {
		slog.Warn("DeleteBill rejected", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.DeleteBill(ctx, req.Msg.BillID); err != nil {
		slog.Error("DeleteBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Bill deleted", "bill_id", req.Msg.BillID)

	return connect.NewResponse(&billrpc.DeleteBillResponse{}), nil
}

// ExportBill returns the bill as a portable JSON document.
func (s *BillService) ExportBill(ctx context.Context, req *connect.Request[billrpc.ExportBillRequest]) (*connect.Response[billrpc.ExportBillResponse], error) {
	slog.Info("ExportBill request received", "bill_id", req.Msg.BillID)

	bill, err := s.load(ctx, req.Msg.BillID)
	if err != nil {
		slog.Error("ExportBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	doc, err := billedit.Export(bill)
	if err != nil {
		slog.Error("ExportBill failed to encode", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&billrpc.ExportBillResponse{Document: doc}), nil
}

// ImportBill stores a new bill from an exported document.
func (s *BillService) ImportBill(ctx context.Context, req *connect.Request[billrpc.ImportBillRequest]) (*connect.Response[billrpc.BillResponse], error) {
	slog.Info("ImportBill request received", "size", len(req.Msg.Document))

	bill, err := billedit.Import(req.Msg.Document)
	if err != nil {
		slog.Warn("ImportBill rejected", "error", err)
		return nil, toConnectError(err)
	}

	return s.create(ctx, "ImportBill", bill)
}

// create stores a new bill and issues its edit token.
func (s *BillService) create(ctx context.Context, op string, bill *models.Bill) (*connect.Response[billrpc.BillResponse], error) {
	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error(op+" failed", "error", err)
		return nil, toConnectError(err)
	}

	token, err := s.tokens.Generate(bill.ID)
	if err != nil {
		slog.Error(op+" failed to issue token", "bill_id", bill.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Bill created", "bill_id", bill.ID, "title", bill.Title)

	return s.respond(bill, token), nil
}

// mutate applies edit to a stored bill on behalf of the token holder and
// saves it. A concurrent update surfaces as CodeAborted so the caller can
// reload and retry.
func (s *BillService) mutate(ctx context.Context, op, billID string, edit func(*models.Bill) error) (*connect.Response[billrpc.BillResponse], error) {
	if err := s.authorize(ctx, billID); err != nil {
		slog.Warn(op+" rejected", "bill_id", billID, "error", err)
		return nil, toConnectError(err)
	}

	bill, err := s.load(ctx, billID)
	if err != nil {
		slog.Error(op+" failed", "bill_id", billID, "error", err)
		return nil, toConnectError(err)
	}

	if err := edit(bill); err != nil {
		slog.Warn(op+" invalid", "bill_id", billID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error(op+" failed to save", "bill_id", billID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info(op+" successful", "bill_id", billID, "version", bill.Version)

	return s.respond(bill, ""), nil
}

// authorize checks that the request carries an edit token for billID.
func (s *BillService) authorize(ctx context.Context, billID string) error {
	if billID == "" {
		return errMissingBillID
	}
	tokenBill := middleware.GetBillID(ctx)
	if tokenBill == "" {
		return auth.ErrMissingToken
	}
	if tokenBill != billID {
		return errWrongBill
	}
	return nil
}

func (s *BillService) load(ctx context.Context, billID string) (*models.Bill, error) {
	if billID == "" {
		return nil, errMissingBillID
	}
	return s.store.GetBill(ctx, billID)
}

func (s *BillService) respond(bill *models.Bill, token string) *connect.Response[billrpc.BillResponse] {
	res := s.compute(sourceStored, bill)
	return connect.NewResponse(&billrpc.BillResponse{
		Bill:      toRPCBill(bill),
		Result:    toRPCResult(bill, res),
		EditToken: token,
	})
}

func (s *BillService) compute(source string, bill *models.Bill) calculator.BillResult {
	start := time.Now()
	res := bill.Compute()
	s.metrics.ObserveComputation(source, time.Since(start), res.Adjustments)
	return res
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, errMissingBillID),
		errors.Is(err, errInvalidRequest),
		errors.Is(err, billedit.ErrEmptyName),
		errors.Is(err, billedit.ErrInvalidPrice),
		errors.Is(err, billedit.ErrInvalidDocument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, billedit.ErrDuplicatePerson):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, billedit.ErrPersonNotFound),
		errors.Is(err, billedit.ErrItemNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, errWrongBill):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAborted, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
