// Package billrpc defines the Connect surface of the bill service: procedure
// names, the handler constructor and a typed client.
//
// Messages are plain Go structs carried by Codec (JSON), so the service can be
// called from browsers, curl, or the client in this package:
//
//	curl -H 'Content-Type: application/json' \
//	  -d '{"bill_id":"..."}' http://localhost:8080/sharely.v1.BillService/GetBill
package billrpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BillServiceName is the fully-qualified name of the BillService.
const BillServiceName = "sharely.v1.BillService"

// Procedure paths for every BillService RPC.
const (
	BillServiceCalculateProcedure         = "/sharely.v1.BillService/Calculate"
	BillServiceCreateBillProcedure        = "/sharely.v1.BillService/CreateBill"
	BillServiceGetBillProcedure           = "/sharely.v1.BillService/GetBill"
	BillServiceListBillsProcedure         = "/sharely.v1.BillService/ListBills"
	BillServiceAddPersonProcedure         = "/sharely.v1.BillService/AddPerson"
	BillServiceRemovePersonProcedure      = "/sharely.v1.BillService/RemovePerson"
	BillServiceAddItemProcedure           = "/sharely.v1.BillService/AddItem"
	BillServiceRemoveItemProcedure        = "/sharely.v1.BillService/RemoveItem"
	BillServiceToggleParticipantProcedure = "/sharely.v1.BillService/ToggleParticipant"
	BillServiceSetChargesProcedure        = "/sharely.v1.BillService/SetCharges"
	BillServiceResetBillProcedure         = "/sharely.v1.BillService/ResetBill"
	BillServiceDeleteBillProcedure        = "/sharely.v1.BillService/DeleteBill"
	BillServiceExportBillProcedure        = "/sharely.v1.BillService/ExportBill"
	BillServiceImportBillProcedure        = "/sharely.v1.BillService/ImportBill"
)

// BillServiceHandler is implemented by the server.
type BillServiceHandler interface {
	Calculate(context.Context, *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error)
	CreateBill(context.Context, *connect.Request[CreateBillRequest]) (*connect.Response[BillResponse], error)
	GetBill(context.Context, *connect.Request[GetBillRequest]) (*connect.Response[BillResponse], error)
	ListBills(context.Context, *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error)
	AddPerson(context.Context, *connect.Request[AddPersonRequest]) (*connect.Response[BillResponse], error)
	RemovePerson(context.Context, *connect.Request[RemovePersonRequest]) (*connect.Response[BillResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[BillResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[BillResponse], error)
	ToggleParticipant(context.Context, *connect.Request[ToggleParticipantRequest]) (*connect.Response[BillResponse], error)
	SetCharges(context.Context, *connect.Request[SetChargesRequest]) (*connect.Response[BillResponse], error)
	ResetBill(context.Context, *connect.Request[ResetBillRequest]) (*connect.Response[BillResponse], error)
	DeleteBill(context.Context, *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error)
	ExportBill(context.Context, *connect.Request[ExportBillRequest]) (*connect.Response[ExportBillResponse], error)
	ImportBill(context.Context, *connect.Request[ImportBillRequest]) (*connect.Response[BillResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(BillServiceCalculateProcedure, connect.NewUnaryHandler(BillServiceCalculateProcedure, svc.Calculate, opts...))
	mux.Handle(BillServiceCreateBillProcedure, connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...))
	mux.Handle(BillServiceGetBillProcedure, connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...))
	mux.Handle(BillServiceListBillsProcedure, connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...))
	mux.Handle(BillServiceAddPersonProcedure, connect.NewUnaryHandler(BillServiceAddPersonProcedure, svc.AddPerson, opts...))
	mux.Handle(BillServiceRemovePersonProcedure, connect.NewUnaryHandler(BillServiceRemovePersonProcedure, svc.RemovePerson, opts...))
	mux.Handle(BillServiceAddItemProcedure, connect.NewUnaryHandler(BillServiceAddItemProcedure, svc.AddItem, opts...))
	mux.Handle(BillServiceRemoveItemProcedure, connect.NewUnaryHandler(BillServiceRemoveItemProcedure, svc.RemoveItem, opts...))
	mux.Handle(BillServiceToggleParticipantProcedure, connect.NewUnaryHandler(BillServiceToggleParticipantProcedure, svc.ToggleParticipant, opts...))
	mux.Handle(BillServiceSetChargesProcedure, connect.NewUnaryHandler(BillServiceSetChargesProcedure, svc.SetCharges, opts...))
	mux.Handle(BillServiceResetBillProcedure, connect.NewUnaryHandler(BillServiceResetBillProcedure, svc.ResetBill, opts...))
	mux.Handle(BillServiceDeleteBillProcedure, connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...))
	mux.Handle(BillServiceExportBillProcedure, connect.NewUnaryHandler(BillServiceExportBillProcedure, svc.ExportBill, opts...))
	mux.Handle(BillServiceImportBillProcedure, connect.NewUnaryHandler(BillServiceImportBillProcedure, svc.ImportBill, opts...))

	return "/" + BillServiceName + "/", mux
}

// BillServiceClient is a typed client for the BillService.
type BillServiceClient struct {
	calculate         *connect.Client[CalculateRequest, CalculateResponse]
	createBill        *connect.Client[CreateBillRequest, BillResponse]
	getBill           *connect.Client[GetBillRequest, BillResponse]
	listBills         *connect.Client[ListBillsRequest, ListBillsResponse]
	addPerson         *connect.Client[AddPersonRequest, BillResponse]
	removePerson      *connect.Client[RemovePersonRequest, BillResponse]
	addItem           *connect.Client[AddItemRequest, BillResponse]
	removeItem        *connect.Client[RemoveItemRequest, BillResponse]
	toggleParticipant *connect.Client[ToggleParticipantRequest, BillResponse]
	setCharges        *connect.Client[SetChargesRequest, BillResponse]
	resetBill         *connect.Client[ResetBillRequest, BillResponse]
	deleteBill        *connect.Client[DeleteBillRequest, DeleteBillResponse]
	exportBill        *connect.Client[ExportBillRequest, ExportBillResponse]
	importBill        *connect.Client[ImportBillRequest, BillResponse]
}

// NewBillServiceClient constructs a client for the BillService at baseURL
// (e.g. http://localhost:8080).
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)

	return &BillServiceClient{
		calculate:         connect.NewClient[CalculateRequest, CalculateResponse](httpClient, baseURL+BillServiceCalculateProcedure, opts...),
		createBill:        connect.NewClient[CreateBillRequest, BillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		getBill:           connect.NewClient[GetBillRequest, BillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		listBills:         connect.NewClient[ListBillsRequest, ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		addPerson:         connect.NewClient[AddPersonRequest, BillResponse](httpClient, baseURL+BillServiceAddPersonProcedure, opts...),
		removePerson:      connect.NewClient[RemovePersonRequest, BillResponse](httpClient, baseURL+BillServiceRemovePersonProcedure, opts...),
		addItem:           connect.NewClient[AddItemRequest, BillResponse](httpClient, baseURL+BillServiceAddItemProcedure, opts...),
		removeItem:        connect.NewClient[RemoveItemRequest, BillResponse](httpClient, baseURL+BillServiceRemoveItemProcedure, opts...),
		toggleParticipant: connect.NewClient[ToggleParticipantRequest, BillResponse](httpClient, baseURL+BillServiceToggleParticipantProcedure, opts...),
		setCharges:        connect.NewClient[SetChargesRequest, BillResponse](httpClient, baseURL+BillServiceSetChargesProcedure, opts...),
		resetBill:         connect.NewClient[ResetBillRequest, BillResponse](httpClient, baseURL+BillServiceResetBillProcedure, opts...),
		deleteBill:        connect.NewClient[DeleteBillRequest, DeleteBillResponse](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
		exportBill:        connect.NewClient[ExportBillRequest, ExportBillResponse](httpClient, baseURL+BillServiceExportBillProcedure, opts...),
		importBill:        connect.NewClient[ImportBillRequest, BillResponse](httpClient, baseURL+BillServiceImportBillProcedure, opts...),
	}
}

func (c *BillServiceClient) Calculate(ctx context.Context, req *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error) {
	return c.calculate.CallUnary(ctx, req)
}

func (c *BillServiceClient) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[BillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[BillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) AddPerson(ctx context.Context, req *connect.Request[AddPersonRequest]) (*connect.Response[BillResponse], error) {
	return c.addPerson.CallUnary(ctx, req)
}

func (c *BillServiceClient) RemovePerson(ctx context.Context, req *connect.Request[RemovePersonRequest]) (*connect.Response[BillResponse], error) {
	return c.removePerson.CallUnary(ctx, req)
}

func (c *BillServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[BillResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *BillServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[BillResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *BillServiceClient) ToggleParticipant(ctx context.Context, req *connect.Request[ToggleParticipantRequest]) (*connect.Response[BillResponse], error) {
	return c.toggleParticipant.CallUnary(ctx, req)
}

func (c *BillServiceClient) SetCharges(ctx context.Context, req *connect.Request[SetChargesRequest]) (*connect.Response[BillResponse], error) {
	return c.setCharges.CallUnary(ctx, req)
}

func (c *BillServiceClient) ResetBill(ctx context.Context, req *connect.Request[ResetBillRequest]) (*connect.Response[BillResponse], error) {
	return c.resetBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) DeleteBill(ctx context.Context, req *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ExportBill(ctx context.Context, req *connect.Request[ExportBillRequest]) (*connect.Response[ExportBillResponse], error) {
	return c.exportBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ImportBill(ctx context.Context, req *connect.Request[ImportBillRequest]) (*connect.Response[BillResponse], error) {
	return c.importBill.CallUnary(ctx, req)
}
