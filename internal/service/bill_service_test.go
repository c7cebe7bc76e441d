package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/sharely/internal/auth"
	"github.com/mmynk/sharely/internal/calculator"
	"github.com/mmynk/sharely/internal/metrics"
	"github.com/mmynk/sharely/internal/middleware"
	"github.com/mmynk/sharely/internal/storage/sqlite"
	"github.com/mmynk/sharely/pkg/billrpc"
)

type testEnv struct {
	client  *billrpc.BillServiceClient
	metrics *metrics.Metrics
}

// setupTestServer starts the service behind the production interceptors,
// backed by a SQLite file in a temp dir.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	m := metrics.New(prometheus.NewRegistry())

	svc := NewBillService(store, tokens, m)
	path, handler := billrpc.NewBillServiceHandler(svc, connect.WithInterceptors(
		middleware.BillToken(tokens),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		client:  billrpc.NewBillServiceClient(http.DefaultClient, server.URL),
		metrics: m,
	}
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

// createBill creates a bill and returns its id and edit token.
func (e *testEnv) createBill(t *testing.T, title string) (string, string) {
	t.Helper()
	resp, err := e.client.CreateBill(context.Background(), connect.NewRequest(&billrpc.CreateBillRequest{Title: title}))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Msg.EditToken)
	return resp.Msg.Bill.ID, resp.Msg.EditToken
}

func (e *testEnv) addPerson(t *testing.T, billID, token, name string) string {
	t.Helper()
	resp, err := e.client.AddPerson(context.Background(), withToken(&billrpc.AddPersonRequest{BillID: billID, Name: name}, token))
	require.NoError(t, err)
	people := resp.Msg.Bill.People
	return people[len(people)-1].ID
}

func (e *testEnv) addItem(t *testing.T, billID, token, name, price string, participants ...string) *billrpc.BillResponse {
	t.Helper()
	resp, err := e.client.AddItem(context.Background(), withToken(&billrpc.AddItemRequest{
		BillID:         billID,
		Name:           name,
		Price:          price,
		ParticipantIDs: participants,
	}, token))
	require.NoError(t, err)
	return resp.Msg
}

func totals(res billrpc.Result) []int64 {
	out := make([]int64, len(res.People))
	for i, p := range res.People {
		out[i] = p.TotalCents
	}
	return out
}

func TestCalculate(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.client.Calculate(context.Background(), connect.NewRequest(&billrpc.CalculateRequest{
		People: []billrpc.Person{{ID: "a", Name: "Ann"}, {ID: "b", Name: "Ben"}, {ID: "c", Name: "Cat"}},
		Items: []billrpc.Item{
			{Name: "Pizza", PriceCents: 1200, ParticipantIDs: []string{"a", "b", "c"}},
		},
		Service: billrpc.Charge{Kind: "percent", Value: 10},
	}))
	require.NoError(t, err)

	res := resp.Msg.Result
	assert.Equal(t, int64(1200), res.ItemsTotalCents)
	assert.Equal(t, int64(120), res.ServiceChargeCents)
	assert.Equal(t, int64(1320), res.GrandTotalCents)
	assert.Equal(t, []int64{440, 440, 440}, totals(res))
	assert.Equal(t, "Ann", res.People[0].Name)
}

func TestCalculate_PeopleWithoutIDs(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.client.Calculate(context.Background(), connect.NewRequest(&billrpc.CalculateRequest{
		People: []billrpc.Person{{Name: "Ann"}, {Name: "Ben"}},
		Items: []billrpc.Item{
			{Name: "Wine", PriceCents: 999, ParticipantIDs: []string{"Ann", "Ben"}},
		},
	}))
	require.NoError(t, err)

	// Each sharer is rounded on its own, so the shares can exceed the price.
	assert.Equal(t, []int64{500, 500}, totals(resp.Msg.Result))
	assert.Equal(t, int64(1000), resp.Msg.Result.GrandTotalCents)
}

func TestCalculate_InvalidRequests(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name string
		req  *billrpc.CalculateRequest
	}{
		{
			name: "same name without ids",
			req: &billrpc.CalculateRequest{
				People: []billrpc.Person{{Name: "Sam"}, {Name: "Sam"}},
				Items:  []billrpc.Item{{Name: "Tea", PriceCents: 400, ParticipantIDs: []string{"Sam"}}},
			},
		},
		{
			name: "repeated id",
			req: &billrpc.CalculateRequest{
				People: []billrpc.Person{{ID: "a", Name: "Ann"}, {ID: "a", Name: "Ben"}},
			},
		},
		{
			name: "person with neither id nor name",
			req: &billrpc.CalculateRequest{
				People: []billrpc.Person{{}},
			},
		},
		{
			name: "price above the cap",
			req: &billrpc.CalculateRequest{
				People: []billrpc.Person{{ID: "a", Name: "Ann"}},
				Items: []billrpc.Item{
					{Name: "Yacht", PriceCents: 1<<62 + 1<<61, ParticipantIDs: []string{"a"}},
					{Name: "Island", PriceCents: 1<<62 + 1<<61, ParticipantIDs: []string{"a"}},
				},
				Discount: billrpc.Charge{Kind: "percent", Value: 10},
				VAT:      billrpc.Charge{Kind: "percent", Value: 8},
			},
		},
		{
			name: "negative price",
			req: &billrpc.CalculateRequest{
				People: []billrpc.Person{{ID: "a", Name: "Ann"}},
				Items:  []billrpc.Item{{Name: "Refund", PriceCents: -100, ParticipantIDs: []string{"a"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.client.Calculate(context.Background(), connect.NewRequest(tt.req))
			require.Error(t, err)
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		})
	}
}

func TestCalculate_LargestAllowedPrice(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.client.Calculate(context.Background(), connect.NewRequest(&billrpc.CalculateRequest{
		People: []billrpc.Person{{ID: "a", Name: "Ann"}},
		Items: []billrpc.Item{
			{Name: "Yacht", PriceCents: calculator.MaxPriceCents, ParticipantIDs: []string{"a"}},
			{Name: "Island", PriceCents: calculator.MaxPriceCents, ParticipantIDs: []string{"a"}},
		},
		Discount: billrpc.Charge{Kind: "percent", Value: 10},
		VAT:      billrpc.Charge{Kind: "percent", Value: 8},
	}))
	require.NoError(t, err)

	res := resp.Msg.Result
	assert.Equal(t, int64(2*calculator.MaxPriceCents), res.ItemsTotalCents)
	assert.Equal(t, res.ItemsTotalCents-res.DiscountCents+res.VATCents, res.GrandTotalCents)
	assert.Equal(t, []int64{res.GrandTotalCents}, totals(res))
}

func TestCreateBill(t *testing.T) {
	env := setupTestServer(t)

	t.Run("with title", func(t *testing.T) {
		resp, err := env.client.CreateBill(context.Background(), connect.NewRequest(&billrpc.CreateBillRequest{Title: "Dinner"}))
		require.NoError(t, err)

		bill := resp.Msg.Bill
		assert.NotEmpty(t, bill.ID)
		assert.Equal(t, "Dinner", bill.Title)
		assert.Equal(t, int64(1), bill.Version)
		assert.Empty(t, bill.People)
		assert.Equal(t, "percent", bill.VAT.Kind)
		assert.NotEmpty(t, resp.Msg.EditToken)
	})

	t.Run("generated title", func(t *testing.T) {
		resp, err := env.client.CreateBill(context.Background(), connect.NewRequest(&billrpc.CreateBillRequest{}))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp.Msg.Bill.Title, "Bill - "), resp.Msg.Bill.Title)
	})
}

func TestBillLifecycle(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	billID, token := env.createBill(t, "Lunch")

	ann := env.addPerson(t, billID, token, "Ann")
	ben := env.addPerson(t, billID, token, "Ben")
	cat := env.addPerson(t, billID, token, "Cat")

	msg := env.addItem(t, billID, token, "Platter", "10.00", ann, ben, cat)
	assert.Equal(t, int64(1000), msg.Result.ItemsTotalCents)
	assert.Equal(t, []int64{333, 333, 333}, totals(msg.Result))
	assert.Equal(t, int64(999), msg.Result.GrandTotalCents)

	resp, err := env.client.SetCharges(ctx, withToken(&billrpc.SetChargesRequest{
		BillID: billID,
		VAT:    billrpc.Charge{Kind: "percent", Value: 10},
	}, token))
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.Msg.Result.VATCents)
	assert.Equal(t, []int64{367, 366, 366}, totals(resp.Msg.Result))
	assert.Equal(t, int64(1099), resp.Msg.Result.GrandTotalCents)

	itemID := resp.Msg.Bill.Items[0].ID
	resp, err = env.client.ToggleParticipant(ctx, withToken(&billrpc.ToggleParticipantRequest{
		BillID:   billID,
		ItemID:   itemID,
		PersonID: cat,
	}, token))
	require.NoError(t, err)
	assert.Equal(t, []string{ann, ben}, resp.Msg.Bill.Items[0].ParticipantIDs)
	assert.Equal(t, []int64{550, 550, 0}, totals(resp.Msg.Result))

	resp, err = env.client.RemovePerson(ctx, withToken(&billrpc.RemovePersonRequest{BillID: billID, PersonID: ben}, token))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Bill.People, 2)
	assert.Equal(t, []string{ann}, resp.Msg.Bill.Items[0].ParticipantIDs)
	assert.Equal(t, []int64{1100, 0}, totals(resp.Msg.Result))

	resp, err = env.client.RemoveItem(ctx, withToken(&billrpc.RemoveItemRequest{BillID: billID, ItemID: itemID}, token))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Bill.Items)
	assert.Equal(t, int64(0), resp.Msg.Result.GrandTotalCents)

	got, err := env.client.GetBill(ctx, connect.NewRequest(&billrpc.GetBillRequest{BillID: billID}))
	require.NoError(t, err)
	assert.Equal(t, resp.Msg.Bill.Version, got.Msg.Bill.Version)
	assert.Equal(t, float64(10), got.Msg.Bill.VAT.Value)

	resp, err = env.client.ResetBill(ctx, withToken(&billrpc.ResetBillRequest{BillID: billID}, token))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Bill.People)
	assert.Equal(t, float64(10), resp.Msg.Bill.VAT.Value, "charges survive a reset")

	_, err = env.client.DeleteBill(ctx, withToken(&billrpc.DeleteBillRequest{BillID: billID}, token))
	require.NoError(t, err)

	_, err = env.client.GetBill(ctx, connect.NewRequest(&billrpc.GetBillRequest{BillID: billID}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestMutationAuthorization(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	billID, _ := env.createBill(t, "Mine")
	_, otherToken := env.createBill(t, "Theirs")

	tests := []struct {
		name  string
		token string
		want  connect.Code
	}{
		{"no token", "", connect.CodeUnauthenticated},
		{"garbage token", "not-a-jwt", connect.CodeUnauthenticated},
		{"token for another bill", otherToken, connect.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.client.AddPerson(ctx, withToken(&billrpc.AddPersonRequest{BillID: billID, Name: "Eve"}, tt.token))
			assert.Equal(t, tt.want, connect.CodeOf(err))

			_, err = env.client.DeleteBill(ctx, withToken(&billrpc.DeleteBillRequest{BillID: billID}, tt.token))
			assert.Equal(t, tt.want, connect.CodeOf(err))
		})
	}

	// Reads stay public and nothing was changed.
	resp, err := env.client.GetBill(ctx, connect.NewRequest(&billrpc.GetBillRequest{BillID: billID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Bill.People)
	assert.Equal(t, int64(1), resp.Msg.Bill.Version)
}

func TestErrorCodes(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	billID, token := env.createBill(t, "Errors")
	ann := env.addPerson(t, billID, token, "Ann")

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "empty person name",
			call: func() error {
				_, err := env.client.AddPerson(ctx, withToken(&billrpc.AddPersonRequest{BillID: billID, Name: "  "}, token))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "duplicate person",
			call: func() error {
				_, err := env.client.AddPerson(ctx, withToken(&billrpc.AddPersonRequest{BillID: billID, Name: "ann"}, token))
				return err
			},
			want: connect.CodeAlreadyExists,
		},
		{
			name: "zero price",
			call: func() error {
				_, err := env.client.AddItem(ctx, withToken(&billrpc.AddItemRequest{BillID: billID, Name: "Water", Price: "0"}, token))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "price above the cap",
			call: func() error {
				_, err := env.client.AddItem(ctx, withToken(&billrpc.AddItemRequest{BillID: billID, Name: "Yacht", Price: "100000000000000"}, token))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown participant",
			call: func() error {
				_, err := env.client.AddItem(ctx, withToken(&billrpc.AddItemRequest{
					BillID: billID, Name: "Soup", Price: "4.50", ParticipantIDs: []string{ann, "ghost"},
				}, token))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "unknown item",
			call: func() error {
				_, err := env.client.RemoveItem(ctx, withToken(&billrpc.RemoveItemRequest{BillID: billID, ItemID: "missing"}, token))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "missing bill id",
			call: func() error {
				_, err := env.client.GetBill(ctx, connect.NewRequest(&billrpc.GetBillRequest{}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown bill",
			call: func() error {
				_, err := env.client.ExportBill(ctx, connect.NewRequest(&billrpc.ExportBillRequest{BillID: "missing"}))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "import without arrays",
			call: func() error {
				_, err := env.client.ImportBill(ctx, connect.NewRequest(&billrpc.ImportBillRequest{Document: json.RawMessage(`{"title":"x"}`)}))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.want, connect.CodeOf(err))
		})
	}
}

func TestListBills(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	billID, token := env.createBill(t, "Drinks")
	ann := env.addPerson(t, billID, token, "Ann")
	env.addItem(t, billID, token, "Beer", "6.00", ann)
	env.createBill(t, "Empty")

	resp, err := env.client.ListBills(ctx, connect.NewRequest(&billrpc.ListBillsRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Bills, 2)

	byTitle := make(map[string]billrpc.BillSummary)
	for _, b := range resp.Msg.Bills {
		byTitle[b.Title] = b
	}
	assert.Equal(t, billID, byTitle["Drinks"].BillID)
	assert.Equal(t, 1, byTitle["Drinks"].PeopleCount)
	assert.Equal(t, 1, byTitle["Drinks"].ItemCount)
	assert.Equal(t, int64(600), byTitle["Drinks"].GrandTotalCents)
	assert.Equal(t, int64(0), byTitle["Empty"].GrandTotalCents)
}

func TestExportImport(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	billID, token := env.createBill(t, "Trip")
	ann := env.addPerson(t, billID, token, "Ann")
	ben := env.addPerson(t, billID, token, "Ben")
	env.addItem(t, billID, token, "Taxi", "25.00", ann, ben)
	_, err := env.client.SetCharges(ctx, withToken(&billrpc.SetChargesRequest{
		BillID:   billID,
		Discount: billrpc.Charge{Kind: "amount", Value: 500},
	}, token))
	require.NoError(t, err)

	exported, err := env.client.ExportBill(ctx, connect.NewRequest(&billrpc.ExportBillRequest{BillID: billID}))
	require.NoError(t, err)
	assert.Contains(t, string(exported.Msg.Document), `"priceCents"`)

	imported, err := env.client.ImportBill(ctx, connect.NewRequest(&billrpc.ImportBillRequest{Document: exported.Msg.Document}))
	require.NoError(t, err)

	msg := imported.Msg
	assert.NotEqual(t, billID, msg.Bill.ID)
	assert.NotEmpty(t, msg.EditToken)
	assert.Equal(t, "Trip", msg.Bill.Title)
	assert.Equal(t, "amount", msg.Bill.Discount.Kind)
	assert.Equal(t, int64(500), msg.Result.DiscountCents)
	assert.Equal(t, []int64{1000, 1000}, totals(msg.Result))

	// The new token edits the copy only.
	_, err = env.client.AddPerson(ctx, withToken(&billrpc.AddPersonRequest{BillID: msg.Bill.ID, Name: "Cat"}, msg.EditToken))
	require.NoError(t, err)
	_, err = env.client.AddPerson(ctx, withToken(&billrpc.AddPersonRequest{BillID: billID, Name: "Cat"}, msg.EditToken))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestMetricsRecorded(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	billID, _ := env.createBill(t, "Metrics")
	_, err := env.client.GetBill(ctx, connect.NewRequest(&billrpc.GetBillRequest{BillID: billID}))
	require.NoError(t, err)
	_, err = env.client.AddPerson(ctx, connect.NewRequest(&billrpc.AddPersonRequest{BillID: billID, Name: "Ann"}))
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.RPCs.WithLabelValues(billrpc.BillServiceGetBillProcedure, "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.RPCs.WithLabelValues(billrpc.BillServiceAddPersonProcedure, "unauthenticated")))
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.Computations.WithLabelValues("stored")))
}
