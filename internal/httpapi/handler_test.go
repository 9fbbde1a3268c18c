package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"barberq/queue-service/internal/models"
	"barberq/queue-service/internal/store"
)

type fakeStore struct {
	createBarberFn func(ctx context.Context, name string) (models.Barber, error)
	getBarberFn    func(ctx context.Context, barberID string) (models.Barber, error)
	listBarbersFn  func(ctx context.Context) ([]models.Barber, error)
	setActiveFn    func(ctx context.Context, barberID string, active bool) (models.Barber, error)
	deleteBarberFn func(ctx context.Context, barberID string) error
	enqueueFn      func(ctx context.Context, input store.EnqueueInput) (models.Customer, error)
	getCustomerFn  func(ctx context.Context, customerID string) (models.Customer, error)
	getByTicketFn  func(ctx context.Context, ticketNo int) (models.Customer, error)
	callNextFn     func(ctx context.Context, barberID string, calledAt time.Time) (models.Customer, bool, error)
	completeFn     func(ctx context.Context, customerID string, endedAt time.Time) (models.Customer, models.ServiceRecord, error)
	cancelFn       func(ctx context.Context, customerID string) (models.Customer, error)
	listQueueFn    func(ctx context.Context, barberID string) (store.BarberQueue, error)
	fullQueueFn    func(ctx context.Context) ([]store.BarberQueue, error)
	listRecordsFn  func(ctx context.Context, filter store.RecordFilter) ([]models.ServiceRecord, int, error)
	getRecordFn    func(ctx context.Context, recordID string) (models.ServiceRecord, error)
	statisticsFn   func(ctx context.Context, barberID string, from, to time.Time) (store.Statistics, error)
	dailyFn        func(ctx context.Context, from, to time.Time) (store.DailySummary, error)
	countsFn       func(ctx context.Context) (store.SystemCounts, error)
}

func (f fakeStore) CreateBarber(ctx context.Context, name string) (models.Barber, error) {
	if f.createBarberFn == nil {
		return models.Barber{}, nil
	}
	return f.createBarberFn(ctx, name)
}

func (f fakeStore) GetBarber(ctx context.Context, barberID string) (models.Barber, error) {
	if f.getBarberFn == nil {
		return models.Barber{}, nil
	}
	return f.getBarberFn(ctx, barberID)
}

func (f fakeStore) ListBarbers(ctx context.Context) ([]models.Barber, error) {
	if f.listBarbersFn == nil {
		return nil, nil
	}
	return f.listBarbersFn(ctx)
}

func (f fakeStore) SetBarberActive(ctx context.Context, barberID string, active bool) (models.Barber, error) {
	if f.setActiveFn == nil {
		return models.Barber{}, nil
	}
	return f.setActiveFn(ctx, barberID, active)
}

func (f fakeStore) DeleteBarber(ctx context.Context, barberID string) error {
	if f.deleteBarberFn == nil {
		return nil
	}
	return f.deleteBarberFn(ctx, barberID)
}

func (f fakeStore) EnqueueCustomer(ctx context.Context, input store.EnqueueInput) (models.Customer, error) {
	if f.enqueueFn == nil {
		return models.Customer{}, nil
	}
	return f.enqueueFn(ctx, input)
}

func (f fakeStore) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	if f.getCustomerFn == nil {
		return models.Customer{}, nil
	}
	return f.getCustomerFn(ctx, customerID)
}

func (f fakeStore) GetCustomerByTicket(ctx context.Context, ticketNo int) (models.Customer, error) {
	if f.getByTicketFn == nil {
		return models.Customer{}, nil
	}
	return f.getByTicketFn(ctx, ticketNo)
}

func (f fakeStore) CallNext(ctx context.Context, barberID string, calledAt time.Time) (models.Customer, bool, error) {
	if f.callNextFn == nil {
		return models.Customer{}, false, nil
	}
	return f.callNextFn(ctx, barberID, calledAt)
}

func (f fakeStore) CompleteCustomer(ctx context.Context, customerID string, endedAt time.Time) (models.Customer, models.ServiceRecord, error) {
	if f.completeFn == nil {
		return models.Customer{}, models.ServiceRecord{}, nil
	}
	return f.completeFn(ctx, customerID, endedAt)
}

func (f fakeStore) CancelCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	if f.cancelFn == nil {
		return models.Customer{}, nil
	}
	return f.cancelFn(ctx, customerID)
}

func (f fakeStore) ListQueue(ctx context.Context, barberID string) (store.BarberQueue, error) {
	if f.listQueueFn == nil {
		return store.BarberQueue{}, nil
	}
	return f.listQueueFn(ctx, barberID)
}

func (f fakeStore) ListFullQueue(ctx context.Context) ([]store.BarberQueue, error) {
	if f.fullQueueFn == nil {
		return nil, nil
	}
	return f.fullQueueFn(ctx)
}

func (f fakeStore) ListServiceRecords(ctx context.Context, filter store.RecordFilter) ([]models.ServiceRecord, int, error) {
	if f.listRecordsFn == nil {
		return nil, 0, nil
	}
	return f.listRecordsFn(ctx, filter)
}

func (f fakeStore) GetServiceRecord(ctx context.Context, recordID string) (models.ServiceRecord, error) {
	if f.getRecordFn == nil {
		return models.ServiceRecord{}, nil
	}
	return f.getRecordFn(ctx, recordID)
}

func (f fakeStore) GetStatistics(ctx context.Context, barberID string, from, to time.Time) (store.Statistics, error) {
	if f.statisticsFn == nil {
		return store.Statistics{}, nil
	}
	return f.statisticsFn(ctx, barberID, from, to)
}

func (f fakeStore) GetDailySummary(ctx context.Context, from, to time.Time) (store.DailySummary, error) {
	if f.dailyFn == nil {
		return store.DailySummary{}, nil
	}
	return f.dailyFn(ctx, from, to)
}

func (f fakeStore) SystemCounts(ctx context.Context) (store.SystemCounts, error) {
	if f.countsFn == nil {
		return store.SystemCounts{}, nil
	}
	return f.countsFn(ctx)
}

const (
	testBarberID   = "11111111-1111-1111-1111-111111111111"
	testCustomerID = "22222222-2222-2222-2222-222222222222"
	testRecordID   = "33333333-3333-3333-3333-333333333333"
)

func TestCreateBarberSuccess(t *testing.T) {
	st := fakeStore{
		createBarberFn: func(ctx context.Context, name string) (models.Barber, error) {
			return models.Barber{BarberID: testBarberID, Name: name, Active: true}, nil
		},
	}
	h := NewHandler(st)

	body, _ := json.Marshal(map[string]string{"name": "Carlos"})
	req := httptest.NewRequest(http.MethodPost, "/api/barbers", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var barber models.Barber
	if err := json.NewDecoder(resp.Body).Decode(&barber); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if barber.BarberID == "" || barber.Name != "Carlos" || !barber.Active {
		t.Fatalf("unexpected barber response: %+v", barber)
	}
}

func TestCreateBarberShortName(t *testing.T) {
	h := NewHandler(fakeStore{})

	body, _ := json.Marshal(map[string]string{"name": " C "})
	req := httptest.NewRequest(http.MethodPost, "/api/barbers", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestCreateBarberNameTaken(t *testing.T) {
	st := fakeStore{
		createBarberFn: func(ctx context.Context, name string) (models.Barber, error) {
			return models.Barber{}, store.ErrBarberNameTaken
		},
	}
	h := NewHandler(st)

	body, _ := json.Marshal(map[string]string{"name": "Carlos"})
	req := httptest.NewRequest(http.MethodPost, "/api/barbers", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestEnqueueCustomerSuccess(t *testing.T) {
	position := 1
	st := fakeStore{
		enqueueFn: func(ctx context.Context, input store.EnqueueInput) (models.Customer, error) {
			return models.Customer{
				CustomerID:    testCustomerID,
				Name:          input.Name,
				TicketNo:      input.TicketNo,
				BarberID:      input.BarberID,
				Status:        models.StatusWaiting,
				QueuePosition: &position,
				EnteredAt:     input.EnteredAt,
			}, nil
		},
	}
	h := NewHandler(st)

	body, _ := json.Marshal(map[string]interface{}{
		"name":      "Ana",
		"ticket_no": 7,
		"barber_id": testBarberID,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	var customer models.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if customer.Status != models.StatusWaiting || customer.QueuePosition == nil || *customer.QueuePosition != 1 {
		t.Fatalf("unexpected customer response: %+v", customer)
	}
}

func TestEnqueueCustomerValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"short name", map[string]interface{}{"name": "A", "ticket_no": 1, "barber_id": testBarberID}},
		{"zero ticket", map[string]interface{}{"name": "Ana", "ticket_no": 0, "barber_id": testBarberID}},
		{"negative ticket", map[string]interface{}{"name": "Ana", "ticket_no": -3, "barber_id": testBarberID}},
		{"bad barber id", map[string]interface{}{"name": "Ana", "ticket_no": 1, "barber_id": "not-a-uuid"}},
	}

	h := NewHandler(fakeStore{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
			resp := httptest.NewRecorder()

			h.Routes().ServeHTTP(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", resp.Code)
			}
		})
	}
}

func TestEnqueueCustomerTicketConflict(t *testing.T) {
	st := fakeStore{
		enqueueFn: func(ctx context.Context, input store.EnqueueInput) (models.Customer, error) {
			return models.Customer{}, store.ErrTicketInUse
		},
	}
	h := NewHandler(st)

	body, _ := json.Marshal(map[string]interface{}{
		"name":      "Ana",
		"ticket_no": 7,
		"barber_id": testBarberID,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/customers", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "ticket_in_use" {
		t.Fatalf("expected ticket_in_use, got %s", payload.Error.Code)
	}
}

func TestCallNextSuccess(t *testing.T) {
	st := fakeStore{
		callNextFn: func(ctx context.Context, barberID string, calledAt time.Time) (models.Customer, bool, error) {
			return models.Customer{
				CustomerID: testCustomerID,
				BarberID:   barberID,
				Status:     models.StatusServing,
				CalledAt:   &calledAt,
			}, true, nil
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodPost, "/api/barbers/"+testBarberID+"/next", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var customer models.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if customer.Status != models.StatusServing || customer.CalledAt == nil {
		t.Fatalf("unexpected customer response: %+v", customer)
	}
}

func TestCallNextEmptyQueue(t *testing.T) {
	h := NewHandler(fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/barbers/"+testBarberID+"/next", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", resp.Code)
	}
}

func TestCompleteCustomerReturnsRecord(t *testing.T) {
	wait := 10
	service := 20
	st := fakeStore{
		completeFn: func(ctx context.Context, customerID string, endedAt time.Time) (models.Customer, models.ServiceRecord, error) {
			return models.Customer{CustomerID: customerID, Status: models.StatusCompleted},
				models.ServiceRecord{
					RecordID:       testRecordID,
					CustomerID:     customerID,
					WaitMinutes:    &wait,
					ServiceMinutes: &service,
					EndedAt:        &endedAt,
				}, nil
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodPost, "/api/customers/"+testCustomerID+"/complete", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var payload struct {
		Customer models.Customer `json:"customer"`
		Record   struct {
			RecordID     string `json:"record_id"`
			TotalMinutes int    `json:"total_minutes"`
		} `json:"record"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Customer.Status != models.StatusCompleted {
		t.Fatalf("expected completed customer, got %+v", payload.Customer)
	}
	if payload.Record.RecordID != testRecordID || payload.Record.TotalMinutes != 30 {
		t.Fatalf("unexpected record response: %+v", payload.Record)
	}
}

func TestCompleteCustomerInvalidState(t *testing.T) {
	st := fakeStore{
		completeFn: func(ctx context.Context, customerID string, endedAt time.Time) (models.Customer, models.ServiceRecord, error) {
			return models.Customer{}, models.ServiceRecord{}, store.ErrInvalidState
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodPost, "/api/customers/"+testCustomerID+"/complete", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestCancelCustomerSuccess(t *testing.T) {
	st := fakeStore{
		cancelFn: func(ctx context.Context, customerID string) (models.Customer, error) {
			return models.Customer{CustomerID: customerID, Status: models.StatusCancelled}, nil
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodPost, "/api/customers/"+testCustomerID+"/cancel", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestDeleteBarberConflict(t *testing.T) {
	st := fakeStore{
		deleteBarberFn: func(ctx context.Context, barberID string) error {
			return store.ErrBarberHasCustomers
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodDelete, "/api/barbers/"+testBarberID, nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestTicketLookupSuccess(t *testing.T) {
	st := fakeStore{
		getByTicketFn: func(ctx context.Context, ticketNo int) (models.Customer, error) {
			return models.Customer{CustomerID: testCustomerID, TicketNo: ticketNo, Status: models.StatusWaiting}, nil
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/42", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var customer models.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if customer.TicketNo != 42 {
		t.Fatalf("expected ticket 42, got %d", customer.TicketNo)
	}
}

func TestTicketLookupInvalidNumber(t *testing.T) {
	h := NewHandler(fakeStore{})

	for _, raw := range []string{"0", "-1", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/tickets/"+raw, nil)
		resp := httptest.NewRecorder()

		h.Routes().ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("ticket %q: expected status 400, got %d", raw, resp.Code)
		}
	}
}

func TestStatisticsPeriods(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		period  string
		minBack time.Duration
		maxBack time.Duration
	}{
		{"today", 0, 24 * time.Hour},
		{"week", 7 * 24 * time.Hour, 7*24*time.Hour + time.Minute},
		{"month", 30 * 24 * time.Hour, 30*24*time.Hour + time.Minute},
		{"year", 365 * 24 * time.Hour, 365*24*time.Hour + time.Minute},
	}

	for _, tc := range cases {
		t.Run(tc.period, func(t *testing.T) {
			var gotFrom time.Time
			st := fakeStore{
				statisticsFn: func(ctx context.Context, barberID string, from, to time.Time) (store.Statistics, error) {
					gotFrom = from
					return store.Statistics{TotalServices: 3}, nil
				},
			}
			h := NewHandler(st)

			req := httptest.NewRequest(http.MethodGet, "/api/reports/statistics?period="+tc.period, nil)
			resp := httptest.NewRecorder()

			h.Routes().ServeHTTP(resp, req)

			if resp.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", resp.Code)
			}
			back := now.Sub(gotFrom)
			if back < tc.minBack || back > tc.maxBack {
				t.Fatalf("period %s: window start %v back, want between %v and %v", tc.period, back, tc.minBack, tc.maxBack)
			}
		})
	}
}

func TestStatisticsInvalidPeriod(t *testing.T) {
	h := NewHandler(fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/statistics?period=decade", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestExportCSV(t *testing.T) {
	entered := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	started := entered.Add(15 * time.Minute)
	ended := started.Add(30 * time.Minute)
	wait := 15
	service := 30
	st := fakeStore{
		listRecordsFn: func(ctx context.Context, filter store.RecordFilter) ([]models.ServiceRecord, int, error) {
			if filter.Limit != 0 {
				t.Fatalf("expected unpaginated export, got limit %d", filter.Limit)
			}
			return []models.ServiceRecord{{
				RecordID:       testRecordID,
				CustomerID:     testCustomerID,
				BarberID:       testBarberID,
				TicketNo:       42,
				CustomerName:   "Ana",
				EnteredAt:      entered,
				StartedAt:      started,
				EndedAt:        &ended,
				WaitMinutes:    &wait,
				ServiceMinutes: &service,
			}}, 1, nil
		},
		listBarbersFn: func(ctx context.Context) ([]models.Barber, error) {
			return []models.Barber{{BarberID: testBarberID, Name: "Carlos", Active: true}}, nil
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/export", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("expected text/csv, got %s", got)
	}
	if got := resp.Header().Get("Content-Disposition"); !strings.Contains(got, "service_records_") {
		t.Fatalf("unexpected content disposition %q", got)
	}

	lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	row := strings.Split(lines[1], ",")
	if row[1] != "42" || row[2] != "Ana" || row[4] != "Carlos" {
		t.Fatalf("unexpected CSV row: %v", row)
	}
	if row[8] != "15" || row[9] != "30" || row[10] != "45" {
		t.Fatalf("unexpected CSV durations: %v", row)
	}
}

func TestDailySummary(t *testing.T) {
	first := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	last := time.Date(2026, 3, 2, 16, 40, 0, 0, time.UTC)
	var gotFrom, gotTo time.Time
	st := fakeStore{
		dailyFn: func(ctx context.Context, from, to time.Time) (store.DailySummary, error) {
			gotFrom = from
			gotTo = to
			return store.DailySummary{
				TotalServices:       4,
				TotalServiceMinutes: 110,
				PerBarber: []store.BarberDailySummary{{
					BarberID:            testBarberID,
					BarberName:          "Carlos",
					TotalServices:       4,
					TotalServiceMinutes: 110,
					FirstStartedAt:      first,
					LastStartedAt:       last,
				}},
			}, nil
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/daily-summary", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotFrom != gotTo.Truncate(24*time.Hour) {
		t.Fatalf("expected window starting at UTC midnight, got from=%v to=%v", gotFrom, gotTo)
	}

	var payload struct {
		Date    string             `json:"date"`
		Summary store.DailySummary `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Date != gotFrom.Format("2006-01-02") {
		t.Fatalf("unexpected date %q", payload.Date)
	}
	if payload.Summary.TotalServices != 4 || payload.Summary.TotalServiceMinutes != 110 {
		t.Fatalf("unexpected summary totals: %+v", payload.Summary)
	}
	if len(payload.Summary.PerBarber) != 1 || !payload.Summary.PerBarber[0].FirstStartedAt.Equal(first) || !payload.Summary.PerBarber[0].LastStartedAt.Equal(last) {
		t.Fatalf("unexpected per-barber summary: %+v", payload.Summary.PerBarber)
	}
}

func TestStatusEndpoint(t *testing.T) {
	st := fakeStore{
		countsFn: func(ctx context.Context) (store.SystemCounts, error) {
			return store.SystemCounts{TotalBarbers: 3, ActiveBarbers: 2, Waiting: 5, Serving: 1}, nil
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var counts store.SystemCounts
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if counts.ActiveBarbers != 2 || counts.Waiting != 5 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestFullQueue(t *testing.T) {
	st := fakeStore{
		fullQueueFn: func(ctx context.Context) ([]store.BarberQueue, error) {
			return []store.BarberQueue{{
				Barber:  models.Barber{BarberID: testBarberID, Name: "Carlos", Active: true},
				Waiting: []models.Customer{{CustomerID: testCustomerID, Status: models.StatusWaiting}},
			}}, nil
		},
	}
	h := NewHandler(st)

	req := httptest.NewRequest(http.MethodGet, "/api/queue", nil)
	resp := httptest.NewRecorder()

	h.Routes().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var queues []store.BarberQueue
	if err := json.NewDecoder(resp.Body).Decode(&queues); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(queues) != 1 || len(queues[0].Waiting) != 1 {
		t.Fatalf("unexpected queues: %+v", queues)
	}
}
