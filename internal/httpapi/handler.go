package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"barberq/queue-service/internal/models"
	"barberq/queue-service/internal/store"

	"github.com/google/uuid"
)

type Handler struct {
	store store.QueueStore
}

type createBarberRequest struct {
	Name string `json:"name"`
}

type enqueueCustomerRequest struct {
	Name     string `json:"name"`
	TicketNo int    `json:"ticket_no"`
	BarberID string `json:"barber_id"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(store store.QueueStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/barbers", h.handleBarbers)
	mux.HandleFunc("/api/barbers/", h.handleBarberSubroutes)
	mux.HandleFunc("/api/customers", h.handleCustomers)
	mux.HandleFunc("/api/customers/", h.handleCustomerSubroutes)
	mux.HandleFunc("/api/tickets/", h.handleTicketLookup)
	mux.HandleFunc("/api/queue", h.handleFullQueue)
	mux.HandleFunc("/api/records", h.handleRecords)
	mux.HandleFunc("/api/records/", h.handleRecordByID)
	mux.HandleFunc("/api/reports/statistics", h.handleStatistics)
	mux.HandleFunc("/api/reports/daily-summary", h.handleDailySummary)
	mux.HandleFunc("/api/reports/export", h.handleExport)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleBarbers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		barbers, err := h.store.ListBarbers(r.Context())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, barbers)
	case http.MethodPost:
		var req createBarberRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if len(req.Name) < 2 {
			writeError(w, http.StatusBadRequest, "invalid_request", "name must be at least 2 characters")
			return
		}

		barber, err := h.store.CreateBarber(r.Context(), req.Name)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, barber)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleBarberSubroutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/barbers/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	barberID := parts[0]
	if !isValidUUID(barberID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "barber_id must be a UUID")
		return
	}

	switch len(parts) {
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGetBarber(w, r, barberID)
		case http.MethodDelete:
			h.handleDeleteBarber(w, r, barberID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 2:
		switch parts[1] {
		case "activate":
			h.handleSetBarberActive(w, r, barberID, true)
		case "deactivate":
			h.handleSetBarberActive(w, r, barberID, false)
		case "queue":
			h.handleBarberQueue(w, r, barberID)
		case "next":
			h.handleCallNext(w, r, barberID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetBarber(w http.ResponseWriter, r *http.Request, barberID string) {
	barber, err := h.store.GetBarber(r.Context(), barberID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, barber)
}

func (h *Handler) handleDeleteBarber(w http.ResponseWriter, r *http.Request, barberID string) {
	if err := h.store.DeleteBarber(r.Context(), barberID); err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetBarberActive(w http.ResponseWriter, r *http.Request, barberID string, active bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	barber, err := h.store.SetBarberActive(r.Context(), barberID, active)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, barber)
}

func (h *Handler) handleBarberQueue(w http.ResponseWriter, r *http.Request, barberID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	queue, err := h.store.ListQueue(r.Context(), barberID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, queue)
}

func (h *Handler) handleCallNext(w http.ResponseWriter, r *http.Request, barberID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	customer, found, err := h.store.CallNext(r.Context(), barberID, time.Now().UTC())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req enqueueCustomerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.BarberID = strings.TrimSpace(req.BarberID)
	if len(req.Name) < 2 {
		writeError(w, http.StatusBadRequest, "invalid_request", "name must be at least 2 characters")
		return
	}
	if req.TicketNo <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "ticket_no must be a positive integer")
		return
	}
	if req.BarberID == "" || !isValidUUID(req.BarberID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "barber_id must be a UUID")
		return
	}

	customer, err := h.store.EnqueueCustomer(r.Context(), store.EnqueueInput{
		Name:      req.Name,
		TicketNo:  req.TicketNo,
		BarberID:  req.BarberID,
		EnteredAt: time.Now().UTC(),
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) handleCustomerSubroutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/customers/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	customerID := parts[0]
	if !isValidUUID(customerID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "customer_id must be a UUID")
		return
	}

	switch len(parts) {
	case 1:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		customer, err := h.store.GetCustomer(r.Context(), customerID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, customer)
	case 2:
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch parts[1] {
		case "complete":
			h.handleCompleteCustomer(w, r, customerID)
		case "cancel":
			h.handleCancelCustomer(w, r, customerID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type completeResponse struct {
	Customer models.Customer      `json:"customer"`
	Record   models.ServiceRecord `json:"record"`
}

func (h *Handler) handleCompleteCustomer(w http.ResponseWriter, r *http.Request, customerID string) {
	customer, record, err := h.store.CompleteCustomer(r.Context(), customerID, time.Now().UTC())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{Customer: customer, Record: record})
}

func (h *Handler) handleCancelCustomer(w http.ResponseWriter, r *http.Request, customerID string) {
	customer, err := h.store.CancelCustomer(r.Context(), customerID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) handleTicketLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/tickets/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	ticketNo, err := strconv.Atoi(parts[0])
	if err != nil || ticketNo <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "ticket number must be a positive integer")
		return
	}

	customer, err := h.store.GetCustomerByTicket(r.Context(), ticketNo)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) handleFullQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	queues, err := h.store.ListFullQueue(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, queues)
}

type recordsResponse struct {
	Records []models.ServiceRecord `json:"records"`
	Total   int                    `json:"total"`
	Page    int                    `json:"page"`
	Limit   int                    `json:"limit"`
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter, ok := parseRecordFilter(w, r)
	if !ok {
		return
	}

	records, total, err := h.store.ListServiceRecords(r.Context(), filter)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse{
		Records: records,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	})
}

func (h *Handler) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/records/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !isValidUUID(parts[0]) {
		writeError(w, http.StatusBadRequest, "invalid_request", "record_id must be a UUID")
		return
	}

	record, err := h.store.GetServiceRecord(r.Context(), parts[0])
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func parseRecordFilter(w http.ResponseWriter, r *http.Request) (store.RecordFilter, bool) {
	var filter store.RecordFilter

	filter.BarberID = strings.TrimSpace(r.URL.Query().Get("barber_id"))
	if filter.BarberID != "" && !isValidUUID(filter.BarberID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "barber_id must be a UUID")
		return store.RecordFilter{}, false
	}

	if fromRaw := strings.TrimSpace(r.URL.Query().Get("from")); fromRaw != "" {
		parsed, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "from must be an RFC3339 timestamp")
			return store.RecordFilter{}, false
		}
		filter.From = parsed
	}
	if toRaw := strings.TrimSpace(r.URL.Query().Get("to")); toRaw != "" {
		parsed, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "to must be an RFC3339 timestamp")
			return store.RecordFilter{}, false
		}
		filter.To = parsed
	}

	filter.Limit = 100
	if limitRaw := strings.TrimSpace(r.URL.Query().Get("limit")); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return store.RecordFilter{}, false
		}
		filter.Limit = parsed
	}

	filter.Page = 1
	if pageRaw := strings.TrimSpace(r.URL.Query().Get("page")); pageRaw != "" {
		parsed, err := strconv.Atoi(pageRaw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "page must be a positive integer")
			return store.RecordFilter{}, false
		}
		filter.Page = parsed
	}

	return filter, true
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrBarberNotFound):
		return http.StatusNotFound, "barber_not_found", "barber not found"
	case errors.Is(err, store.ErrBarberNameTaken):
		return http.StatusConflict, "barber_name_taken", "a barber with this name already exists"
	case errors.Is(err, store.ErrBarberInactive):
		return http.StatusConflict, "barber_inactive", "barber is not accepting customers"
	case errors.Is(err, store.ErrBarberHasCustomers):
		return http.StatusConflict, "barber_has_customers", "barber still has waiting or in-service customers"
	case errors.Is(err, store.ErrCustomerNotFound):
		return http.StatusNotFound, "customer_not_found", "customer not found"
	case errors.Is(err, store.ErrTicketInUse):
		return http.StatusConflict, "ticket_in_use", "ticket number is already held by a customer in the shop"
	case errors.Is(err, store.ErrRecordNotFound):
		return http.StatusNotFound, "record_not_found", "service record not found"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "customer state does not allow this action"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
