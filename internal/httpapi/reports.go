package httpapi

import (
	"encoding/csv"
	"expvar"
	"net/http"
	"strconv"
	"strings"
	"time"

	"barberq/queue-service/internal/store"
)

func metricsHandler() http.Handler {
	return expvar.Handler()
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	counts, err := h.store.SystemCounts(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// statisticsWindow resolves a named reporting period to a half-open time
// range ending now. "today" starts at UTC midnight; the rolling periods
// reach back a fixed number of days.
func statisticsWindow(period string, now time.Time) (time.Time, bool) {
	switch period {
	case "", "today":
		return now.Truncate(24 * time.Hour), true
	case "week":
		return now.AddDate(0, 0, -7), true
	case "month":
		return now.AddDate(0, 0, -30), true
	case "year":
		return now.AddDate(0, 0, -365), true
	default:
		return time.Time{}, false
	}
}

type statisticsResponse struct {
	Period string           `json:"period"`
	From   time.Time        `json:"from"`
	To     time.Time        `json:"to"`
	Stats  store.Statistics `json:"stats"`
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	barberID := strings.TrimSpace(r.URL.Query().Get("barber_id"))
	if barberID != "" && !isValidUUID(barberID) {
		writeError(w, http.StatusBadRequest, "invalid_request", "barber_id must be a UUID")
		return
	}

	period := strings.TrimSpace(r.URL.Query().Get("period"))
	now := time.Now().UTC()
	from, ok := statisticsWindow(period, now)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "period must be one of today, week, month, year")
		return
	}
	if period == "" {
		period = "today"
	}

	stats, err := h.store.GetStatistics(r.Context(), barberID, from, now)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, statisticsResponse{
		Period: period,
		From:   from,
		To:     now,
		Stats:  stats,
	})
}

type dailySummaryResponse struct {
	Date    string             `json:"date"`
	From    time.Time          `json:"from"`
	To      time.Time          `json:"to"`
	Summary store.DailySummary `json:"summary"`
}

// handleDailySummary reports today's per-barber workload: services done,
// minutes worked, and the first and last service start times since UTC
// midnight.
func (h *Handler) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	now := time.Now().UTC()
	from := now.Truncate(24 * time.Hour)
	summary, err := h.store.GetDailySummary(r.Context(), from, now)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, dailySummaryResponse{
		Date:    from.Format("2006-01-02"),
		From:    from,
		To:      now,
		Summary: summary,
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter, ok := parseRecordFilter(w, r)
	if !ok {
		return
	}
	// Exports are not paginated.
	filter.Limit = 0
	filter.Page = 0

	records, _, err := h.store.ListServiceRecords(r.Context(), filter)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	barbers, err := h.store.ListBarbers(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	barberNames := make(map[string]string, len(barbers))
	for _, barber := range barbers {
		barberNames[barber.BarberID] = barber.Name
	}

	filename := "service_records_" + time.Now().UTC().Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"record_id", "ticket_no", "customer_name", "barber_id", "barber_name",
		"entered_at", "started_at", "ended_at",
		"wait_minutes", "service_minutes", "total_minutes",
	})
	for _, record := range records {
		_ = writer.Write([]string{
			record.RecordID,
			strconv.Itoa(record.TicketNo),
			record.CustomerName,
			record.BarberID,
			barberNames[record.BarberID],
			record.EnteredAt.Format(time.RFC3339),
			record.StartedAt.Format(time.RFC3339),
			formatTime(record.EndedAt),
			formatMinutes(record.WaitMinutes),
			formatMinutes(record.ServiceMinutes),
			strconv.Itoa(record.TotalMinutes()),
		})
	}
	writer.Flush()
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(time.RFC3339)
}

func formatMinutes(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}
