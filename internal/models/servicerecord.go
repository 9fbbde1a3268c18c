package models

import (
	"encoding/json"
	"time"
)

// ServiceRecord is the immutable history entry written when a customer's
// service completes. Durations are whole minutes truncated toward zero;
// negative deltas from clock skew are stored as-is.
type ServiceRecord struct {
	RecordID       string     `json:"record_id"`
	CustomerID     string     `json:"customer_id"`
	BarberID       string     `json:"barber_id"`
	TicketNo       int        `json:"ticket_no"`
	CustomerName   string     `json:"customer_name"`
	EnteredAt      time.Time  `json:"entered_at"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
	WaitMinutes    *int       `json:"wait_minutes"`
	ServiceMinutes *int       `json:"service_minutes"`
}

// ComputeDurations derives wait_minutes and service_minutes from the stored
// timestamps. Each value is computed only once both of its endpoints are
// present.
func (r *ServiceRecord) ComputeDurations() {
	if !r.EnteredAt.IsZero() && !r.StartedAt.IsZero() {
		minutes := int(r.StartedAt.Sub(r.EnteredAt) / time.Minute)
		r.WaitMinutes = &minutes
	}
	if r.EndedAt != nil && !r.StartedAt.IsZero() {
		minutes := int(r.EndedAt.Sub(r.StartedAt) / time.Minute)
		r.ServiceMinutes = &minutes
	}
}

// Finalize stamps the end of service and derives the timing metrics.
func (r *ServiceRecord) Finalize(endedAt time.Time) {
	r.EndedAt = &endedAt
	r.ComputeDurations()
}

// TotalMinutes is derived at read time and never stored; absent values count
// as zero.
func (r ServiceRecord) TotalMinutes() int {
	total := 0
	if r.WaitMinutes != nil {
		total += *r.WaitMinutes
	}
	if r.ServiceMinutes != nil {
		total += *r.ServiceMinutes
	}
	return total
}

func (r ServiceRecord) MarshalJSON() ([]byte, error) {
	type plain ServiceRecord
	return json.Marshal(struct {
		plain
		TotalMinutes int `json:"total_minutes"`
	}{plain(r), r.TotalMinutes()})
}
