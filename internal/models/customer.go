package models

import "time"

type Customer struct {
	CustomerID    string     `json:"customer_id"`
	Name          string     `json:"name"`
	TicketNo      int        `json:"ticket_no"`
	BarberID      string     `json:"barber_id"`
	Status        string     `json:"status"`
	QueuePosition *int       `json:"queue_position"`
	EnteredAt     time.Time  `json:"entered_at"`
	CalledAt      *time.Time `json:"called_at,omitempty"`
}

const (
	StatusWaiting   = "waiting"
	StatusServing   = "serving"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)
