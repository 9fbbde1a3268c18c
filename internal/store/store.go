package store

import (
	"context"
	"time"

	"barberq/queue-service/internal/models"
)

type EnqueueInput struct {
	Name      string
	TicketNo  int
	BarberID  string
	EnteredAt time.Time
}

type RecordFilter struct {
	BarberID string
	From     time.Time
	To       time.Time
	Limit    int
	Page     int
}

type BarberQueue struct {
	Barber  models.Barber     `json:"barber"`
	Waiting []models.Customer `json:"waiting"`
	Serving *models.Customer  `json:"serving,omitempty"`
}

type BarberStatistics struct {
	BarberID          string  `json:"barber_id"`
	BarberName        string  `json:"barber_name"`
	TotalServices     int     `json:"total_services"`
	AvgWaitMinutes    float64 `json:"avg_wait_minutes"`
	AvgServiceMinutes float64 `json:"avg_service_minutes"`
}

type Statistics struct {
	TotalServices     int                `json:"total_services"`
	AvgWaitMinutes    float64            `json:"avg_wait_minutes"`
	AvgServiceMinutes float64            `json:"avg_service_minutes"`
	AvgTotalMinutes   float64            `json:"avg_total_minutes"`
	PerBarber         []BarberStatistics `json:"per_barber"`
}

type BarberDailySummary struct {
	BarberID            string    `json:"barber_id"`
	BarberName          string    `json:"barber_name"`
	TotalServices       int       `json:"total_services"`
	TotalServiceMinutes int       `json:"total_service_minutes"`
	FirstStartedAt      time.Time `json:"first_started_at"`
	LastStartedAt       time.Time `json:"last_started_at"`
}

type DailySummary struct {
	TotalServices       int                  `json:"total_services"`
	TotalServiceMinutes int                  `json:"total_service_minutes"`
	PerBarber           []BarberDailySummary `json:"per_barber"`
}

type SystemCounts struct {
	TotalBarbers  int `json:"total_barbers"`
	ActiveBarbers int `json:"active_barbers"`
	Waiting       int `json:"waiting_customers"`
	Serving       int `json:"serving_customers"`
}

type QueueStore interface {
	CreateBarber(ctx context.Context, name string) (models.Barber, error)
	GetBarber(ctx context.Context, barberID string) (models.Barber, error)
	ListBarbers(ctx context.Context) ([]models.Barber, error)
	SetBarberActive(ctx context.Context, barberID string, active bool) (models.Barber, error)
	DeleteBarber(ctx context.Context, barberID string) error

	EnqueueCustomer(ctx context.Context, input EnqueueInput) (models.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (models.Customer, error)
	GetCustomerByTicket(ctx context.Context, ticketNo int) (models.Customer, error)
	CallNext(ctx context.Context, barberID string, calledAt time.Time) (models.Customer, bool, error)
	CompleteCustomer(ctx context.Context, customerID string, endedAt time.Time) (models.Customer, models.ServiceRecord, error)
	CancelCustomer(ctx context.Context, customerID string) (models.Customer, error)

	ListQueue(ctx context.Context, barberID string) (BarberQueue, error)
	ListFullQueue(ctx context.Context) ([]BarberQueue, error)

	ListServiceRecords(ctx context.Context, filter RecordFilter) ([]models.ServiceRecord, int, error)
	GetServiceRecord(ctx context.Context, recordID string) (models.ServiceRecord, error)
	GetStatistics(ctx context.Context, barberID string, from, to time.Time) (Statistics, error)
	GetDailySummary(ctx context.Context, from, to time.Time) (DailySummary, error)
	SystemCounts(ctx context.Context) (SystemCounts, error)
}
