package models

type Barber struct {
	BarberID string `json:"barber_id"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
}
