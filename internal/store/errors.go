package store

import "errors"

var (
	ErrBarberNotFound     = errors.New("barber not found")
	ErrBarberNameTaken    = errors.New("barber name already taken")
	ErrBarberInactive     = errors.New("barber is not active")
	ErrBarberHasCustomers = errors.New("barber has waiting or serving customers")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrTicketInUse        = errors.New("ticket number already in use")
	ErrRecordNotFound     = errors.New("service record not found")
	ErrInvalidState       = errors.New("invalid customer state")
)
