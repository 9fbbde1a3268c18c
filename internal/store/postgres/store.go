package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"barberq/queue-service/internal/models"
	"barberq/queue-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CreateBarber(ctx context.Context, name string) (models.Barber, error) {
	var barber models.Barber
	row := s.pool.QueryRow(ctx, `
		INSERT INTO barbers (barber_id, name, active)
		VALUES ($1, $2, TRUE)
		RETURNING barber_id, name, active
	`, uuid.NewString(), name)
	if err := row.Scan(&barber.BarberID, &barber.Name, &barber.Active); err != nil {
		if isUniqueViolation(err) {
			return models.Barber{}, store.ErrBarberNameTaken
		}
		return models.Barber{}, err
	}
	return barber, nil
}

func (s *Store) GetBarber(ctx context.Context, barberID string) (models.Barber, error) {
	var barber models.Barber
	row := s.pool.QueryRow(ctx, `
		SELECT barber_id, name, active
		FROM barbers
		WHERE barber_id = $1
	`, barberID)
	if err := row.Scan(&barber.BarberID, &barber.Name, &barber.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Barber{}, store.ErrBarberNotFound
		}
		return models.Barber{}, err
	}
	return barber, nil
}

func (s *Store) ListBarbers(ctx context.Context) ([]models.Barber, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT barber_id, name, active
		FROM barbers
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var barbers []models.Barber
	for rows.Next() {
		var barber models.Barber
		if err := rows.Scan(&barber.BarberID, &barber.Name, &barber.Active); err != nil {
			return nil, err
		}
		barbers = append(barbers, barber)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return barbers, nil
}

func (s *Store) SetBarberActive(ctx context.Context, barberID string, active bool) (models.Barber, error) {
	var barber models.Barber
	row := s.pool.QueryRow(ctx, `
		UPDATE barbers
		SET active = $1
		WHERE barber_id = $2
		RETURNING barber_id, name, active
	`, active, barberID)
	if err := row.Scan(&barber.BarberID, &barber.Name, &barber.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Barber{}, store.ErrBarberNotFound
		}
		return models.Barber{}, err
	}
	return barber, nil
}

func (s *Store) DeleteBarber(ctx context.Context, barberID string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = lockBarber(ctx, tx, barberID); err != nil {
		return err
	}

	var busy bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM customers
			WHERE barber_id = $1 AND status IN ('waiting', 'serving')
		)
	`, barberID)
	if err = row.Scan(&busy); err != nil {
		return err
	}
	if busy {
		err = store.ErrBarberHasCustomers
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM barbers WHERE barber_id = $1`, barberID); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	return err
}

func (s *Store) EnqueueCustomer(ctx context.Context, input store.EnqueueInput) (models.Customer, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Customer{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	barber, err := lockBarber(ctx, tx, input.BarberID)
	if err != nil {
		return models.Customer{}, err
	}
	if !barber.Active {
		err = store.ErrBarberInactive
		return models.Customer{}, err
	}

	var taken bool
	row := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM customers
			WHERE ticket_no = $1 AND status IN ('waiting', 'serving')
		)
	`, input.TicketNo)
	if err = row.Scan(&taken); err != nil {
		return models.Customer{}, err
	}
	if taken {
		err = store.ErrTicketInUse
		return models.Customer{}, err
	}

	var waiting int
	row = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM customers
		WHERE barber_id = $1 AND status = 'waiting'
	`, input.BarberID)
	if err = row.Scan(&waiting); err != nil {
		return models.Customer{}, err
	}

	enteredAt := input.EnteredAt
	if enteredAt.IsZero() {
		enteredAt = time.Now().UTC()
	}

	var customer models.Customer
	var positionNull sql.NullInt64
	var calledAtNull sql.NullTime
	row = tx.QueryRow(ctx, `
		INSERT INTO customers (customer_id, name, ticket_no, barber_id, status, queue_position, entered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING customer_id, name, ticket_no, barber_id, status, queue_position, entered_at, called_at
	`, uuid.NewString(), input.Name, input.TicketNo, input.BarberID, models.StatusWaiting, waiting+1, enteredAt)
	if err = row.Scan(&customer.CustomerID, &customer.Name, &customer.TicketNo, &customer.BarberID, &customer.Status, &positionNull, &customer.EnteredAt, &calledAtNull); err != nil {
		if isUniqueViolation(err) {
			err = store.ErrTicketInUse
		}
		return models.Customer{}, err
	}
	customer.QueuePosition = nullIntPtr(positionNull)
	customer.CalledAt = nullTimePtr(calledAtNull)

	if err = tx.Commit(ctx); err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

func (s *Store) GetCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	customer, _, err := scanCustomerRow(s.pool.QueryRow(ctx, `
		SELECT customer_id, name, ticket_no, barber_id, status, queue_position, entered_at, called_at, seq
		FROM customers
		WHERE customer_id = $1
	`, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Customer{}, store.ErrCustomerNotFound
		}
		return models.Customer{}, err
	}
	return customer, nil
}

// GetCustomerByTicket resolves the current holder of a ticket number,
// preferring the active holder over terminal ones. For a waiting customer the
// queue position is recomputed from arrival order and persisted, so the value
// a status check sees always matches the latest renumbering.
func (s *Store) GetCustomerByTicket(ctx context.Context, ticketNo int) (models.Customer, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Customer{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	customer, seq, err := scanCustomerRow(tx.QueryRow(ctx, `
		SELECT customer_id, name, ticket_no, barber_id, status, queue_position, entered_at, called_at, seq
		FROM customers
		WHERE ticket_no = $1
		ORDER BY CASE WHEN status IN ('waiting', 'serving') THEN 0 ELSE 1 END, seq DESC
		LIMIT 1
	`, ticketNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrCustomerNotFound
		}
		return models.Customer{}, err
	}

	if customer.Status == models.StatusWaiting {
		if _, err = lockBarber(ctx, tx, customer.BarberID); err != nil {
			return models.Customer{}, err
		}
		// Re-read under the barber lock; the customer may have been
		// dispatched or cancelled in the meantime.
		customer, seq, err = scanCustomerRow(tx.QueryRow(ctx, `
			SELECT customer_id, name, ticket_no, barber_id, status, queue_position, entered_at, called_at, seq
			FROM customers
			WHERE customer_id = $1
		`, customer.CustomerID))
		if err != nil {
			return models.Customer{}, err
		}
	}
	if customer.Status == models.StatusWaiting {
		var ahead int
		row := tx.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM customers
			WHERE barber_id = $1 AND status = 'waiting'
				AND (entered_at < $2 OR (entered_at = $2 AND seq < $3))
		`, customer.BarberID, customer.EnteredAt, seq)
		if err = row.Scan(&ahead); err != nil {
			return models.Customer{}, err
		}
		position := ahead + 1
		if _, err = tx.Exec(ctx, `
			UPDATE customers
			SET queue_position = $1
			WHERE customer_id = $2
		`, position, customer.CustomerID); err != nil {
			return models.Customer{}, err
		}
		customer.QueuePosition = &position
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

func (s *Store) CallNext(ctx context.Context, barberID string, calledAt time.Time) (models.Customer, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Customer{}, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = lockBarber(ctx, tx, barberID); err != nil {
		return models.Customer{}, false, err
	}

	if calledAt.IsZero() {
		calledAt = time.Now().UTC()
	}

	var customer models.Customer
	var positionNull sql.NullInt64
	var calledAtNull sql.NullTime
	row := tx.QueryRow(ctx, `
		WITH next_customer AS (
			SELECT customer_id
			FROM customers
			WHERE barber_id = $1 AND status = 'waiting'
			ORDER BY entered_at ASC, seq ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE customers
		SET status = 'serving',
			queue_position = NULL,
			called_at = $2
		FROM next_customer
		WHERE customers.customer_id = next_customer.customer_id
		RETURNING customers.customer_id, customers.name, customers.ticket_no, customers.barber_id, customers.status, customers.queue_position, customers.entered_at, customers.called_at
	`, barberID, calledAt)
	if err = row.Scan(&customer.CustomerID, &customer.Name, &customer.TicketNo, &customer.BarberID, &customer.Status, &positionNull, &customer.EnteredAt, &calledAtNull); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = tx.Commit(ctx)
			if err != nil {
				return models.Customer{}, false, err
			}
			return models.Customer{}, false, nil
		}
		return models.Customer{}, false, err
	}
	customer.QueuePosition = nullIntPtr(positionNull)
	customer.CalledAt = nullTimePtr(calledAtNull)

	if err = renumberQueue(ctx, tx, barberID); err != nil {
		return models.Customer{}, false, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Customer{}, false, err
	}
	return customer, true, nil
}

func (s *Store) CompleteCustomer(ctx context.Context, customerID string, endedAt time.Time) (models.Customer, models.ServiceRecord, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Customer{}, models.ServiceRecord{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Barber lock first, then the customer row; every writer takes the
	// locks in that order.
	if err = lockCustomerBarber(ctx, tx, customerID); err != nil {
		return models.Customer{}, models.ServiceRecord{}, err
	}
	customer, err := lockCustomer(ctx, tx, customerID)
	if err != nil {
		return models.Customer{}, models.ServiceRecord{}, err
	}
	if !store.ValidTransition("complete", customer.Status) {
		err = store.ErrInvalidState
		return models.Customer{}, models.ServiceRecord{}, err
	}

	if endedAt.IsZero() {
		endedAt = time.Now().UTC()
	}
	startedAt := endedAt
	if customer.CalledAt != nil {
		startedAt = *customer.CalledAt
	}

	record := models.ServiceRecord{
		RecordID:     uuid.NewString(),
		CustomerID:   customer.CustomerID,
		BarberID:     customer.BarberID,
		TicketNo:     customer.TicketNo,
		CustomerName: customer.Name,
		EnteredAt:    customer.EnteredAt,
		StartedAt:    startedAt,
	}
	record.Finalize(endedAt)

	if _, err = tx.Exec(ctx, `
		INSERT INTO service_records (record_id, customer_id, barber_id, ticket_no, customer_name, entered_at, started_at, ended_at, wait_minutes, service_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, record.RecordID, record.CustomerID, record.BarberID, record.TicketNo, record.CustomerName, record.EnteredAt, record.StartedAt, record.EndedAt, record.WaitMinutes, record.ServiceMinutes); err != nil {
		return models.Customer{}, models.ServiceRecord{}, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE customers
		SET status = 'completed'
		WHERE customer_id = $1
	`, customer.CustomerID); err != nil {
		return models.Customer{}, models.ServiceRecord{}, err
	}
	customer.Status = models.StatusCompleted

	if err = renumberQueue(ctx, tx, customer.BarberID); err != nil {
		return models.Customer{}, models.ServiceRecord{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Customer{}, models.ServiceRecord{}, err
	}
	return customer, record, nil
}

func (s *Store) CancelCustomer(ctx context.Context, customerID string) (models.Customer, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Customer{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockCustomerBarber(ctx, tx, customerID); err != nil {
		return models.Customer{}, err
	}
	customer, err := lockCustomer(ctx, tx, customerID)
	if err != nil {
		return models.Customer{}, err
	}
	if !store.ValidTransition("cancel", customer.Status) {
		err = store.ErrInvalidState
		return models.Customer{}, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE customers
		SET status = 'cancelled',
			queue_position = NULL
		WHERE customer_id = $1
	`, customer.CustomerID); err != nil {
		return models.Customer{}, err
	}
	customer.Status = models.StatusCancelled
	customer.QueuePosition = nil

	if err = renumberQueue(ctx, tx, customer.BarberID); err != nil {
		return models.Customer{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

func (s *Store) ListQueue(ctx context.Context, barberID string) (store.BarberQueue, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.BarberQueue{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	barber, err := lockBarber(ctx, tx, barberID)
	if err != nil {
		return store.BarberQueue{}, err
	}

	queue, err := buildBarberQueue(ctx, tx, barber)
	if err != nil {
		return store.BarberQueue{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return store.BarberQueue{}, err
	}
	return queue, nil
}

func (s *Store) ListFullQueue(ctx context.Context) ([]store.BarberQueue, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
		SELECT barber_id, name, active
		FROM barbers
		WHERE active = TRUE
		ORDER BY name ASC
		FOR UPDATE
	`)
	if err != nil {
		return nil, err
	}
	var barbers []models.Barber
	for rows.Next() {
		var barber models.Barber
		if err = rows.Scan(&barber.BarberID, &barber.Name, &barber.Active); err != nil {
			rows.Close()
			return nil, err
		}
		barbers = append(barbers, barber)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	queues := make([]store.BarberQueue, 0, len(barbers))
	for _, barber := range barbers {
		var queue store.BarberQueue
		queue, err = buildBarberQueue(ctx, tx, barber)
		if err != nil {
			return nil, err
		}
		queues = append(queues, queue)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return queues, nil
}

func (s *Store) ListServiceRecords(ctx context.Context, filter store.RecordFilter) ([]models.ServiceRecord, int, error) {
	where := " WHERE TRUE"
	args := []interface{}{}
	if filter.BarberID != "" {
		args = append(args, filter.BarberID)
		where += " AND barber_id = $1"
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += " AND started_at >= $" + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += " AND started_at < $" + strconv.Itoa(len(args))
	}

	var total int
	row := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM service_records"+where, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT record_id, customer_id, barber_id, ticket_no, customer_name, entered_at, started_at, ended_at, wait_minutes, service_minutes
		FROM service_records` + where + `
		ORDER BY started_at DESC`
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		args = append(args, filter.Limit, offset)
		query += " LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []models.ServiceRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *Store) GetServiceRecord(ctx context.Context, recordID string) (models.ServiceRecord, error) {
	record, err := scanRecord(s.pool.QueryRow(ctx, `
		SELECT record_id, customer_id, barber_id, ticket_no, customer_name, entered_at, started_at, ended_at, wait_minutes, service_minutes
		FROM service_records
		WHERE record_id = $1
	`, recordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ServiceRecord{}, store.ErrRecordNotFound
		}
		return models.ServiceRecord{}, err
	}
	return record, nil
}

func (s *Store) GetStatistics(ctx context.Context, barberID string, from, to time.Time) (store.Statistics, error) {
	where := " WHERE r.started_at >= $1 AND r.started_at < $2"
	args := []interface{}{from, to}
	if barberID != "" {
		args = append(args, barberID)
		where += " AND r.barber_id = $3"
	}

	var stats store.Statistics
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(r.wait_minutes), 0),
			COALESCE(AVG(r.service_minutes), 0)
		FROM service_records r`+where, args...)
	if err := row.Scan(&stats.TotalServices, &stats.AvgWaitMinutes, &stats.AvgServiceMinutes); err != nil {
		return store.Statistics{}, err
	}
	stats.AvgTotalMinutes = stats.AvgWaitMinutes + stats.AvgServiceMinutes

	rows, err := s.pool.Query(ctx, `
		SELECT r.barber_id, COALESCE(b.name, ''), COUNT(*),
			COALESCE(AVG(r.wait_minutes), 0),
			COALESCE(AVG(r.service_minutes), 0)
		FROM service_records r
		LEFT JOIN barbers b ON b.barber_id = r.barber_id`+where+`
		GROUP BY r.barber_id, b.name
		ORDER BY COUNT(*) DESC
	`, args...)
	if err != nil {
		return store.Statistics{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry store.BarberStatistics
		if err := rows.Scan(&entry.BarberID, &entry.BarberName, &entry.TotalServices, &entry.AvgWaitMinutes, &entry.AvgServiceMinutes); err != nil {
			return store.Statistics{}, err
		}
		stats.PerBarber = append(stats.PerBarber, entry)
	}
	if err := rows.Err(); err != nil {
		return store.Statistics{}, err
	}
	return stats, nil
}

func (s *Store) GetDailySummary(ctx context.Context, from, to time.Time) (store.DailySummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.barber_id, COALESCE(b.name, ''), COUNT(*),
			COALESCE(SUM(r.service_minutes), 0),
			MIN(r.started_at), MAX(r.started_at)
		FROM service_records r
		LEFT JOIN barbers b ON b.barber_id = r.barber_id
		WHERE r.started_at >= $1 AND r.started_at < $2
		GROUP BY r.barber_id, b.name
		ORDER BY COUNT(*) DESC
	`, from, to)
	if err != nil {
		return store.DailySummary{}, err
	}
	defer rows.Close()

	var summary store.DailySummary
	for rows.Next() {
		var entry store.BarberDailySummary
		if err := rows.Scan(&entry.BarberID, &entry.BarberName, &entry.TotalServices, &entry.TotalServiceMinutes, &entry.FirstStartedAt, &entry.LastStartedAt); err != nil {
			return store.DailySummary{}, err
		}
		summary.TotalServices += entry.TotalServices
		summary.TotalServiceMinutes += entry.TotalServiceMinutes
		summary.PerBarber = append(summary.PerBarber, entry)
	}
	if err := rows.Err(); err != nil {
		return store.DailySummary{}, err
	}
	return summary, nil
}

func (s *Store) SystemCounts(ctx context.Context) (store.SystemCounts, error) {
	var counts store.SystemCounts
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN active THEN 1 ELSE 0 END), 0)
		FROM barbers
	`)
	if err := row.Scan(&counts.TotalBarbers, &counts.ActiveBarbers); err != nil {
		return store.SystemCounts{}, err
	}

	row = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN status = 'waiting' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'serving' THEN 1 ELSE 0 END), 0)
		FROM customers
	`)
	if err := row.Scan(&counts.Waiting, &counts.Serving); err != nil {
		return store.SystemCounts{}, err
	}
	return counts, nil
}

// lockBarber serializes all mutations of one barber's waiting set on the
// barber row itself.
func lockBarber(ctx context.Context, tx pgx.Tx, barberID string) (models.Barber, error) {
	var barber models.Barber
	row := tx.QueryRow(ctx, `
		SELECT barber_id, name, active
		FROM barbers
		WHERE barber_id = $1
		FOR UPDATE
	`, barberID)
	if err := row.Scan(&barber.BarberID, &barber.Name, &barber.Active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Barber{}, store.ErrBarberNotFound
		}
		return models.Barber{}, err
	}
	return barber, nil
}

// lockCustomerBarber resolves a customer's barber and takes the barber-row
// lock without locking the customer row itself.
func lockCustomerBarber(ctx context.Context, tx pgx.Tx, customerID string) error {
	var barberID string
	row := tx.QueryRow(ctx, `
		SELECT barber_id
		FROM customers
		WHERE customer_id = $1
	`, customerID)
	if err := row.Scan(&barberID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrCustomerNotFound
		}
		return err
	}
	_, err := lockBarber(ctx, tx, barberID)
	return err
}

func lockCustomer(ctx context.Context, tx pgx.Tx, customerID string) (models.Customer, error) {
	var customer models.Customer
	var positionNull sql.NullInt64
	var calledAtNull sql.NullTime
	row := tx.QueryRow(ctx, `
		SELECT customer_id, name, ticket_no, barber_id, status, queue_position, entered_at, called_at
		FROM customers
		WHERE customer_id = $1
		FOR UPDATE
	`, customerID)
	if err := row.Scan(&customer.CustomerID, &customer.Name, &customer.TicketNo, &customer.BarberID, &customer.Status, &positionNull, &customer.EnteredAt, &calledAtNull); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Customer{}, store.ErrCustomerNotFound
		}
		return models.Customer{}, err
	}
	customer.QueuePosition = nullIntPtr(positionNull)
	customer.CalledAt = nullTimePtr(calledAtNull)
	return customer, nil
}

// renumberQueue reassigns contiguous 1-based positions over a barber's
// waiting customers in arrival order. Ties on entered_at fall back to
// insertion order. Idempotent.
func renumberQueue(ctx context.Context, tx pgx.Tx, barberID string) error {
	_, err := tx.Exec(ctx, `
		WITH ranked AS (
			SELECT customer_id,
				ROW_NUMBER() OVER (ORDER BY entered_at ASC, seq ASC) AS position
			FROM customers
			WHERE barber_id = $1 AND status = 'waiting'
		)
		UPDATE customers
		SET queue_position = ranked.position
		FROM ranked
		WHERE customers.customer_id = ranked.customer_id
			AND customers.status = 'waiting'
			AND customers.queue_position IS DISTINCT FROM ranked.position
	`, barberID)
	return err
}

func buildBarberQueue(ctx context.Context, tx pgx.Tx, barber models.Barber) (store.BarberQueue, error) {
	if err := renumberQueue(ctx, tx, barber.BarberID); err != nil {
		return store.BarberQueue{}, err
	}

	queue := store.BarberQueue{Barber: barber, Waiting: []models.Customer{}}
	rows, err := tx.Query(ctx, `
		SELECT customer_id, name, ticket_no, barber_id, status, queue_position, entered_at, called_at
		FROM customers
		WHERE barber_id = $1 AND status = 'waiting'
		ORDER BY queue_position ASC
	`, barber.BarberID)
	if err != nil {
		return store.BarberQueue{}, err
	}
	for rows.Next() {
		var customer models.Customer
		var positionNull sql.NullInt64
		var calledAtNull sql.NullTime
		if err := rows.Scan(&customer.CustomerID, &customer.Name, &customer.TicketNo, &customer.BarberID, &customer.Status, &positionNull, &customer.EnteredAt, &calledAtNull); err != nil {
			rows.Close()
			return store.BarberQueue{}, err
		}
		customer.QueuePosition = nullIntPtr(positionNull)
		customer.CalledAt = nullTimePtr(calledAtNull)
		queue.Waiting = append(queue.Waiting, customer)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return store.BarberQueue{}, err
	}

	var serving models.Customer
	var positionNull sql.NullInt64
	var calledAtNull sql.NullTime
	row := tx.QueryRow(ctx, `
		SELECT customer_id, name, ticket_no, barber_id, status, queue_position, entered_at, called_at
		FROM customers
		WHERE barber_id = $1 AND status = 'serving'
		ORDER BY called_at DESC
		LIMIT 1
	`, barber.BarberID)
	if err := row.Scan(&serving.CustomerID, &serving.Name, &serving.TicketNo, &serving.BarberID, &serving.Status, &positionNull, &serving.EnteredAt, &calledAtNull); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return store.BarberQueue{}, err
		}
	} else {
		serving.QueuePosition = nullIntPtr(positionNull)
		serving.CalledAt = nullTimePtr(calledAtNull)
		queue.Serving = &serving
	}
	return queue, nil
}

func scanCustomerRow(row pgx.Row) (models.Customer, int64, error) {
	var customer models.Customer
	var positionNull sql.NullInt64
	var calledAtNull sql.NullTime
	var seq int64
	if err := row.Scan(&customer.CustomerID, &customer.Name, &customer.TicketNo, &customer.BarberID, &customer.Status, &positionNull, &customer.EnteredAt, &calledAtNull, &seq); err != nil {
		return models.Customer{}, 0, err
	}
	customer.QueuePosition = nullIntPtr(positionNull)
	customer.CalledAt = nullTimePtr(calledAtNull)
	return customer, seq, nil
}

func scanRecord(row pgx.Row) (models.ServiceRecord, error) {
	var record models.ServiceRecord
	var customerIDNull sql.NullString
	var endedAtNull sql.NullTime
	var waitNull sql.NullInt64
	var serviceNull sql.NullInt64
	if err := row.Scan(&record.RecordID, &customerIDNull, &record.BarberID, &record.TicketNo, &record.CustomerName, &record.EnteredAt, &record.StartedAt, &endedAtNull, &waitNull, &serviceNull); err != nil {
		return models.ServiceRecord{}, err
	}
	if customerIDNull.Valid {
		record.CustomerID = customerIDNull.String
	}
	record.EndedAt = nullTimePtr(endedAtNull)
	record.WaitMinutes = nullIntPtr(waitNull)
	record.ServiceMinutes = nullIntPtr(serviceNull)
	return record, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func nullIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}
