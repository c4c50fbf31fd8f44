package booking

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CallBook invokes the atomic booking procedure. All capacity and duplicate
// checks happen inside the procedure under a row lock on the session. The
// procedure's positional parameters are (session, user).
func (r *repository) CallBook(ctx context.Context, userID, sessionID int) (*ProcedureResult, error) {
	query := `SELECT success, code, message, booking_id FROM book_session($1, $2)`

	var result ProcedureResult
	err := r.db.GetContext(ctx, &result, query, sessionID, userID)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *repository) CallCancel(ctx context.Context, userID, sessionID int) (*ProcedureResult, error) {
	query := `SELECT success, code, message, booking_id FROM cancel_session($1, $2)`

	var result ProcedureResult
	err := r.db.GetContext(ctx, &result, query, sessionID, userID)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *repository) SessionInfo(ctx context.Context, sessionID int) (*SessionInfo, error) {
	query := `
		SELECT c.title AS class_title, s.start_time
		FROM class_sessions s
		JOIN classes c ON s.class_id = c.id
		WHERE s.id = $1
	`

	var info SessionInfo
	err := r.db.GetContext(ctx, &info, query, sessionID)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

func (r *repository) ListForSessions(ctx context.Context, sessionIDs []int) ([]ClassBooking, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, session_id, user_id, status, booked_at, cancelled_at, created_at
		FROM class_bookings
		WHERE session_id IN (?)
		ORDER BY booked_at ASC
	`, sessionIDs)
	if err != nil {
		return nil, err
	}

	query = r.db.Rebind(query)

	var bookings []ClassBooking
	err = r.db.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	query := `
		SELECT
			b.id,
			b.session_id,
			b.user_id,
			b.status,
			b.booked_at,
			b.cancelled_at,
			b.created_at,
			s.start_time AS session_start,
			s.end_time AS session_end,
			s.cancelled AS session_cancelled,
			c.title AS class_title,
			c.slug AS class_slug,
			t.name AS trainer_name
		FROM class_bookings b
		JOIN class_sessions s ON b.session_id = s.id
		JOIN classes c ON s.class_id = c.id
		LEFT JOIN users t ON c.trainer_id = t.id
		WHERE b.user_id = $1
		ORDER BY s.start_time DESC, b.booked_at DESC
	`

	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) UserHistory(ctx context.Context, userID int) ([]HistoryRow, error) {
	query := `
		SELECT
			c.id AS class_id,
			c.title AS class_title,
			c.description AS class_description,
			c.level AS class_level,
			b.status
		FROM class_bookings b
		JOIN class_sessions s ON b.session_id = s.id
		JOIN classes c ON s.class_id = c.id
		WHERE b.user_id = $1 AND b.status <> 'cancelled'
		ORDER BY b.booked_at ASC
	`

	var rows []HistoryRow
	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *repository) UserBookedClassIDs(ctx context.Context, userID int) (map[int]bool, error) {
	query := `
		SELECT DISTINCT s.class_id
		FROM class_bookings b
		JOIN class_sessions s ON b.session_id = s.id
		WHERE b.user_id = $1 AND b.status IN ('booked', 'attended')
	`

	var ids []int
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, err
	}

	booked := make(map[int]bool, len(ids))
	for _, id := range ids {
		booked[id] = true
	}

	return booked, nil
}
