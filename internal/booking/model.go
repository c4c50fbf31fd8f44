package booking

import "time"

const (
	StatusBooked    = "booked"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusAttended  = "attended"
	StatusNoShow    = "no_show"
)

type ClassBooking struct {
	ID          int        `db:"id" json:"id"`
	SessionID   int        `db:"session_id" json:"session_id"`
	UserID      int        `db:"user_id" json:"user_id"`
	Status      string     `db:"status" json:"status"`
	BookedAt    time.Time  `db:"booked_at" json:"booked_at"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Active reports whether the booking occupies a spot. The one-active-booking
// per (session, user) rule is enforced by the database procedure, not here.
func (b ClassBooking) Active() bool {
	return b.Status == StatusBooked || b.Status == StatusAttended
}

// ProcedureResult is the contract row returned by the atomic book/cancel
// database procedures. Success must be inspected explicitly; a nil error from
// the call only means the procedure ran.
type ProcedureResult struct {
	Success   bool    `db:"success" json:"success"`
	Code      string  `db:"code" json:"code"`
	Message   *string `db:"message" json:"message,omitempty"`
	BookingID *int    `db:"booking_id" json:"booking_id,omitempty"`
}

// Rejection codes emitted by the procedures.
const (
	CodeBooked           = "booked"
	CodeCancelled        = "cancelled"
	CodeSessionNotFound  = "session_not_found"
	CodeSessionCancelled = "session_cancelled"
	CodeSessionInPast    = "session_in_past"
	CodeSessionFull      = "session_full"
	CodeAlreadyBooked    = "already_booked"
	CodeNotBooked        = "not_booked"
)

// SessionInfo is the minimal session description used for notification
// emails after a successful mutation.
type SessionInfo struct {
	ClassTitle string    `db:"class_title" json:"class_title"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
}

type BookingWithDetails struct {
	ClassBooking
	SessionStart     time.Time `db:"session_start" json:"session_start"`
	SessionEnd       time.Time `db:"session_end" json:"session_end"`
	SessionCancelled bool      `db:"session_cancelled" json:"session_cancelled"`
	ClassTitle       string    `db:"class_title" json:"class_title"`
	ClassSlug        string    `db:"class_slug" json:"class_slug"`
	TrainerName      *string   `db:"trainer_name" json:"trainer_name,omitempty"`
}

// HistoryRow is a past booking joined with the class text the recommender
// infers preferences from.
type HistoryRow struct {
	ClassID          int    `db:"class_id" json:"class_id"`
	ClassTitle       string `db:"class_title" json:"class_title"`
	ClassDescription string `db:"class_description" json:"class_description"`
	ClassLevel       string `db:"class_level" json:"class_level"`
	Status           string `db:"status" json:"status"`
}
