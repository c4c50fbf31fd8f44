package class

import (
	"time"

	"classfit/internal/booking"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelNone         = "none"
)

// Trainer is the canonical trainer identity attached to classes and
// sessions after normalization.
type Trainer struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

// TrainerProfile is supplementary data from an optional table. Reads
// degrade to nil fields when the table does not exist.
type TrainerProfile struct {
	UserID    int      `db:"user_id" json:"user_id"`
	Specialty *string  `db:"specialty" json:"specialty,omitempty"`
	Rating    *float64 `db:"rating" json:"rating,omitempty"`
}

type GymClass struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	TrainerID   *int      `db:"trainer_id" json:"trainer_id,omitempty"`
	Trainer     *Trainer  `db:"-" json:"trainer,omitempty"`
	Level       string    `db:"level" json:"level"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	Capacity    int       `db:"capacity" json:"capacity"`
	CoverURL    *string   `db:"cover_url" json:"cover_url,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ClassSession struct {
	ID               int       `db:"id" json:"id"`
	ClassID          int       `db:"class_id" json:"class_id"`
	StartTime        time.Time `db:"start_time" json:"start_time"`
	EndTime          time.Time `db:"end_time" json:"end_time"`
	CapacityOverride *int      `db:"capacity_override" json:"capacity_override,omitempty"`
	Cancelled        bool      `db:"cancelled" json:"cancelled"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`

	// Parent class, populated by the read path.
	Class *GymClass `db:"-" json:"class,omitempty"`
}

// EffectiveCapacity is the session override when present, else the parent
// class capacity.
func (s ClassSession) EffectiveCapacity() int {
	if s.CapacityOverride != nil {
		return *s.CapacityOverride
	}
	if s.Class != nil {
		return s.Class.Capacity
	}
	return 0
}

type AvailabilityState string

const (
	StateAvailable AvailabilityState = "available"
	StateFewLeft   AvailabilityState = "few_left"
	StateFull      AvailabilityState = "full"
	StateBooked    AvailabilityState = "booked"
	StateCancelled AvailabilityState = "cancelled"
)

// SessionWithAvailability is a session enriched with the per-caller
// availability view. It is derived on every fetch and never persisted.
type SessionWithAvailability struct {
	ClassSession
	BookedCount    int                   `json:"booked_count"`
	RemainingSpots int                   `json:"remaining_spots"`
	OccupancyRatio float64               `json:"occupancy_ratio"`
	MyBooking      *booking.ClassBooking `json:"my_booking,omitempty"`
	State          AvailabilityState     `json:"availability_state"`
}

// ClassSummary is the class-level aggregate used by list views and the
// recommender: the class plus its next upcoming session and demand signal.
type ClassSummary struct {
	Class        GymClass                 `json:"class"`
	NextSession  *SessionWithAvailability `json:"next_session,omitempty"`
	Demand       DemandSignal             `json:"demand"`
	HasMyBooking bool                     `json:"has_my_booking"`
}

type ClassDetail struct {
	GymClass
	Sessions       []SessionWithAvailability `json:"sessions"`
	Demand         DemandSignal              `json:"demand"`
	TrainerProfile *TrainerProfile           `json:"trainer_profile,omitempty"`
}

type CreateClassRequest struct {
	Title       string  `json:"title" binding:"required"`
	Slug        string  `json:"slug" binding:"required"`
	Description string  `json:"description"`
	TrainerID   *int    `json:"trainer_id"`
	Level       string  `json:"level" binding:"required,oneof=beginner intermediate advanced none"`
	DurationMin int     `json:"duration_min" binding:"required,min=1"`
	Capacity    int     `json:"capacity" binding:"required,min=1"`
	CoverURL    *string `json:"cover_url"`
}

type UpdateClassRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	TrainerID   *int    `json:"trainer_id"`
	Level       *string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced none"`
	DurationMin *int    `json:"duration_min" binding:"omitempty,min=1"`
	Capacity    *int    `json:"capacity" binding:"omitempty,min=1"`
	CoverURL    *string `json:"cover_url"`
	Active      *bool   `json:"active"`
}

type CreateSessionRequest struct {
	StartTime        string `json:"start_time" binding:"required"`
	EndTime          string `json:"end_time" binding:"required"`
	CapacityOverride *int   `json:"capacity_override" binding:"omitempty,min=1"`
}
