package class

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"classfit/internal/booking"
	"classfit/internal/bus"
	"classfit/internal/metrics"
)

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionInvalid  = errors.New("invalid session")
)

// upcomingWindow bounds how far ahead list views look.
const upcomingWindow = 14 * 24 * time.Hour

type Service interface {
	ListSessions(ctx context.Context, opts FilterOptions, mode SortMode, callerID *int) ([]SessionWithAvailability, error)
	ListClasses(ctx context.Context, opts FilterOptions, mode SortMode, callerID *int) ([]ClassSummary, error)
	GetClassBySlug(ctx context.Context, slug string, callerID *int) (*ClassDetail, error)
	TodaySessions(ctx context.Context, callerID *int) ([]SessionWithAvailability, error)

	CreateClass(ctx context.Context, req CreateClassRequest) (*GymClass, error)
	UpdateClass(ctx context.Context, id int, req UpdateClassRequest) (*GymClass, error)
	DeactivateClass(ctx context.Context, id int) error
	CreateSession(ctx context.Context, classID int, req CreateSessionRequest) (*ClassSession, error)
	CancelSession(ctx context.Context, sessionID int) error
}

type service struct {
	repo        Repository
	bookingRepo booking.Repository
	bus         *bus.Bus
}

func NewService(repo Repository, bookingRepo booking.Repository, b *bus.Bus) Service {
	return &service{
		repo:        repo,
		bookingRepo: bookingRepo,
		bus:         b,
	}
}

func (s *service) ListSessions(ctx context.Context, opts FilterOptions, mode SortMode, callerID *int) ([]SessionWithAvailability, error) {
	now := time.Now()
	annotated, err := s.fetchAnnotated(ctx, now, now.Add(upcomingWindow), nil, callerID)
	if err != nil {
		return nil, err
	}

	filtered := FilterSessions(annotated, opts)

	demand, err := s.repo.DemandSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load demand signals: %w", err)
	}

	SortSessions(filtered, mode, demand)
	return filtered, nil
}

func (s *service) ListClasses(ctx context.Context, opts FilterOptions, mode SortMode, callerID *int) ([]ClassSummary, error) {
	classes, err := s.repo.ListClasses(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("could not load classes: %w", err)
	}

	now := time.Now()
	annotated, err := s.fetchAnnotated(ctx, now, now.Add(upcomingWindow), nil, callerID)
	if err != nil {
		return nil, err
	}

	demand, err := s.repo.DemandSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load demand signals: %w", err)
	}

	booked := map[int]bool{}
	if callerID != nil {
		booked, err = s.bookingRepo.UserBookedClassIDs(ctx, *callerID)
		if err != nil {
			return nil, fmt.Errorf("could not load bookings: %w", err)
		}
	}

	summaries := BuildSummaries(classes, annotated, demand, booked)
	filtered := FilterClasses(summaries, opts)
	SortClasses(filtered, mode)
	return filtered, nil
}

func (s *service) GetClassBySlug(ctx context.Context, slug string, callerID *int) (*ClassDetail, error) {
	class, err := s.repo.GetClassBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("could not load class: %w", err)
	}

	now := time.Now()
	annotated, err := s.fetchAnnotated(ctx, now, now.Add(upcomingWindow), &class.ID, callerID)
	if err != nil {
		return nil, err
	}

	demand, err := s.repo.DemandSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load demand signals: %w", err)
	}

	detail := &ClassDetail{
		GymClass: *class,
		Sessions: annotated,
		Demand:   demand[class.ID],
	}

	if class.TrainerID != nil {
		// Optional collaborator feature: absence degrades to nil.
		profile, err := s.repo.TrainerProfile(ctx, *class.TrainerID)
		if err != nil {
			return nil, fmt.Errorf("could not load trainer profile: %w", err)
		}
		detail.TrainerProfile = profile
	}

	return detail, nil
}

func (s *service) TodaySessions(ctx context.Context, callerID *int) ([]SessionWithAvailability, error) {
	now := time.Now()
	year, month, day := now.Date()
	endOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)

	return s.fetchAnnotated(ctx, now, endOfDay, nil, callerID)
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*GymClass, error) {
	return s.repo.CreateClass(ctx, req)
}

func (s *service) UpdateClass(ctx context.Context, id int, req UpdateClassRequest) (*GymClass, error) {
	class, err := s.repo.UpdateClass(ctx, id, req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *service) DeactivateClass(ctx context.Context, id int) error {
	err := s.repo.SetClassActive(ctx, id, false)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrClassNotFound
	}
	return err
}

func (s *service) CreateSession(ctx context.Context, classID int, req CreateSessionRequest) (*ClassSession, error) {
	if _, err := s.repo.GetClassByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	if !end.After(start) {
		return nil, ErrSessionInvalid
	}

	return s.repo.CreateSession(ctx, classID, start, end, req.CapacityOverride)
}

// CancelSession marks the session cancelled and broadcasts so every
// availability view re-fetches.
func (s *service) CancelSession(ctx context.Context, sessionID int) error {
	err := s.repo.CancelSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionAlreadyCancelled) {
			return ErrSessionNotFound
		}
		return err
	}

	s.bus.Publish()
	metrics.RecordBroadcast()
	return nil
}

func (s *service) fetchAnnotated(ctx context.Context, from, to time.Time, classID, callerID *int) ([]SessionWithAvailability, error) {
	sessions, err := s.repo.ListSessions(ctx, from, to, classID)
	if err != nil {
		return nil, fmt.Errorf("could not load sessions: %w", err)
	}

	ids := make([]int, 0, len(sessions))
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}

	bookings, err := s.bookingRepo.ListForSessions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("could not load bookings: %w", err)
	}

	return AnnotateSessions(sessions, bookings, callerID), nil
}

// BuildSummaries pairs each class with its next upcoming session, demand
// signal and the caller's booked flag. Shared with the recommender.
func BuildSummaries(classes []GymClass, sessions []SessionWithAvailability, demand map[int]DemandSignal, booked map[int]bool) []ClassSummary {
	// Sessions arrive ordered by start time, so the first non-cancelled
	// one per class is the next session.
	nextByClass := make(map[int]*SessionWithAvailability, len(classes))
	for i := range sessions {
		sess := sessions[i]
		if sess.Cancelled {
			continue
		}
		if _, ok := nextByClass[sess.ClassID]; !ok {
			nextByClass[sess.ClassID] = &sessions[i]
		}
	}

	summaries := make([]ClassSummary, 0, len(classes))
	for _, c := range classes {
		summaries = append(summaries, ClassSummary{
			Class:        c,
			NextSession:  nextByClass[c.ID],
			Demand:       demand[c.ID],
			HasMyBooking: booked[c.ID],
		})
	}

	return summaries
}
