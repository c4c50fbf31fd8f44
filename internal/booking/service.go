package booking

import (
	"context"
	"fmt"
	"time"

	"classfit/internal/bus"
	"classfit/internal/metrics"
	"classfit/internal/user"
)

// Mailer queues notification emails after successful mutations.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, to, name, classTitle string, startTime time.Time) error
	SendBookingCancelled(ctx context.Context, to, name, classTitle string, startTime time.Time) error
}

// Service wraps the atomic book/cancel procedures with a uniform result
// contract. It performs no local capacity checks: the procedure is the sole
// arbiter of capacity, and two callers racing for the last spot will simply
// see one success=true and one success=false.
type Service interface {
	Book(ctx context.Context, userID, sessionID int) (*ProcedureResult, error)
	Cancel(ctx context.Context, userID, sessionID int) (*ProcedureResult, error)
	MyBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
}

type service struct {
	repo     Repository
	userRepo user.Repository
	bus      *bus.Bus
	mailer   Mailer
}

func NewService(repo Repository, userRepo user.Repository, b *bus.Bus, mailer Mailer) Service {
	return &service{
		repo:     repo,
		userRepo: userRepo,
		bus:      b,
		mailer:   mailer,
	}
}

func (s *service) Book(ctx context.Context, userID, sessionID int) (*ProcedureResult, error) {
	result, err := s.repo.CallBook(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not reach the booking procedure: %w", err)
	}

	if !result.Success {
		// Expected, recoverable outcome; relayed to the caller as-is.
		metrics.RecordBookingRejection(result.Code)
		return result, nil
	}

	metrics.RecordBooking()

	// Broadcast before returning so every availability view re-fetches.
	s.bus.Publish()
	metrics.RecordBroadcast()

	s.notify(ctx, userID, sessionID, false)

	return result, nil
}

func (s *service) Cancel(ctx context.Context, userID, sessionID int) (*ProcedureResult, error) {
	result, err := s.repo.CallCancel(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not reach the cancellation procedure: %w", err)
	}

	if !result.Success {
		metrics.RecordBookingRejection(result.Code)
		return result, nil
	}

	metrics.RecordBookingCancellation()

	s.bus.Publish()
	metrics.RecordBroadcast()

	s.notify(ctx, userID, sessionID, true)

	return result, nil
}

func (s *service) MyBookings(ctx context.Context, userID int) ([]BookingWithDetails, error) {
	return s.repo.ListUserBookings(ctx, userID)
}

func (s *service) notify(ctx context.Context, userID, sessionID int, cancelled bool) {
	if s.mailer == nil {
		return
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return
	}

	info, err := s.repo.SessionInfo(ctx, sessionID)
	if err != nil {
		return
	}

	// Queue failure must not fail the mutation that already committed.
	if cancelled {
		_ = s.mailer.SendBookingCancelled(ctx, u.Email, u.Name, info.ClassTitle, info.StartTime)
	} else {
		_ = s.mailer.SendBookingConfirmation(ctx, u.Email, u.Name, info.ClassTitle, info.StartTime)
	}
}
