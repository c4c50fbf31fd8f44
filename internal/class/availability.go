package class

import (
	"classfit/internal/booking"
)

// fewLeftThreshold is the canonical low-availability rule: absolute
// remaining spots, applied uniformly across every view.
const fewLeftThreshold = 3

// ComputeAvailability enriches a session with the caller's availability
// view. It is a pure function: bookings are the session's booking rows, and
// callerID is nil for anonymous reads.
func ComputeAvailability(session ClassSession, bookings []booking.ClassBooking, callerID *int) SessionWithAvailability {
	capacity := session.EffectiveCapacity()

	bookedCount := 0
	var myBooking *booking.ClassBooking
	for i := range bookings {
		b := bookings[i]
		if b.SessionID != session.ID {
			continue
		}
		if b.Active() {
			bookedCount++
		}
		// An active row wins over any earlier cancelled one, so a caller
		// who cancelled and re-booked still reads as booked.
		if callerID != nil && b.UserID == *callerID {
			if myBooking == nil || (!myBooking.Active() && b.Active()) {
				myBooking = &bookings[i]
			}
		}
	}

	remaining := capacity - bookedCount
	if remaining < 0 {
		remaining = 0
	}

	divisor := capacity
	if divisor < 1 {
		divisor = 1
	}
	ratio := float64(bookedCount) / float64(divisor)
	if ratio > 1 {
		ratio = 1
	}

	return SessionWithAvailability{
		ClassSession:   session,
		BookedCount:    bookedCount,
		RemainingSpots: remaining,
		OccupancyRatio: ratio,
		MyBooking:      myBooking,
		State:          availabilityState(session, myBooking, remaining),
	}
}

// availabilityState applies the precedence rules: a cancelled session
// overrides everything, and the caller's own active booking displays as
// booked even when the session has since filled up.
func availabilityState(session ClassSession, myBooking *booking.ClassBooking, remaining int) AvailabilityState {
	switch {
	case session.Cancelled:
		return StateCancelled
	case myBooking != nil && myBooking.Status != booking.StatusCancelled:
		return StateBooked
	case remaining <= 0:
		return StateFull
	case remaining <= fewLeftThreshold:
		return StateFewLeft
	default:
		return StateAvailable
	}
}

// AnnotateSessions computes availability for a batch, grouping the bookings
// by session first.
func AnnotateSessions(sessions []ClassSession, bookings []booking.ClassBooking, callerID *int) []SessionWithAvailability {
	bySession := make(map[int][]booking.ClassBooking, len(sessions))
	for _, b := range bookings {
		bySession[b.SessionID] = append(bySession[b.SessionID], b)
	}

	annotated := make([]SessionWithAvailability, 0, len(sessions))
	for _, s := range sessions {
		annotated = append(annotated, ComputeAvailability(s, bySession[s.ID], callerID))
	}

	return annotated
}
