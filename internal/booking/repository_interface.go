package booking

import "context"

type Repository interface {
	CallBook(ctx context.Context, userID, sessionID int) (*ProcedureResult, error)
	CallCancel(ctx context.Context, userID, sessionID int) (*ProcedureResult, error)
	SessionInfo(ctx context.Context, sessionID int) (*SessionInfo, error)
	ListForSessions(ctx context.Context, sessionIDs []int) ([]ClassBooking, error)
	ListUserBookings(ctx context.Context, userID int) ([]BookingWithDetails, error)
	UserHistory(ctx context.Context, userID int) ([]HistoryRow, error)
	UserBookedClassIDs(ctx context.Context, userID int) (map[int]bool, error)
}
