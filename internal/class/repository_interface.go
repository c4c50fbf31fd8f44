package class

import (
	"context"
	"time"
)

type Repository interface {
	ListClasses(ctx context.Context, activeOnly bool) ([]GymClass, error)
	GetClassBySlug(ctx context.Context, slug string) (*GymClass, error)
	GetClassByID(ctx context.Context, id int) (*GymClass, error)
	CreateClass(ctx context.Context, req CreateClassRequest) (*GymClass, error)
	UpdateClass(ctx context.Context, id int, req UpdateClassRequest) (*GymClass, error)
	SetClassActive(ctx context.Context, id int, active bool) error
	CreateSession(ctx context.Context, classID int, start, end time.Time, capacityOverride *int) (*ClassSession, error)
	CancelSession(ctx context.Context, sessionID int) error
	ListSessions(ctx context.Context, from, to time.Time, classID *int) ([]ClassSession, error)
	DemandSignals(ctx context.Context) (map[int]DemandSignal, error)
	TrainerProfile(ctx context.Context, trainerID int) (*TrainerProfile, error)
	TrainersByIDs(ctx context.Context, ids []int) (map[int]Trainer, error)
}
