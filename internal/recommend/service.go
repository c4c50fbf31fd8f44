package recommend

import (
	"context"
	"fmt"
	"time"

	"classfit/internal/booking"
	"classfit/internal/class"
	"classfit/internal/metrics"
	"classfit/internal/user"
)

// maxResults mirrors the size of the recommendation strip in the clients.
const maxResults = 4

type Recommendation struct {
	Class            class.GymClass     `json:"class"`
	Score            float64            `json:"score"`
	NextSessionStart *time.Time         `json:"next_session_start,omitempty"`
	Demand           class.DemandSignal `json:"demand"`
}

type Response struct {
	Items []Recommendation `json:"items"`
	// FallbackToPopular tells the UI to disclose that no personal signal
	// was available and ranking is popularity only.
	FallbackToPopular bool    `json:"fallback_to_popular"`
	PreferredKind     *string `json:"preferred_kind,omitempty"`
	PreferredLevel    *string `json:"preferred_level,omitempty"`
}

type Service interface {
	Recommend(ctx context.Context, userID int) (*Response, error)
}

type service struct {
	classRepo   class.Repository
	bookingRepo booking.Repository
	userRepo    user.Repository
}

func NewService(classRepo class.Repository, bookingRepo booking.Repository, userRepo user.Repository) Service {
	return &service{
		classRepo:   classRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
	}
}

func (s *service) Recommend(ctx context.Context, userID int) (*Response, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	prefKind, prefLevel, err := s.preferenceContext(ctx, u)
	if err != nil {
		return nil, err
	}

	fallback := prefKind == nil && prefLevel == nil

	candidates, err := s.candidates(ctx, userID)
	if err != nil {
		return nil, err
	}

	scored := make([]Recommendation, 0, len(candidates))
	for _, item := range candidates {
		rec := Recommendation{
			Class:  item.Class,
			Score:  scoreCandidate(item, prefKind, prefLevel, fallback),
			Demand: item.Demand,
		}
		if item.NextSession != nil {
			start := item.NextSession.StartTime
			rec.NextSessionStart = &start
		}
		scored = append(scored, rec)
	}

	sortRecommendations(scored)
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	metrics.RecordRecommendation(fallback)

	return &Response{
		Items:             scored,
		FallbackToPopular: fallback,
		PreferredKind:     prefKind,
		PreferredLevel:    prefLevel,
	}, nil
}

// preferenceContext derives the implicit preference: explicit profile
// metadata first, else a majority vote over booking history, else nothing.
func (s *service) preferenceContext(ctx context.Context, u *user.User) (*string, *string, error) {
	prefKind := u.Goal
	prefLevel := u.PreferredLevel

	if prefKind != nil && prefLevel != nil {
		return prefKind, prefLevel, nil
	}

	history, err := s.bookingRepo.UserHistory(ctx, u.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load booking history: %w", err)
	}
	if len(history) == 0 {
		return prefKind, prefLevel, nil
	}

	if prefKind == nil {
		prefKind = majorityKind(history)
	}
	if prefLevel == nil {
		prefLevel = majorityLevel(history)
	}

	return prefKind, prefLevel, nil
}

// majorityKind votes over the inferred kind of each historical booking.
// Ties go to whichever kind the scan saw first.
func majorityKind(history []booking.HistoryRow) *string {
	counts := make(map[class.Kind]int)
	var winner class.Kind
	best := 0
	for _, row := range history {
		k := class.InferKind(row.ClassTitle, row.ClassDescription)
		counts[k]++
		if counts[k] > best {
			best = counts[k]
			winner = k
		}
	}
	if best == 0 {
		return nil
	}
	result := string(winner)
	return &result
}

func majorityLevel(history []booking.HistoryRow) *string {
	counts := make(map[string]int)
	var winner string
	best := 0
	for _, row := range history {
		if row.ClassLevel == "" || row.ClassLevel == class.LevelNone {
			continue
		}
		counts[row.ClassLevel]++
		if counts[row.ClassLevel] > best {
			best = counts[row.ClassLevel]
			winner = row.ClassLevel
		}
	}
	if best == 0 {
		return nil
	}
	return &winner
}

func (s *service) candidates(ctx context.Context, userID int) ([]class.ClassSummary, error) {
	classes, err := s.classRepo.ListClasses(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("could not load classes: %w", err)
	}

	now := time.Now()
	sessions, err := s.classRepo.ListSessions(ctx, now, now.Add(14*24*time.Hour), nil)
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

	demand, err := s.classRepo.DemandSignals(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load demand signals: %w", err)
	}

	booked, err := s.bookingRepo.UserBookedClassIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not load bookings: %w", err)
	}

	annotated := class.AnnotateSessions(sessions, bookings, &userID)
	return class.BuildSummaries(classes, annotated, demand, booked), nil
}

func scoreCandidate(item class.ClassSummary, prefKind, prefLevel *string, fallback bool) float64 {
	if fallback {
		// No personal signal: popularity-weighted ranking only.
		return class.ScoreClass(item, class.SortRecommended)
	}

	score := float64(item.Demand.RecentBookings)
	if item.HasMyBooking {
		score += 6
	}
	if prefLevel != nil && item.Class.Level == *prefLevel {
		score += 4
	}
	if prefKind != nil && string(class.InferKind(item.Class.Title, item.Class.Description)) == *prefKind {
		score += 4
	}
	if item.Demand.Trend == class.TrendUp {
		score += 2
	}
	return score
}
