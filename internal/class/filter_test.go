package class

import (
	"testing"
	"time"

	"classfit/internal/booking"

	"github.com/stretchr/testify/assert"
)

func sessionAt(id int, start time.Time, title string, state AvailabilityState) SessionWithAvailability {
	return SessionWithAvailability{
		ClassSession: ClassSession{
			ID:        id,
			ClassID:   id,
			StartTime: start,
			EndTime:   start.Add(45 * time.Minute),
			Class: &GymClass{
				ID:          id,
				Title:       title,
				Level:       LevelIntermediate,
				DurationMin: 45,
				Capacity:    10,
			},
		},
		State: state,
	}
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, SortPopular, ParseSortMode("popular"))
	assert.Equal(t, SortLeastOccupied, ParseSortMode("least_occupied"))
	assert.Equal(t, SortRecommended, ParseSortMode("recommended"))
	assert.Equal(t, SortClosest, ParseSortMode(""))
	assert.Equal(t, SortClosest, ParseSortMode("garbage"))
}

func TestFilterSessions_Search(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	sessions := []SessionWithAvailability{
		sessionAt(1, monday, "Yoga Flow", StateAvailable),
		sessionAt(2, monday, "HIIT Express", StateAvailable),
	}

	got := FilterSessions(sessions, FilterOptions{Search: "yoga"})
	assert.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	// Search also covers the description, case-insensitively.
	sessions[1].Class.Description = "Intense YOGA-inspired intervals"
	got = FilterSessions(sessions, FilterOptions{Search: "yoga"})
	assert.Len(t, got, 2)
}

func TestFilterSessions_Level(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	s1 := sessionAt(1, monday, "A", StateAvailable)
	s2 := sessionAt(2, monday, "B", StateAvailable)
	s2.Class.Level = LevelAdvanced

	got := FilterSessions([]SessionWithAvailability{s1, s2}, FilterOptions{Level: LevelAdvanced})
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)

	// "all" and empty both pass every level.
	got = FilterSessions([]SessionWithAvailability{s1, s2}, FilterOptions{Level: "all"})
	assert.Len(t, got, 2)
	got = FilterSessions([]SessionWithAvailability{s1, s2}, FilterOptions{})
	assert.Len(t, got, 2)
}

func TestFilterSessions_Trainer(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	s1 := sessionAt(1, monday, "A", StateAvailable)
	s1.Class.TrainerID = intPtr(42)
	s2 := sessionAt(2, monday, "B", StateAvailable)

	got := FilterSessions([]SessionWithAvailability{s1, s2}, FilterOptions{TrainerID: "42"})
	assert.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	// A class without a trainer never matches a trainer facet.
	got = FilterSessions([]SessionWithAvailability{s2}, FilterOptions{TrainerID: "42"})
	assert.Empty(t, got)
}

func TestFilterSessions_Weekday(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	sessions := []SessionWithAvailability{
		sessionAt(1, monday, "A", StateAvailable),
		sessionAt(2, tuesday, "B", StateAvailable),
	}

	got := FilterSessions(sessions, FilterOptions{Weekday: "1"})
	assert.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestFilterSessions_TimeBand(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	morning := sessionAt(1, day.Add(8*time.Hour), "A", StateAvailable)
	afternoon := sessionAt(2, day.Add(14*time.Hour), "B", StateAvailable)
	evening := sessionAt(3, day.Add(20*time.Hour), "C", StateAvailable)
	lateNight := sessionAt(4, day.Add(2*time.Hour), "D", StateAvailable)
	all := []SessionWithAvailability{morning, afternoon, evening, lateNight}

	assert.Len(t, FilterSessions(all, FilterOptions{TimeBand: "morning"}), 1)
	assert.Len(t, FilterSessions(all, FilterOptions{TimeBand: "afternoon"}), 1)
	// The evening band wraps past midnight.
	got := FilterSessions(all, FilterOptions{TimeBand: "evening"})
	assert.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 4, got[1].ID)
}

func TestFilterSessions_DurationBand(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	short := sessionAt(1, monday, "A", StateAvailable)
	short.Class.DurationMin = 30
	medium := sessionAt(2, monday, "B", StateAvailable)
	medium.Class.DurationMin = 60
	long := sessionAt(3, monday, "C", StateAvailable)
	long.Class.DurationMin = 90
	all := []SessionWithAvailability{short, medium, long}

	assert.Equal(t, 1, FilterSessions(all, FilterOptions{DurationBand: "short"})[0].ID)
	assert.Equal(t, 2, FilterSessions(all, FilterOptions{DurationBand: "medium"})[0].ID)
	assert.Equal(t, 3, FilterSessions(all, FilterOptions{DurationBand: "long"})[0].ID)
}

func TestFilterSessions_Kind(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	sessions := []SessionWithAvailability{
		sessionAt(1, monday, "Yoga Flow", StateAvailable),
		sessionAt(2, monday, "Spinning 45", StateAvailable),
		sessionAt(3, monday, "Powerlifting", StateAvailable),
	}

	assert.Equal(t, 1, FilterSessions(sessions, FilterOptions{Kind: "mobility"})[0].ID)
	assert.Equal(t, 2, FilterSessions(sessions, FilterOptions{Kind: "cardio"})[0].ID)
	assert.Equal(t, 3, FilterSessions(sessions, FilterOptions{Kind: "strength"})[0].ID)
}

func TestFilterSessions_OnlyAvailable(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	sessions := []SessionWithAvailability{
		sessionAt(1, monday, "A", StateAvailable),
		sessionAt(2, monday, "B", StateFewLeft),
		sessionAt(3, monday, "C", StateFull),
		sessionAt(4, monday, "D", StateBooked),
		sessionAt(5, monday, "E", StateCancelled),
	}

	got := FilterSessions(sessions, FilterOptions{OnlyAvailable: true})

	// few_left still counts as bookable; full, booked and cancelled do not.
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

func TestFilterSessions_FacetsCombineWithAND(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	s1 := sessionAt(1, monday, "Yoga Flow", StateAvailable)
	s2 := sessionAt(2, monday, "Yoga Advanced", StateFull)

	got := FilterSessions([]SessionWithAvailability{s1, s2},
		FilterOptions{Search: "yoga", OnlyAvailable: true})

	assert.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestFilterSessions_Idempotent(t *testing.T) {
	monday := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	sessions := []SessionWithAvailability{
		sessionAt(1, monday, "Yoga Flow", StateAvailable),
		sessionAt(2, monday, "HIIT", StateFull),
	}
	opts := FilterOptions{OnlyAvailable: true}

	once := FilterSessions(sessions, opts)
	twice := FilterSessions(once, opts)

	assert.Equal(t, once, twice)
}

func TestFilterClasses_TimeFacetsNeedNextSession(t *testing.T) {
	noNext := ClassSummary{Class: GymClass{ID: 1, Title: "A", Level: LevelIntermediate, DurationMin: 45}}
	next := sessionAt(2, time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), "B", StateAvailable)
	withNext := ClassSummary{
		Class:       *next.Class,
		NextSession: &next,
	}

	got := FilterClasses([]ClassSummary{noNext, withNext}, FilterOptions{Weekday: "1"})
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Class.ID)

	got = FilterClasses([]ClassSummary{noNext, withNext}, FilterOptions{OnlyAvailable: true})
	assert.Len(t, got, 1)

	// Non-temporal facets do not require a next session.
	got = FilterClasses([]ClassSummary{noNext, withNext}, FilterOptions{DurationBand: "medium"})
	assert.Len(t, got, 2)
}

func TestSortSessions_Closest(t *testing.T) {
	base := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	sessions := []SessionWithAvailability{
		sessionAt(1, base.Add(48*time.Hour), "Later", StateAvailable),
		sessionAt(2, base, "Sooner", StateAvailable),
	}

	SortSessions(sessions, SortClosest, nil)

	assert.Equal(t, 2, sessions[0].ID)
	assert.Equal(t, 1, sessions[1].ID)
}

func TestSortSessions_Popular(t *testing.T) {
	base := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	sessions := []SessionWithAvailability{
		sessionAt(1, base, "Quiet", StateAvailable),
		sessionAt(2, base, "Busy", StateAvailable),
	}
	demand := map[int]DemandSignal{
		1: BuildDemandSignal(1, 1, 1),
		2: BuildDemandSignal(2, 9, 2),
	}

	SortSessions(sessions, SortPopular, demand)

	assert.Equal(t, 2, sessions[0].ID)
}

func TestSortSessions_LeastOccupied(t *testing.T) {
	base := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	crowded := sessionAt(1, base, "Crowded", StateFewLeft)
	crowded.OccupancyRatio = 0.9
	empty := sessionAt(2, base, "Empty", StateAvailable)
	empty.OccupancyRatio = 0.1
	sessions := []SessionWithAvailability{crowded, empty}

	SortSessions(sessions, SortLeastOccupied, nil)

	assert.Equal(t, 2, sessions[0].ID)
}

func TestSortSessions_TiesBreakOnTitle(t *testing.T) {
	base := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	sessions := []SessionWithAvailability{
		sessionAt(1, base, "zumba", StateAvailable),
		sessionAt(2, base, "Águila", StateAvailable),
		sessionAt(3, base, "Boxeo", StateAvailable),
	}

	SortSessions(sessions, SortClosest, nil)

	// Locale-aware and case-insensitive: accented Á sorts with A.
	assert.Equal(t, "Águila", sessions[0].Class.Title)
	assert.Equal(t, "Boxeo", sessions[1].Class.Title)
	assert.Equal(t, "zumba", sessions[2].Class.Title)
}

func TestSortSessions_RecommendedPrefersOwnBookings(t *testing.T) {
	base := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	mine := sessionAt(1, base, "Mine", StateBooked)
	mine.MyBooking = &booking.ClassBooking{SessionID: 1, UserID: 9, Status: booking.StatusBooked}
	other := sessionAt(2, base, "Other", StateAvailable)
	sessions := []SessionWithAvailability{other, mine}

	SortSessions(sessions, SortRecommended, nil)

	assert.Equal(t, 1, sessions[0].ID)
}

func TestSortClasses_ClosestPutsClassesWithoutSessionsLast(t *testing.T) {
	next := sessionAt(1, time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), "A", StateAvailable)
	items := []ClassSummary{
		{Class: GymClass{ID: 2, Title: "No sessions"}},
		{Class: *next.Class, NextSession: &next},
	}

	SortClasses(items, SortClosest)

	assert.Equal(t, 1, items[0].Class.ID)
	assert.Equal(t, 2, items[1].Class.ID)
}

func TestScoreClass_Recommended(t *testing.T) {
	next := sessionAt(1, time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), "A", StateAvailable)
	next.OccupancyRatio = 0.5

	item := ClassSummary{
		Class:        *next.Class,
		NextSession:  &next,
		Demand:       BuildDemandSignal(1, 5, 1),
		HasMyBooking: true,
	}

	// 5 recent + 8 booked + 3 trend up - 0.5*2 occupancy
	assert.InDelta(t, 15.0, ScoreClass(item, SortRecommended), 1e-9)
}
