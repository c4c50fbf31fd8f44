package class

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterOptions are the user-selected facets. The zero value and "all" both
// mean "no restriction" for every facet.
type FilterOptions struct {
	Search        string `form:"search"`
	Level         string `form:"level"`
	TrainerID     string `form:"trainer_id"`
	Weekday       string `form:"weekday"`
	TimeBand      string `form:"time_band"`
	DurationBand  string `form:"duration_band"`
	Kind          string `form:"kind"`
	OnlyAvailable bool   `form:"only_available"`
}

type SortMode string

const (
	SortPopular       SortMode = "popular"
	SortClosest       SortMode = "closest"
	SortLeastOccupied SortMode = "least_occupied"
	SortRecommended   SortMode = "recommended"
)

func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortPopular, SortClosest, SortLeastOccupied, SortRecommended:
		return SortMode(s)
	default:
		return SortClosest
	}
}

func pass(filter string) bool {
	return filter == "" || filter == "all"
}

// FilterSessions keeps the sessions matching every facet. Pure and
// order-independent: the predicates have no hidden state.
func FilterSessions(sessions []SessionWithAvailability, opts FilterOptions) []SessionWithAvailability {
	out := make([]SessionWithAvailability, 0, len(sessions))
	for _, s := range sessions {
		if matchSession(s, opts) {
			out = append(out, s)
		}
	}
	return out
}

func matchSession(s SessionWithAvailability, opts FilterOptions) bool {
	title, description, level := "", "", ""
	var trainerID *int
	durationMin := int(s.EndTime.Sub(s.StartTime).Minutes())
	if s.Class != nil {
		title = s.Class.Title
		description = s.Class.Description
		level = s.Class.Level
		trainerID = s.Class.TrainerID
		durationMin = s.Class.DurationMin
	}

	if !matchSearch(opts.Search, title, description) {
		return false
	}
	if !pass(opts.Level) && opts.Level != level {
		return false
	}
	if !matchTrainer(opts.TrainerID, trainerID) {
		return false
	}
	if !matchWeekday(opts.Weekday, int(s.StartTime.Weekday())) {
		return false
	}
	if !matchTimeBand(opts.TimeBand, s.StartTime.Hour()) {
		return false
	}
	if !matchDurationBand(opts.DurationBand, durationMin) {
		return false
	}
	if !pass(opts.Kind) && Kind(opts.Kind) != InferKind(title, description) {
		return false
	}
	if opts.OnlyAvailable && s.State != StateAvailable && s.State != StateFewLeft {
		return false
	}

	return true
}

// FilterClasses applies the same facets at the class level, evaluating the
// time-based facets against the embedded next session. A class with no
// upcoming session fails any facet that needs one.
func FilterClasses(items []ClassSummary, opts FilterOptions) []ClassSummary {
	out := make([]ClassSummary, 0, len(items))
	for _, item := range items {
		if matchClass(item, opts) {
			out = append(out, item)
		}
	}
	return out
}

func matchClass(item ClassSummary, opts FilterOptions) bool {
	c := item.Class

	if !matchSearch(opts.Search, c.Title, c.Description) {
		return false
	}
	if !pass(opts.Level) && opts.Level != c.Level {
		return false
	}
	if !matchTrainer(opts.TrainerID, c.TrainerID) {
		return false
	}
	if !matchDurationBand(opts.DurationBand, c.DurationMin) {
		return false
	}
	if !pass(opts.Kind) && Kind(opts.Kind) != InferKind(c.Title, c.Description) {
		return false
	}

	next := item.NextSession
	if !pass(opts.Weekday) {
		if next == nil || !matchWeekday(opts.Weekday, int(next.StartTime.Weekday())) {
			return false
		}
	}
	if !pass(opts.TimeBand) {
		if next == nil || !matchTimeBand(opts.TimeBand, next.StartTime.Hour()) {
			return false
		}
	}
	if opts.OnlyAvailable {
		if next == nil || (next.State != StateAvailable && next.State != StateFewLeft) {
			return false
		}
	}

	return true
}

func matchSearch(search, title, description string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(title), needle) ||
		strings.Contains(strings.ToLower(description), needle)
}

func matchTrainer(filter string, trainerID *int) bool {
	if pass(filter) {
		return true
	}
	if trainerID == nil {
		return false
	}
	return filter == strconv.Itoa(*trainerID)
}

func matchWeekday(filter string, weekday int) bool {
	if pass(filter) {
		return true
	}
	want, err := strconv.Atoi(filter)
	if err != nil {
		return true
	}
	return want == weekday
}

// Time bands by start hour: morning [6,12), afternoon [12,18), evening
// wraps past midnight, [18,24) plus [0,6).
func matchTimeBand(band string, hour int) bool {
	switch band {
	case "morning":
		return hour >= 6 && hour < 12
	case "afternoon":
		return hour >= 12 && hour < 18
	case "evening":
		return hour >= 18 || hour < 6
	default:
		return true
	}
}

// Duration bands in minutes: short < 40, medium 40-60 inclusive, long > 60.
func matchDurationBand(band string, minutes int) bool {
	switch band {
	case "short":
		return minutes < 40
	case "medium":
		return minutes >= 40 && minutes <= 60
	case "long":
		return minutes > 60
	default:
		return true
	}
}

func newTitleCollator() *collate.Collator {
	return collate.New(language.Spanish, collate.IgnoreCase)
}

// SortSessions orders sessions by the mode's score, descending, with ties
// broken by locale-aware title comparison. demand is keyed by class id.
func SortSessions(sessions []SessionWithAvailability, mode SortMode, demand map[int]DemandSignal) {
	coll := newTitleCollator()
	sort.SliceStable(sessions, func(i, j int) bool {
		si := sessionScore(sessions[i], mode, demand)
		sj := sessionScore(sessions[j], mode, demand)
		if si != sj {
			return si > sj
		}
		return coll.CompareString(sessionTitle(sessions[i]), sessionTitle(sessions[j])) < 0
	})
}

func sessionTitle(s SessionWithAvailability) string {
	if s.Class != nil {
		return s.Class.Title
	}
	return ""
}

func sessionScore(s SessionWithAvailability, mode SortMode, demand map[int]DemandSignal) float64 {
	d := demand[s.ClassID]
	booked := s.MyBooking != nil && s.MyBooking.Status != "cancelled"

	switch mode {
	case SortPopular:
		return popularScore(d)
	case SortLeastOccupied:
		return -s.OccupancyRatio
	case SortRecommended:
		score := float64(d.RecentBookings) - s.OccupancyRatio*2
		if booked {
			score += 8
		}
		if d.Trend == TrendUp {
			score += 3
		}
		return score
	default: // SortClosest: earlier start wins
		return -float64(s.StartTime.Unix())
	}
}

// SortClasses orders class summaries the same way, scoring against the
// embedded next session.
func SortClasses(items []ClassSummary, mode SortMode) {
	coll := newTitleCollator()
	sort.SliceStable(items, func(i, j int) bool {
		si := ScoreClass(items[i], mode)
		sj := ScoreClass(items[j], mode)
		if si != sj {
			return si > sj
		}
		return coll.CompareString(items[i].Class.Title, items[j].Class.Title) < 0
	})
}

// ScoreClass is the single scoring function per mode; the recommender
// reuses the recommended-mode score for its popularity fallback.
func ScoreClass(item ClassSummary, mode SortMode) float64 {
	switch mode {
	case SortPopular:
		return popularScore(item.Demand)
	case SortLeastOccupied:
		if item.NextSession == nil {
			return -1
		}
		return -item.NextSession.OccupancyRatio
	case SortRecommended:
		score := float64(item.Demand.RecentBookings)
		if item.HasMyBooking {
			score += 8
		}
		if item.Demand.Trend == TrendUp {
			score += 3
		}
		if item.NextSession != nil {
			score -= item.NextSession.OccupancyRatio * 2
		}
		return score
	default: // SortClosest
		if item.NextSession == nil {
			return -float64(1 << 62)
		}
		return -float64(item.NextSession.StartTime.Unix())
	}
}

func popularScore(d DemandSignal) float64 {
	score := float64(d.RecentBookings) * 10
	if d.Trend == TrendUp {
		score += 3
	}
	return score
}
