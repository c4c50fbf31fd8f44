package class

type DemandTrend string

const (
	TrendUp     DemandTrend = "up"
	TrendDown   DemandTrend = "down"
	TrendSteady DemandTrend = "steady"
)

// DemandSignal compares bookings in the recent window against the window
// before it. Derived on every fetch, never persisted.
type DemandSignal struct {
	ClassID          int         `json:"class_id"`
	RecentBookings   int         `json:"recent_bookings"`
	PreviousBookings int         `json:"previous_bookings"`
	Trend            DemandTrend `json:"trend"`
	Label            string      `json:"label"`
}

// demandRow is the aggregate shape produced by the FILTER query.
type demandRow struct {
	ClassID  int `db:"class_id"`
	Recent   int `db:"recent"`
	Previous int `db:"previous"`
}

// BuildDemandSignal classifies the trend with a 20% tolerance band so small
// week-to-week wobble reads as steady.
func BuildDemandSignal(classID, recent, previous int) DemandSignal {
	trend := TrendSteady
	switch {
	case previous == 0 && recent > 0:
		trend = TrendUp
	case float64(recent) > float64(previous)*1.2:
		trend = TrendUp
	case float64(recent) < float64(previous)*0.8:
		trend = TrendDown
	}

	return DemandSignal{
		ClassID:          classID,
		RecentBookings:   recent,
		PreviousBookings: previous,
		Trend:            trend,
		Label:            demandLabel(trend, recent),
	}
}

func demandLabel(trend DemandTrend, recent int) string {
	switch {
	case trend == TrendUp:
		return "Trending up"
	case trend == TrendDown:
		return "Cooling down"
	case recent == 0:
		return "Quiet"
	default:
		return "Steady demand"
	}
}
