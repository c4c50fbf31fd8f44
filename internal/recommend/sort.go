package recommend

import "sort"

// sortRecommendations orders by score descending; ties break by ascending
// next-session start, with classes that have no upcoming session last.
func sortRecommendations(items []Recommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}

		si, sj := items[i].NextSessionStart, items[j].NextSessionStart
		switch {
		case si == nil && sj == nil:
			return false
		case si == nil:
			return false
		case sj == nil:
			return true
		default:
			return si.Before(*sj)
		}
	})
}
