package availability

import "sort"

type groupKey struct {
	date  string
	city  string
	park  string
	court string
}

type interval struct {
	start string
	end   string
}

// MergeAdjacent collapses back-to-back Available slots for the same
// (date, city, park, court) into the fewest maximal windows. Boundaries
// must match exactly: a slot starting 10:00 extends one ending 10:00, while
// even a one-minute gap keeps the windows apart. Duplicate slots from the
// source are absorbed. Running the merge on its own output is a no-op.
//
// Canonical HH:MM strings are zero-padded, so lexical order is
// time-of-day order.
func MergeAdjacent(slots []Slot) []Slot {
	grouped := make(map[groupKey][]interval)
	var order []groupKey // map iteration is randomized; keep discovery order

	for _, s := range slots {
		if s.Availability != Available {
			continue
		}
		k := groupKey{s.Date, s.CityName, s.ParkName, s.CourtName}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], interval{s.StartTime, s.EndTime})
	}

	var merged []Slot
	for _, k := range order {
		for _, iv := range mergeIntervals(grouped[k]) {
			merged = append(merged, Slot{
				Date:         k.date,
				CityName:     k.city,
				ParkName:     k.park,
				CourtName:    k.court,
				StartTime:    iv.start,
				EndTime:      iv.end,
				Availability: Available,
			})
		}
	}
	return merged
}

func mergeIntervals(intervals []interval) []interval {
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].start != intervals[j].start {
			return intervals[i].start < intervals[j].start
		}
		return intervals[i].end < intervals[j].end
	})

	// Drop exact duplicates up front; the source does not guarantee
	// uniqueness and a repeated pair must not split or duplicate a window.
	uniq := intervals[:1]
	for _, iv := range intervals[1:] {
		if iv != uniq[len(uniq)-1] {
			uniq = append(uniq, iv)
		}
	}

	var out []interval
	cur := uniq[0]
	for _, iv := range uniq[1:] {
		if iv.start == cur.end {
			cur.end = iv.end
			continue
		}
		out = append(out, cur)
		cur = iv
	}
	return append(out, cur)
}
