package availability

import (
	"reflect"
	"testing"
)

func TestMergeAdjacent(t *testing.T) {
	t.Run("should merge back-to-back slots into maximal windows", func(t *testing.T) {
		slots := []Slot{
			albanySlot("09:00", "10:00", Available),
			albanySlot("10:00", "11:00", Available),
			albanySlot("11:30", "12:00", Available),
		}
		got := MergeAdjacent(slots)
		want := []Slot{
			albanySlot("09:00", "11:00", Available),
			albanySlot("11:30", "12:00", Available),
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("merge = %+v, want %+v", got, want)
		}
	})

	t.Run("should not merge across a gap, even a small one", func(t *testing.T) {
		slots := []Slot{
			albanySlot("09:00", "10:00", Available),
			albanySlot("10:05", "11:00", Available),
		}
		got := MergeAdjacent(slots)
		if len(got) != 2 {
			t.Fatalf("a 5-minute gap must keep windows apart: %+v", got)
		}
	})

	t.Run("should require exact boundary equality", func(t *testing.T) {
		// Half-open convention: 09:59 and 10:00 do not touch.
		slots := []Slot{
			albanySlot("09:00", "09:59", Available),
			albanySlot("10:00", "11:00", Available),
		}
		if got := MergeAdjacent(slots); len(got) != 2 {
			t.Fatalf("misaligned boundaries must not merge: %+v", got)
		}
	})

	t.Run("should tolerate unsorted input", func(t *testing.T) {
		slots := []Slot{
			albanySlot("10:00", "11:00", Available),
			albanySlot("09:00", "10:00", Available),
		}
		got := MergeAdjacent(slots)
		want := []Slot{albanySlot("09:00", "11:00", Available)}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("merge = %+v, want %+v", got, want)
		}
	})

	t.Run("should absorb duplicate slots without corrupting output", func(t *testing.T) {
		cases := [][]Slot{
			{
				albanySlot("09:00", "10:00", Available),
				albanySlot("09:00", "10:00", Available),
				albanySlot("10:00", "11:00", Available),
			},
			{
				albanySlot("09:00", "10:00", Available),
				albanySlot("10:00", "11:00", Available),
				albanySlot("10:00", "11:00", Available),
			},
		}
		want := []Slot{albanySlot("09:00", "11:00", Available)}
		for _, slots := range cases {
			if got := MergeAdjacent(slots); !reflect.DeepEqual(got, want) {
				t.Fatalf("duplicates should collapse into one window, got %+v", got)
			}
		}
	})

	t.Run("should be idempotent", func(t *testing.T) {
		slots := []Slot{
			albanySlot("09:00", "09:30", Available),
			albanySlot("09:30", "10:00", Available),
			albanySlot("11:00", "11:30", Available),
		}
		once := MergeAdjacent(slots)
		twice := MergeAdjacent(once)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("re-merging merged output must be a no-op: %+v vs %+v", once, twice)
		}
	})

	t.Run("should keep courts separate", func(t *testing.T) {
		other := albanySlot("10:00", "11:00", Available)
		other.CourtName = "Tennis Court 2"
		slots := []Slot{
			albanySlot("09:00", "10:00", Available),
			other,
		}
		got := MergeAdjacent(slots)
		if len(got) != 2 {
			t.Fatalf("different courts must not merge: %+v", got)
		}
	})

	t.Run("should skip anything not marked available", func(t *testing.T) {
		slots := []Slot{albanySlot("09:00", "10:00", Unavailable)}
		if got := MergeAdjacent(slots); len(got) != 0 {
			t.Fatalf("unavailable slots must not appear in merge output: %+v", got)
		}
	})

	t.Run("should carry the group's labels onto merged windows", func(t *testing.T) {
		slots := []Slot{
			albanySlot("09:00", "10:00", Available),
			albanySlot("10:00", "11:00", Available),
		}
		got := MergeAdjacent(slots)
		if len(got) != 1 {
			t.Fatalf("expected one merged window: %+v", got)
		}
		m := got[0]
		if m.Date != "06/21/2025" || m.CityName != "Albany" || m.ParkName != "Memorial Park" ||
			m.CourtName != "Tennis Court 1" || m.Availability != Available {
			t.Fatalf("merged window lost its labels: %+v", m)
		}
	})
}
