package tracker

import (
	"sort"

	"github.com/garnizeh/salah/pkg/models"
)

// MaxLevel is the number of named prayers in a day.
const MaxLevel = len(models.Prayers)

type slot struct {
	person string
	date   string
	prayer models.Prayer
}

// latestPerSlot keeps one entry per (person, date, prayer): the last one
// appended. Input must be in append order within each slot; the result
// preserves the order of first appearance of each slot.
func latestPerSlot(entries []models.Entry) []models.Entry {
	idx := make(map[slot]int, len(entries))
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		k := slot{e.Person, e.Date, e.Prayer}
		if i, ok := idx[k]; ok {
			if e.Seq >= out[i].Seq {
				out[i] = e
			}
			continue
		}
		idx[k] = len(out)
		out = append(out, e)
	}
	return out
}

// HeatmapOf counts prayed slots per date for dates on or after since. Every
// date with at least one entry is present, possibly with zero.
func HeatmapOf(entries []models.Entry, since string) models.Heatmap {
	hm := models.Heatmap{}
	for _, e := range latestPerSlot(entries) {
		if e.Date < since {
			continue
		}
		if _, ok := hm[e.Date]; !ok {
			hm[e.Date] = 0
		}
		if e.Status == models.Prayed {
			hm[e.Date]++
		}
	}
	return hm
}

// LeaderboardOf totals statuses per person and ranks by prayed descending,
// then late ascending, then missed ascending, then person name.
func LeaderboardOf(entries []models.Entry) []models.LeaderboardRow {
	byPerson := map[string]*models.LeaderboardRow{}
	for _, e := range latestPerSlot(entries) {
		row, ok := byPerson[e.Person]
		if !ok {
			row = &models.LeaderboardRow{Person: e.Person}
			byPerson[e.Person] = row
		}
		switch e.Status {
		case models.Prayed:
			row.Prayed++
		case models.Late:
			row.Late++
		case models.Missed:
			row.Missed++
		}
	}

	out := make([]models.LeaderboardRow, 0, len(byPerson))
	for _, row := range byPerson {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return ranksBefore(out[i], out[j]) })
	return out
}

func ranksBefore(a, b models.LeaderboardRow) bool {
	if a.Prayed != b.Prayed {
		return a.Prayed > b.Prayed
	}
	if a.Late != b.Late {
		return a.Late < b.Late
	}
	if a.Missed != b.Missed {
		return a.Missed < b.Missed
	}
	return a.Person < b.Person
}

// DayStatusOf maps each prayer recorded on date to its latest status.
func DayStatusOf(entries []models.Entry, date string) map[models.Prayer]models.Status {
	out := map[models.Prayer]models.Status{}
	for _, e := range latestPerSlot(entries) {
		if e.Date == date {
			out[e.Prayer] = e.Status
		}
	}
	return out
}

// ClampLevel bounds a heatmap count to the 0..MaxLevel colour scale.
func ClampLevel(count int) int {
	return max(0, min(count, MaxLevel))
}
