package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garnizeh/salah/pkg/models"
)

type entryLog struct {
	seq     int64
	entries []models.Entry
}

func (l *entryLog) add(person, date string, p models.Prayer, s models.Status) {
	l.seq++
	l.entries = append(l.entries, models.Entry{Seq: l.seq, RoomCode: "r", Person: person, Date: date, Prayer: p, Status: s})
}

func TestHeatmapOf_LatestWinsPerSlot(t *testing.T) {
	var l entryLog
	l.add("a", "2024-01-01", models.Fajr, models.Prayed)
	l.add("a", "2024-01-01", models.Fajr, models.Prayed) // duplicate mark does not inflate
	l.add("a", "2024-01-01", models.Dhuhr, models.Prayed)
	l.add("a", "2024-01-01", models.Dhuhr, models.Missed) // overwritten
	l.add("a", "2024-01-02", models.Asr, models.Late)

	hm := HeatmapOf(l.entries, Epoch)
	assert.Equal(t, models.Heatmap{"2024-01-01": 1, "2024-01-02": 0}, hm)
}

func TestHeatmapOf_NeverExceedsFive(t *testing.T) {
	var l entryLog
	for range 3 {
		for _, p := range models.Prayers {
			l.add("a", "2024-01-01", p, models.Prayed)
		}
	}
	assert.Equal(t, 5, HeatmapOf(l.entries, Epoch)["2024-01-01"])
}

func TestHeatmapOf_SinceBoundary(t *testing.T) {
	var l entryLog
	l.add("a", "2024-01-01", models.Fajr, models.Prayed)
	l.add("a", "2024-01-05", models.Fajr, models.Prayed)

	assert.Len(t, HeatmapOf(l.entries, Epoch), 2)
	assert.Equal(t, models.Heatmap{"2024-01-05": 1}, HeatmapOf(l.entries, "2024-01-05"), "since is inclusive")
	assert.Empty(t, HeatmapOf(l.entries, "2024-01-06"))
	assert.NotNil(t, HeatmapOf(nil, Epoch))
}

func TestHeatmapOf_OrderIndependent(t *testing.T) {
	var l entryLog
	l.add("a", "2024-01-02", models.Fajr, models.Prayed)
	l.add("a", "2024-01-01", models.Isha, models.Prayed)
	l.add("a", "2024-01-01", models.Isha, models.Late)
	l.add("a", "2024-01-03", models.Asr, models.Prayed)

	want := HeatmapOf(l.entries, Epoch)

	reversed := make([]models.Entry, len(l.entries))
	for i, e := range l.entries {
		reversed[len(l.entries)-1-i] = e
	}
	assert.Equal(t, want, HeatmapOf(reversed, Epoch), "seq, not slice position, decides the latest row")
	assert.Equal(t, want, HeatmapOf(l.entries, Epoch))
}

func TestLeaderboardOf_TieBreakChain(t *testing.T) {
	var l entryLog
	// carol: 2 prayed 0 late 1 missed
	l.add("carol", "d1", models.Fajr, models.Prayed)
	l.add("carol", "d1", models.Dhuhr, models.Prayed)
	l.add("carol", "d1", models.Asr, models.Missed)
	// bob: 2 prayed 0 late 0 missed
	l.add("bob", "d1", models.Fajr, models.Prayed)
	l.add("bob", "d1", models.Dhuhr, models.Prayed)
	// dave: 2 prayed 1 late 0 missed
	l.add("dave", "d1", models.Fajr, models.Prayed)
	l.add("dave", "d1", models.Dhuhr, models.Prayed)
	l.add("dave", "d1", models.Asr, models.Late)
	// alice: 3 prayed 2 late 2 missed
	l.add("alice", "d1", models.Fajr, models.Prayed)
	l.add("alice", "d1", models.Dhuhr, models.Prayed)
	l.add("alice", "d1", models.Asr, models.Prayed)
	l.add("alice", "d2", models.Fajr, models.Late)
	l.add("alice", "d2", models.Dhuhr, models.Late)
	l.add("alice", "d2", models.Asr, models.Missed)
	l.add("alice", "d2", models.Isha, models.Missed)
	// erin ties bob exactly; name decides
	l.add("erin", "d1", models.Fajr, models.Prayed)
	l.add("erin", "d1", models.Maghrib, models.Prayed)

	got := LeaderboardOf(l.entries)
	want := []models.LeaderboardRow{
		{Person: "alice", Prayed: 3, Late: 2, Missed: 2},
		{Person: "bob", Prayed: 2, Late: 0, Missed: 0},
		{Person: "erin", Prayed: 2, Late: 0, Missed: 0},
		{Person: "carol", Prayed: 2, Late: 0, Missed: 1},
		{Person: "dave", Prayed: 2, Late: 1, Missed: 0},
	}
	require.Equal(t, want, got)

	for i := 1; i < len(got); i++ {
		a, b := got[i-1], got[i]
		ok := a.Prayed > b.Prayed ||
			(a.Prayed == b.Prayed && a.Late < b.Late) ||
			(a.Prayed == b.Prayed && a.Late == b.Late && a.Missed <= b.Missed)
		assert.True(t, ok, "%v ranked before %v", a, b)
	}
}

func TestLeaderboardOf_CountsLatestOnly(t *testing.T) {
	var l entryLog
	l.add("a", "2024-01-01", models.Fajr, models.Missed)
	l.add("a", "2024-01-01", models.Fajr, models.Prayed)
	l.add("a", "2024-01-01", models.Fajr, models.Prayed)

	assert.Equal(t, []models.LeaderboardRow{{Person: "a", Prayed: 1}}, LeaderboardOf(l.entries))
	assert.Empty(t, LeaderboardOf(nil))
	assert.NotNil(t, LeaderboardOf(nil))
}

func TestDayStatusOf(t *testing.T) {
	var l entryLog
	l.add("a", "2024-01-01", models.Fajr, models.Late)
	l.add("a", "2024-01-01", models.Fajr, models.Prayed)
	l.add("a", "2024-01-01", models.Isha, models.Missed)
	l.add("a", "2024-01-02", models.Asr, models.Prayed)

	got := DayStatusOf(l.entries, "2024-01-01")
	assert.Equal(t, map[models.Prayer]models.Status{models.Fajr: models.Prayed, models.Isha: models.Missed}, got)
	assert.Empty(t, DayStatusOf(l.entries, "2024-02-01"))
}

func TestClampLevel(t *testing.T) {
	for in, want := range map[int]int{-3: 0, 0: 0, 3: 3, 5: 5, 9: 5} {
		assert.Equal(t, want, ClampLevel(in), "ClampLevel(%d)", in)
	}
}

func TestMaxLevel_OnePerPrayer(t *testing.T) {
	assert.Equal(t, 5, MaxLevel)
	assert.Equal(t, len(models.Prayers), MaxLevel)
}
