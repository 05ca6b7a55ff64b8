package models

// Domain models matching the database schema in db/migrations/<driver>/0001_init.sql

// Prayer names one of the five daily prayers.
type Prayer string

const (
	Fajr    Prayer = "fajr"
	Dhuhr   Prayer = "dhuhr"
	Asr     Prayer = "asr"
	Maghrib Prayer = "maghrib"
	Isha    Prayer = "isha"
)

// Prayers lists the five prayers in daily order. It is an array so its
// length is a constant.
var Prayers = [...]Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha}

func (p Prayer) Valid() bool {
	switch p {
	case Fajr, Dhuhr, Asr, Maghrib, Isha:
		return true
	}
	return false
}

// Status is the recorded outcome for a single prayer.
type Status string

const (
	Prayed Status = "prayed"
	Late   Status = "late"
	Missed Status = "missed"
)

func (s Status) Valid() bool {
	switch s {
	case Prayed, Late, Missed:
		return true
	}
	return false
}

type Room struct {
	Code    string `json:"code" db:"code"`
	Name    string `json:"name" db:"name"`
	Created int64  `json:"created" db:"created"`
}

type Member struct {
	ID       string `json:"id" db:"id"`
	RoomCode string `json:"room_code" db:"room_code"`
	Person   string `json:"person" db:"person"`
	Created  int64  `json:"created" db:"created"`
}

// MemberRef is the deduplicated member view returned by room listings.
type MemberRef struct {
	ID     string `json:"id"`
	Person string `json:"person"`
}

// Entry is one observation. Date is a civil yyyy-mm-dd date, never derived
// from Created.
type Entry struct {
	Seq      int64  `json:"-" db:"seq"`
	ID       string `json:"id" db:"id"`
	RoomCode string `json:"room_code" db:"room_code"`
	Person   string `json:"person" db:"person"`
	Date     string `json:"date" db:"date"`
	Prayer   Prayer `json:"prayer" db:"prayer"`
	Status   Status `json:"status" db:"status"`
	Created  int64  `json:"created" db:"created"`
}

// Heatmap maps a yyyy-mm-dd date to the number of prayers marked prayed.
type Heatmap map[string]int

// LeaderboardRow holds a person's all-time totals in a room.
type LeaderboardRow struct {
	Person string `json:"person"`
	Prayed int    `json:"prayed"`
	Late   int    `json:"late"`
	Missed int    `json:"missed"`
}
