package tracker

import (
	"strings"
	"time"

	"github.com/garnizeh/salah/pkg/models"
)

// Epoch is the default lower bound for heatmap queries.
const Epoch = "1970-01-01"

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// validDate accepts calendar dates in yyyy-mm-dd form only. Round-tripping
// rejects forms time.Parse tolerates but that would not sort as text.
func validDate(field, v string) error {
	if err := required(field, v); err != nil {
		return err
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil || d.Format(time.DateOnly) != v {
		return invalid(field, "must be a yyyy-mm-dd date")
	}
	return nil
}

func validPrayer(v models.Prayer) error {
	if v == "" {
		return invalid("prayer", "is required")
	}
	if !v.Valid() {
		return invalid("prayer", "must be one of fajr, dhuhr, asr, maghrib, isha")
	}
	return nil
}

func validStatus(v models.Status) error {
	if v == "" {
		return invalid("status", "is required")
	}
	if !v.Valid() {
		return invalid("status", "must be one of prayed, late, missed")
	}
	return nil
}
