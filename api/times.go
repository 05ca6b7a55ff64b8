package api

import (
	"net/http"
	"time"

	"github.com/garnizeh/salah/internal/prayertime"
)

type TimesHandler struct {
	calc *prayertime.Calculator
	now  func() time.Time
}

// NewTimesHandler serves schedules from calc. A nil now uses time.Now.
func NewTimesHandler(calc *prayertime.Calculator, now func() time.Time) *TimesHandler {
	if now == nil {
		now = time.Now
	}
	return &TimesHandler{calc: calc, now: now}
}

type instantResponse struct {
	Label     string    `json:"label"`
	At        time.Time `json:"at"`
	Formatted string    `json:"formatted"`
}

type dailyTimesResponse struct {
	Date     string            `json:"date"`
	Timezone string            `json:"timezone"`
	Times    []instantResponse `json:"times"`
}

type nextPrayerResponse struct {
	instantResponse
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// DailyTimes returns the six instants for ?date=yyyy-mm-dd, or for today in
// the configured zone when date is absent.
func (h *TimesHandler) DailyTimes(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, h.calc.Zone())
		if err != nil {
			writeBadRequest(w, "date must be yyyy-mm-dd")
			return
		}
		day = d
	}

	times := h.calc.DailyTimes(day)
	resp := dailyTimesResponse{Date: times.Date, Timezone: h.calc.Zone().String()}
	for _, in := range times.Ordered() {
		resp.Times = append(resp.Times, instantResponse{Label: in.Label, At: in.At, Formatted: h.calc.Format(in.At)})
	}
	writeJSON(w, resp, http.StatusOK)
}

func (h *TimesHandler) NextPrayer(w http.ResponseWriter, r *http.Request) {
	next := h.calc.NextPrayer(h.now())
	writeJSON(w, nextPrayerResponse{
		instantResponse:  instantResponse{Label: next.Label, At: next.At, Formatted: h.calc.Format(next.At)},
		RemainingSeconds: next.Remaining.Seconds(),
	}, http.StatusOK)
}
