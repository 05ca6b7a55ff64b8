package api

import (
	"net/http"

	"github.com/garnizeh/salah/internal/tracker"
	"github.com/garnizeh/salah/pkg/models"
)

type EntriesHandler struct {
	svc     *tracker.Service
	schemas bodySchemas
}

func NewEntriesHandler(svc *tracker.Service, schemas bodySchemas) *EntriesHandler {
	return &EntriesHandler{svc: svc, schemas: schemas}
}

type addEntryRequest struct {
	Room   string        `json:"room"`
	Person string        `json:"person"`
	Date   string        `json:"date"`
	Prayer models.Prayer `json:"prayer"`
	Status models.Status `json:"status"`
}

func (h *EntriesHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if !h.schemas.decode(r.Context(), w, r, "entry", &req) {
		return
	}

	e, err := h.svc.AddEntry(r.Context(), tracker.EntryInput{
		Room:   req.Room,
		Person: req.Person,
		Date:   req.Date,
		Prayer: req.Prayer,
		Status: req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, e, http.StatusCreated)
}

// History lists a person's entries ascending by date (?room=&person=&since=).
func (h *EntriesHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.svc.History(r.Context(), q.Get("room"), q.Get("person"), q.Get("since"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, entries, http.StatusOK)
}

// DayStatus returns prayer -> latest status for one person and date.
func (h *EntriesHandler) DayStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := h.svc.DayStatus(r.Context(), q.Get("room"), q.Get("person"), q.Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, http.StatusOK)
}
