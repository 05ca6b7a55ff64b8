package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/salah/internal/tracker"
	"github.com/garnizeh/salah/pkg/models"
)

type RoomsHandler struct {
	svc     *tracker.Service
	schemas bodySchemas
}

func NewRoomsHandler(svc *tracker.Service, schemas bodySchemas) *RoomsHandler {
	return &RoomsHandler{svc: svc, schemas: schemas}
}

type createRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreateRoom creates the room or returns the existing one with the same code.
func (h *RoomsHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !h.schemas.decode(r.Context(), w, r, "room", &req) {
		return
	}

	room, err := h.svc.CreateRoom(r.Context(), req.Code, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, room, http.StatusOK)
}

func (h *RoomsHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	room, err := h.svc.GetRoom(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	if room == nil {
		writeJSON(w, errorBody{Error: "room not found"}, http.StatusNotFound)
		return
	}
	writeJSON(w, room, http.StatusOK)
}

func (h *RoomsHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRoom(r.Context(), mux.Vars(r)["code"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type joinRoomRequest struct {
	Person string `json:"person"`
}

func (h *RoomsHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if !h.schemas.decode(r.Context(), w, r, "member", &req) {
		return
	}

	code := mux.Vars(r)["code"]
	if err := h.svc.JoinRoom(r.Context(), code, req.Person); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"room": code, "person": req.Person}, http.StatusOK)
}

func (h *RoomsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListMembers(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, members, http.StatusOK)
}

// Heatmap returns person -> date -> prayed count for every member. The
// optional since query parameter defaults to the epoch.
func (h *RoomsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	hm, err := h.svc.RoomHeatmap(r.Context(), mux.Vars(r)["code"], r.URL.Query().Get("since"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, hm, http.StatusOK)
}

func (h *RoomsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Leaderboard(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []models.LeaderboardRow{}
	}
	writeJSON(w, rows, http.StatusOK)
}
