package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/garnizeh/salah/pkg/models"
)

// Store is an in-memory RoomRepo, MemberRepo and EntryRepo for tests.
// Setting an Err field makes the matching call fail.
type Store struct {
	mu sync.Mutex

	Rooms   map[string]models.Room
	Members []models.Member
	Entries []models.Entry

	CreateErr error
	GetErr    error
	UpsertErr error
	ListErr   error
	AppendErr error

	seq int64
}

func NewStore() *Store {
	return &Store{Rooms: map[string]models.Room{}}
}

func (s *Store) CreateRoom(ctx context.Context, r *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.Rooms[r.Code]; !ok {
		s.Rooms[r.Code] = *r
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	r, ok := s.Rooms[code]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Store) DeleteRoom(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Rooms, code)

	members := s.Members[:0]
	for _, m := range s.Members {
		if m.RoomCode != code {
			members = append(members, m)
		}
	}
	s.Members = members

	entries := s.Entries[:0]
	for _, e := range s.Entries {
		if e.RoomCode != code {
			entries = append(entries, e)
		}
	}
	s.Entries = entries
	return nil
}

func (s *Store) UpsertMember(ctx context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	for _, existing := range s.Members {
		if existing.RoomCode == m.RoomCode && existing.Person == m.Person {
			return nil
		}
	}
	s.seq++
	if m.ID == "" {
		m.ID = fmt.Sprintf("m%d", s.seq)
	}
	s.Members = append(s.Members, *m)
	return nil
}

// ListMembers returns raw rows, duplicates included, in insertion order.
func (s *Store) ListMembers(ctx context.Context, roomCode string) ([]models.MemberRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := []models.MemberRef{}
	for _, m := range s.Members {
		if m.RoomCode == roomCode {
			out = append(out, models.MemberRef{ID: m.ID, Person: m.Person})
		}
	}
	return out, nil
}

func (s *Store) AppendEntry(ctx context.Context, e *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.seq++
	e.Seq = s.seq
	s.Entries = append(s.Entries, *e)
	return nil
}

func (s *Store) ListEntries(ctx context.Context, roomCode, person, since string) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []models.Entry
	for _, e := range s.Entries {
		if e.RoomCode == roomCode && e.Person == person && (since == "" || e.Date >= since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Store) ListRoomEntries(ctx context.Context, roomCode string) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []models.Entry
	for _, e := range s.Entries {
		if e.RoomCode == roomCode {
			out = append(out, e)
		}
	}
	return out, nil
}
