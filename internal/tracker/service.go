// Package tracker is the room, membership and entry engine: it validates
// requests, writes through the repositories and derives heatmaps and
// leaderboards from the entry log on every call.
package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/garnizeh/salah/pkg/models"
	"github.com/garnizeh/salah/pkg/repository"
)

type Service struct {
	rooms        repository.RoomRepo
	members      repository.MemberRepo
	entries      repository.EntryRepo
	logger       *slog.Logger
	storeTimeout time.Duration
}

type Option func(*Service)

// WithLogger sets the service logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStoreTimeout bounds every repository call. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

func NewService(rr repository.RoomRepo, mr repository.MemberRepo, er repository.EntryRepo, opts ...Option) *Service {
	s := &Service{
		rooms:   rr,
		members: mr,
		entries: er,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *Service) fail(op string, err error) error {
	s.logger.Error("store call failed", slog.String("op", op), slog.Any("err", err))
	return storeErr(op, err)
}

// CreateRoom creates the room or reuses an existing one with the same code.
// The stored room is returned, so a reused room keeps its original name.
func (s *Service) CreateRoom(ctx context.Context, code, name string) (*models.Room, error) {
	if err := required("code", code); err != nil {
		return nil, err
	}
	if err := required("name", name); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rooms.CreateRoom(ctx, &models.Room{Code: code, Name: name}); err != nil {
		return nil, s.fail("create room", err)
	}
	room, err := s.rooms.GetRoom(ctx, code)
	if err != nil {
		return nil, s.fail("get room", err)
	}
	if room == nil {
		// deleted between the insert and the read
		return nil, notFound("room", code)
	}

	s.logger.Debug("room ready", slog.String("room", code))
	return room, nil
}

// GetRoom returns nil without error when the room does not exist.
func (s *Service) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	if err := required("code", code); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	room, err := s.rooms.GetRoom(ctx, code)
	if err != nil {
		return nil, s.fail("get room", err)
	}
	return room, nil
}

// DeleteRoom removes a room together with its members and entries.
func (s *Service) DeleteRoom(ctx context.Context, code string) error {
	if _, err := s.requireRoom(ctx, code); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rooms.DeleteRoom(ctx, code); err != nil {
		return s.fail("delete room", err)
	}
	s.logger.Debug("room deleted", slog.String("room", code))
	return nil
}

func (s *Service) requireRoom(ctx context.Context, code string) (*models.Room, error) {
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, notFound("room", code)
	}
	return room, nil
}

// JoinRoom records membership of person in room. Joining again is a no-op.
func (s *Service) JoinRoom(ctx context.Context, code, person string) error {
	if err := required("room", code); err != nil {
		return err
	}
	if err := required("person", person); err != nil {
		return err
	}
	if _, err := s.requireRoom(ctx, code); err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.members.UpsertMember(ctx, &models.Member{RoomCode: code, Person: person}); err != nil {
		if errors.Is(err, repository.ErrRoomMissing) {
			// deleted after the existence check
			return notFound("room", code)
		}
		return s.fail("join room", err)
	}
	s.logger.Debug("member joined", slog.String("room", code), slog.String("person", person))
	return nil
}

// ListMembers returns one reference per person, sorted by person.
func (s *Service) ListMembers(ctx context.Context, code string) ([]models.MemberRef, error) {
	if err := required("room", code); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	members, err := s.members.ListMembers(ctx, code)
	if err != nil {
		return nil, s.fail("list members", err)
	}
	return dedupeMembers(members), nil
}

// dedupeMembers guarantees the one-row-per-person view even if a repository
// returns duplicates.
func dedupeMembers(in []models.MemberRef) []models.MemberRef {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.MemberRef, 0, len(in))
	for _, m := range in {
		if _, ok := seen[m.Person]; ok {
			continue
		}
		seen[m.Person] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Person < out[j].Person })
	return out
}

// EntryInput is an observation as submitted by a client.
type EntryInput struct {
	Room   string
	Person string
	Date   string
	Prayer models.Prayer
	Status models.Status
}

func (in EntryInput) validate() error {
	if err := required("room", in.Room); err != nil {
		return err
	}
	if err := required("person", in.Person); err != nil {
		return err
	}
	if err := validDate("date", in.Date); err != nil {
		return err
	}
	if err := validPrayer(in.Prayer); err != nil {
		return err
	}
	return validStatus(in.Status)
}

// AddEntry appends an observation. Membership is not checked: the room must
// exist but the person need not have joined it.
func (s *Service) AddEntry(ctx context.Context, in EntryInput) (*models.Entry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.requireRoom(ctx, in.Room); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	e := &models.Entry{RoomCode: in.Room, Person: in.Person, Date: in.Date, Prayer: in.Prayer, Status: in.Status}
	if err := s.entries.AppendEntry(ctx, e); err != nil {
		if errors.Is(err, repository.ErrRoomMissing) {
			return nil, notFound("room", in.Room)
		}
		return nil, s.fail("add entry", err)
	}
	s.logger.Debug("entry added",
		slog.String("room", in.Room),
		slog.String("person", in.Person),
		slog.String("date", in.Date),
		slog.String("prayer", string(in.Prayer)),
		slog.String("status", string(in.Status)),
	)
	return e, nil
}

// History returns a person's raw entries ascending by date. An empty since
// returns the full history. Room and person are required: an empty one is an
// ErrValidation (HTTP 400), while a person with no entries yields an empty
// slice.
func (s *Service) History(ctx context.Context, room, person, since string) ([]models.Entry, error) {
	if err := required("room", room); err != nil {
		return nil, err
	}
	if err := required("person", person); err != nil {
		return nil, err
	}
	if since != "" {
		if err := validDate("since", since); err != nil {
			return nil, err
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	entries, err := s.entries.ListEntries(ctx, room, person, since)
	if err != nil {
		return nil, s.fail("list entries", err)
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	return entries, nil
}

func normalizeSince(since string) (string, error) {
	if strings.TrimSpace(since) == "" {
		return Epoch, nil
	}
	if err := validDate("since", since); err != nil {
		return "", err
	}
	return since, nil
}

// MemberHeatmap returns prayed counts per date from since onward.
func (s *Service) MemberHeatmap(ctx context.Context, room, person, since string) (models.Heatmap, error) {
	since, err := normalizeSince(since)
	if err != nil {
		return nil, err
	}
	entries, err := s.History(ctx, room, person, since)
	if err != nil {
		return nil, err
	}
	return HeatmapOf(entries, since), nil
}

// RoomHeatmap returns a heatmap for every current member of room.
func (s *Service) RoomHeatmap(ctx context.Context, room, since string) (map[string]models.Heatmap, error) {
	since, err := normalizeSince(since)
	if err != nil {
		return nil, err
	}
	members, err := s.ListMembers(ctx, room)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.Heatmap, len(members))
	for _, m := range members {
		hm, err := s.MemberHeatmap(ctx, room, m.Person, since)
		if err != nil {
			return nil, err
		}
		out[m.Person] = hm
	}
	return out, nil
}

// Leaderboard ranks everyone with entries in room, members or not.
func (s *Service) Leaderboard(ctx context.Context, room string) ([]models.LeaderboardRow, error) {
	if err := required("room", room); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	entries, err := s.entries.ListRoomEntries(ctx, room)
	if err != nil {
		return nil, s.fail("list room entries", err)
	}
	return LeaderboardOf(entries), nil
}

// DayStatus returns the latest status per prayer for one person and date.
func (s *Service) DayStatus(ctx context.Context, room, person, date string) (map[models.Prayer]models.Status, error) {
	if err := validDate("date", date); err != nil {
		return nil, err
	}
	entries, err := s.History(ctx, room, person, date)
	if err != nil {
		return nil, err
	}
	return DayStatusOf(entries, date), nil
}
