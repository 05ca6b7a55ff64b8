package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/salah/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// ErrRoomMissing is returned by writes that reference a room code the store
// does not hold, for example one deleted concurrently.
var ErrRoomMissing = errors.New("room does not exist")

type RoomRepo interface {
	// CreateRoom inserts the room or silently keeps the existing one.
	CreateRoom(ctx context.Context, r *models.Room) error
	GetRoom(ctx context.Context, code string) (*models.Room, error)
	// DeleteRoom removes the room with its members and entries.
	DeleteRoom(ctx context.Context, code string) error
}

type MemberRepo interface {
	// UpsertMember keeps exactly one row per (room_code, person). It returns
	// ErrRoomMissing when the room is absent.
	UpsertMember(ctx context.Context, m *models.Member) error
	ListMembers(ctx context.Context, roomCode string) ([]models.MemberRef, error)
}

type EntryRepo interface {
	// AppendEntry returns ErrRoomMissing when the room is absent.
	AppendEntry(ctx context.Context, e *models.Entry) error
	// ListEntries returns a person's entries with date >= since (all when
	// since is empty), ascending by date then insertion order.
	ListEntries(ctx context.Context, roomCode, person, since string) ([]models.Entry, error)
	// ListRoomEntries returns every entry of a room in insertion order.
	ListRoomEntries(ctx context.Context, roomCode string) ([]models.Entry, error)
}
