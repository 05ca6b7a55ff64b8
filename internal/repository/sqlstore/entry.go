package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/salah/pkg/models"
)

const entryColumns = `seq, id, room_code, person, date, prayer, status, created`

// AppendEntry never updates; duplicates for the same day and prayer are
// resolved by readers.
func (r *Repo) AppendEntry(ctx context.Context, e *models.Entry) error {
	if e == nil {
		return fmt.Errorf("entry is nil")
	}
	if e.ID == "" {
		e.ID = r.newID()
	}
	if e.Created == 0 {
		e.Created = now()
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO entries (id, room_code, person, date, prayer, status, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RoomCode, e.Person, e.Date, string(e.Prayer), string(e.Status), e.Created)
	if err != nil {
		return r.writeErr("append entry", e.RoomCode, err)
	}
	return nil
}

func (r *Repo) ListEntries(ctx context.Context, roomCode, person, since string) ([]models.Entry, error) {
	if since == "" {
		rows, err := r.conn.QueryRows(ctx, `SELECT `+entryColumns+` FROM entries WHERE room_code = ? AND person = ? ORDER BY date ASC, seq ASC`, roomCode, person)
		if err != nil {
			return nil, err
		}
		return scanEntries(rows)
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+entryColumns+` FROM entries WHERE room_code = ? AND person = ? AND date >= ? ORDER BY date ASC, seq ASC`, roomCode, person, since)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *Repo) ListRoomEntries(ctx context.Context, roomCode string) ([]models.Entry, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+entryColumns+` FROM entries WHERE room_code = ? ORDER BY seq ASC`, roomCode)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	defer rows.Close()

	out := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		var prayer, status string
		if err := rows.Scan(&e.Seq, &e.ID, &e.RoomCode, &e.Person, &e.Date, &prayer, &status, &e.Created); err != nil {
			return nil, err
		}
		e.Prayer = models.Prayer(prayer)
		e.Status = models.Status(status)
		out = append(out, e)
	}

	return out, rows.Err()
}
