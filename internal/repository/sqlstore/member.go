package sqlstore

import (
	"context"
	"fmt"

	"github.com/garnizeh/salah/pkg/models"
)

// UpsertMember relies on the unique index over (room_code, person): a repeated
// join touches the existing row instead of inserting a second one.
func (r *Repo) UpsertMember(ctx context.Context, m *models.Member) error {
	if m == nil {
		return fmt.Errorf("member is nil")
	}
	if m.ID == "" {
		m.ID = r.newID()
	}
	if m.Created == 0 {
		m.Created = now()
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO members (id, room_code, person, created) VALUES (?, ?, ?, ?)
		ON CONFLICT (room_code, person) DO UPDATE SET person = excluded.person`,
		m.ID, m.RoomCode, m.Person, m.Created)
	if err != nil {
		return r.writeErr("upsert member", m.RoomCode, err)
	}
	return nil
}

// ListMembers groups by person so rows duplicated before the unique index
// existed never surface twice.
func (r *Repo) ListMembers(ctx context.Context, roomCode string) ([]models.MemberRef, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT MIN(id) AS id, person FROM members WHERE room_code = ? GROUP BY person ORDER BY person ASC`, roomCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MemberRef{}
	for rows.Next() {
		var m models.MemberRef
		if err := rows.Scan(&m.ID, &m.Person); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}
