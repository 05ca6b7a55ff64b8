package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/salah/pkg/models"
)

// CreateRoom is insert-or-ignore on code, so concurrent creators of the same
// room all succeed and the first name wins.
func (r *Repo) CreateRoom(ctx context.Context, room *models.Room) error {
	if room == nil {
		return fmt.Errorf("room is nil")
	}
	if room.Created == 0 {
		room.Created = now()
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO rooms (code, name, created) VALUES (?, ?, ?) ON CONFLICT (code) DO NOTHING`, room.Code, room.Name, room.Created)
	return err
}

func (r *Repo) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	row := r.conn.QueryRow(ctx, `SELECT code, name, created FROM rooms WHERE code = ?`, code)
	var room models.Room
	if err := row.Scan(&room.Code, &room.Name, &room.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &room, nil
}

// DeleteRoom removes dependents explicitly inside one transaction so the
// cascade does not depend on the driver's foreign key settings.
func (r *Repo) DeleteRoom(ctx context.Context, code string) error {
	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM entries WHERE room_code = ?`,
		`DELETE FROM members WHERE room_code = ?`,
		`DELETE FROM rooms WHERE code = ?`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, r.conn.Rebind(s), code); err != nil {
			return r.writeErr("delete room", code, err)
		}
	}

	return tx.Commit()
}
