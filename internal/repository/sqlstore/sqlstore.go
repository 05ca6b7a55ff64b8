package sqlstore

import (
	"errors"
	"io"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/garnizeh/salah/internal/db"
	"github.com/garnizeh/salah/pkg/repository"
)

// Repo implements repository interfaces on top of the internal DB wrapper.
// The same SQL runs on sqlite and postgres; the wrapper rebinds placeholders.
type Repo struct {
	conn   *db.DB
	logger *slog.Logger
	newID  func() string
}

// Ensure Repo implements the public interfaces.
var _ repository.RoomRepo = (*Repo)(nil)
var _ repository.MemberRepo = (*Repo)(nil)
var _ repository.EntryRepo = (*Repo)(nil)

func New(conn *db.DB, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Repo{conn: conn, logger: logger, newID: uuid.NewString}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// pgForeignKeyViolation is SQLSTATE foreign_key_violation.
const pgForeignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgForeignKeyViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			strings.Contains(liteErr.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}

// writeErr logs a failed write and turns a dangling room reference into
// repository.ErrRoomMissing.
func (r *Repo) writeErr(op, roomCode string, err error) error {
	if isForeignKeyViolation(err) {
		r.logger.Warn("write references missing room", slog.String("op", op), slog.String("room", roomCode))
		return repository.ErrRoomMissing
	}
	r.logger.Error("write failed", slog.String("op", op), slog.String("room", roomCode), slog.Any("err", err))
	return err
}
