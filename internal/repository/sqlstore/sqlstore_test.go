package sqlstore_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbfs "github.com/garnizeh/salah/db"
	dbpkg "github.com/garnizeh/salah/internal/db"
	"github.com/garnizeh/salah/internal/repository/sqlstore"
	"github.com/garnizeh/salah/pkg/models"
	"github.com/garnizeh/salah/pkg/repository"
)

func setupRepo(t *testing.T) (*sqlstore.Repo, *dbpkg.DB) {
	t.Helper()
	ctx := context.Background()

	d, err := dbpkg.New(ctx, dbpkg.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	require.NoError(t, dbpkg.Migrate(ctx, d, dbfs.Migrations))

	return sqlstore.New(d, nil), d
}

func TestRoomCreateIsInsertOrIgnore(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	got, err := repo.GetRoom(ctx, "friends")
	require.NoError(t, err)
	assert.Nil(t, got, "unknown room is (nil, nil)")

	require.NoError(t, repo.CreateRoom(ctx, &models.Room{Code: "friends", Name: "Friends"}))
	require.NoError(t, repo.CreateRoom(ctx, &models.Room{Code: "friends", Name: "Renamed"}))

	got, err = repo.GetRoom(ctx, "friends")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Friends", got.Name, "first name wins")
	assert.NotZero(t, got.Created)

	assert.Error(t, repo.CreateRoom(ctx, nil))
}

func TestUpsertMemberKeepsOneRowPerPair(t *testing.T) {
	repo, d := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateRoom(ctx, &models.Room{Code: "friends", Name: "Friends"}))

	first := &models.Member{RoomCode: "friends", Person: "Alice"}
	require.NoError(t, repo.UpsertMember(ctx, first))
	require.NotEmpty(t, first.ID)
	require.NoError(t, repo.UpsertMember(ctx, &models.Member{RoomCode: "friends", Person: "Alice"}))
	require.NoError(t, repo.UpsertMember(ctx, &models.Member{RoomCode: "friends", Person: "Bob"}))
	// exact match only: case differences are distinct people
	require.NoError(t, repo.UpsertMember(ctx, &models.Member{RoomCode: "friends", Person: "alice"}))

	var n int
	require.NoError(t, d.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE room_code = ? AND person = ?`, "friends", "Alice").Scan(&n))
	assert.Equal(t, 1, n)

	members, err := repo.ListMembers(ctx, "friends")
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "Alice", members[0].Person)
	assert.Equal(t, first.ID, members[0].ID, "upsert keeps the original row")
	assert.Equal(t, "Bob", members[1].Person)
	assert.Equal(t, "alice", members[2].Person)

	assert.Error(t, repo.UpsertMember(ctx, nil))
}

func TestUpsertMemberConcurrent(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateRoom(ctx, &models.Room{Code: "r", Name: "R"}))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.UpsertMember(ctx, &models.Member{RoomCode: "r", Person: "Zed"})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	members, err := repo.ListMembers(ctx, "r")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

// A store that predates the unique index can still hold duplicate rows;
// listing must collapse them.
func TestListMembersDedupesLegacyRows(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, dbpkg.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	defer d.Close()

	stmts := []string{
		`CREATE TABLE members (id TEXT PRIMARY KEY, room_code TEXT NOT NULL, person TEXT NOT NULL, created INTEGER NOT NULL)`,
		`INSERT INTO members VALUES ('b', 'friends', 'Alice', 1)`,
		`INSERT INTO members VALUES ('a', 'friends', 'Alice', 2)`,
		`INSERT INTO members VALUES ('c', 'friends', 'Bob', 3)`,
		`INSERT INTO members VALUES ('d', 'other', 'Carol', 4)`,
	}
	for _, s := range stmts {
		_, err := d.Exec(ctx, s)
		require.NoError(t, err)
	}

	members, err := sqlstore.New(d, nil).ListMembers(ctx, "friends")
	require.NoError(t, err)
	assert.Equal(t, []models.MemberRef{{ID: "a", Person: "Alice"}, {ID: "c", Person: "Bob"}}, members)
}

func TestListMembersEmptyRoom(t *testing.T) {
	repo, _ := setupRepo(t)

	members, err := repo.ListMembers(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)
}

func TestEntriesAppendOnlyAndOrdered(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateRoom(ctx, &models.Room{Code: "friends", Name: "Friends"}))

	add := func(person, date string, p models.Prayer, s models.Status) {
		t.Helper()
		require.NoError(t, repo.AppendEntry(ctx, &models.Entry{RoomCode: "friends", Person: person, Date: date, Prayer: p, Status: s}))
	}
	add("Alice", "2024-01-03", models.Fajr, models.Prayed)
	add("Alice", "2024-01-01", models.Fajr, models.Late)
	add("Alice", "2024-01-01", models.Fajr, models.Prayed)
	add("Alice", "2024-01-02", models.Isha, models.Missed)
	add("Bob", "2024-01-01", models.Fajr, models.Missed)

	all, err := repo.ListEntries(ctx, "friends", "Alice", "")
	require.NoError(t, err)
	require.Len(t, all, 4, "duplicates are kept")
	assert.Equal(t, "2024-01-01", all[0].Date)
	assert.Equal(t, models.Late, all[0].Status)
	assert.Equal(t, models.Prayed, all[1].Status, "same date keeps insertion order")
	assert.Less(t, all[0].Seq, all[1].Seq)
	assert.Equal(t, "2024-01-03", all[3].Date)
	for _, e := range all {
		assert.NotEmpty(t, e.ID)
		assert.NotZero(t, e.Created)
	}

	since, err := repo.ListEntries(ctx, "friends", "Alice", "2024-01-02")
	require.NoError(t, err)
	require.Len(t, since, 2, "since is inclusive")
	assert.Equal(t, "2024-01-02", since[0].Date)

	none, err := repo.ListEntries(ctx, "friends", "Alice", "2024-01-04")
	require.NoError(t, err)
	assert.Empty(t, none)

	room, err := repo.ListRoomEntries(ctx, "friends")
	require.NoError(t, err)
	require.Len(t, room, 5)
	assert.Equal(t, "2024-01-03", room[0].Date, "room listing is insertion order")
	assert.Equal(t, "Bob", room[4].Person)

	assert.Error(t, repo.AppendEntry(ctx, nil))
}

func TestAppendEntryRejectsUnknownEnum(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateRoom(ctx, &models.Room{Code: "friends", Name: "Friends"}))

	err := repo.AppendEntry(ctx, &models.Entry{RoomCode: "friends", Person: "Alice", Date: "2024-01-01", Prayer: "tahajjud", Status: models.Prayed})
	assert.Error(t, err, "check constraint guards the prayer enum")
}

func TestAppendEntryCheckFailureIsNotRoomMissing(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateRoom(ctx, &models.Room{Code: "friends", Name: "Friends"}))

	err := repo.AppendEntry(ctx, &models.Entry{RoomCode: "friends", Person: "Alice", Date: "2024-01-01", Prayer: models.Fajr, Status: "skipped"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrRoomMissing)
}

func TestWritesToMissingRoom(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, dbpkg.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, dbpkg.Migrate(ctx, d, dbfs.Migrations))

	var logs bytes.Buffer
	repo := sqlstore.New(d, slog.New(slog.NewJSONHandler(&logs, nil)))

	err = repo.AppendEntry(ctx, &models.Entry{RoomCode: "ghost", Person: "Alice", Date: "2024-01-01", Prayer: models.Fajr, Status: models.Prayed})
	assert.ErrorIs(t, err, repository.ErrRoomMissing)

	err = repo.UpsertMember(ctx, &models.Member{RoomCode: "ghost", Person: "Alice"})
	assert.ErrorIs(t, err, repository.ErrRoomMissing)

	assert.Contains(t, logs.String(), `"op":"append entry"`)
	assert.Contains(t, logs.String(), `"op":"upsert member"`)
	assert.Contains(t, logs.String(), `"room":"ghost"`)
}

func TestDeleteRoomCascades(t *testing.T) {
	repo, d := setupRepo(t)
	ctx := context.Background()

	for _, code := range []string{"a", "b"} {
		require.NoError(t, repo.CreateRoom(ctx, &models.Room{Code: code, Name: code}))
		require.NoError(t, repo.UpsertMember(ctx, &models.Member{RoomCode: code, Person: "Alice"}))
		require.NoError(t, repo.AppendEntry(ctx, &models.Entry{RoomCode: code, Person: "Alice", Date: "2024-01-01", Prayer: models.Asr, Status: models.Prayed}))
	}

	require.NoError(t, repo.DeleteRoom(ctx, "a"))

	got, err := repo.GetRoom(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	for table, want := range map[string]int{"members": 1, "entries": 1, "rooms": 1} {
		var n int
		require.NoError(t, d.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n))
		assert.Equal(t, want, n, table)
	}
}
