package db_test

import (
	"context"
	"testing"
	"time"

	dbpkg "github.com/garnizeh/salah/internal/db"
)

func TestNew_Close_GetConn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d, err := dbpkg.New(ctx, dbpkg.DriverSQLite, ":memory:", nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if d.GetConn() == nil {
		t.Fatalf("expected non-nil sql.DB from GetConn")
	}
	if d.Driver() != dbpkg.DriverSQLite {
		t.Fatalf("expected sqlite driver got %q", d.Driver())
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestNew_DefaultsToSQLite(t *testing.T) {
	d, err := dbpkg.New(context.Background(), "", ":memory:", nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer d.Close()

	if d.Driver() != dbpkg.DriverSQLite {
		t.Fatalf("expected sqlite driver got %q", d.Driver())
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	if _, err := dbpkg.New(context.Background(), "mysql", "whatever", nil); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestExec_QueryRow(t *testing.T) {
	ctx := context.Background()
	d, err := dbpkg.New(ctx, dbpkg.DriverSQLite, ":memory:", nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT);`); err != nil {
		t.Fatalf("Exec create table returned error: %v", err)
	}

	res, err := d.Exec(ctx, `INSERT INTO items (name) VALUES (?)`, "foo")
	if err != nil {
		t.Fatalf("Exec insert returned error: %v", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId returned error: %v", err)
	}
	if lastID == 0 {
		t.Fatalf("expected last insert id > 0")
	}

	var name string
	if err := d.QueryRow(ctx, `SELECT name FROM items WHERE id = ?`, lastID).Scan(&name); err != nil {
		t.Fatalf("QueryRow scan returned error: %v", err)
	}
	if name != "foo" {
		t.Fatalf("expected name 'foo' got %q", name)
	}

	rows, err := d.QueryRows(ctx, `SELECT name FROM items ORDER BY id`)
	if err != nil {
		t.Fatalf("QueryRows returned error: %v", err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	if n != 1 {
		t.Fatalf("expected 1 row got %d", n)
	}
}

func TestRebind(t *testing.T) {
	pg := dbpkg.Wrap(nil, dbpkg.DriverPostgres, nil)
	got := pg.Rebind(`SELECT * FROM entries WHERE room_code = ? AND person = ? AND prayer <> '?'`)
	want := `SELECT * FROM entries WHERE room_code = $1 AND person = $2 AND prayer <> '?'`
	if got != want {
		t.Fatalf("postgres rebind:\n got %s\nwant %s", got, want)
	}

	lite := dbpkg.Wrap(nil, dbpkg.DriverSQLite, nil)
	q := `SELECT 1 WHERE ? = ?`
	if got := lite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind should be identity, got %s", got)
	}
}
