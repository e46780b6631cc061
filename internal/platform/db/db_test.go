package db

import "testing"

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND y IN (?, ?)"

	if got := SQLite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}

	want := "SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)"
	if got := Postgres.Rebind(q); got != want {
		t.Fatalf("postgres rebind = %q, want %q", got, want)
	}
}

func TestDialectFor(t *testing.T) {
	if d, err := DialectFor("pgx"); err != nil || d != Postgres {
		t.Fatalf("DialectFor(pgx) = %v, %v", d, err)
	}
	if d, err := DialectFor("sqlite"); err != nil || d != SQLite {
		t.Fatalf("DialectFor(sqlite) = %v, %v", d, err)
	}
	if _, err := DialectFor("mysql"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t (id INTEGER)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO t (id) VALUES (1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}
