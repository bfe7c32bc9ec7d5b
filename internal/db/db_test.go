package db

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/go-crm-panel/internal/refdata"
)

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"":                                       "",
		`"postgres://u:p@h:5432/db"`:             "postgres://u:p@h:5432/db",
		"host=h  user=u dbname=d":                "host=h user=u dbname=d sslmode=disable",
		"host=h user=u dbname=d sslmode=require": "host=h user=u dbname=d sslmode=require",
		"not a dsn":                              "not a dsn",
	}
	for in, want := range cases {
		if got := NormalizeDSN(in); got != want {
			t.Fatalf("NormalizeDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	conn, err := Open("sqlite", "file:dbtest?mode=memory&cache=shared", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatal(err)
	}
	cache := refdata.NewCache(conn)
	ctx := context.Background()
	if err := cache.Put(ctx, "countries", []refdata.Place{{ID: 1, Name: "Aland"}}); err != nil {
		t.Fatal(err)
	}
	// a second put replaces the list instead of appending
	if err := cache.Put(ctx, "countries", []refdata.Place{{ID: 2, Name: "Borduria"}}); err != nil {
		t.Fatal(err)
	}
	got, fresh, found, err := cache.Get(ctx, "countries", time.Hour)
	if err != nil || !found || !fresh {
		t.Fatalf("expected a fresh cached list, found=%v fresh=%v err=%v", found, fresh, err)
	}
	if len(got) != 1 || got[0].Name != "Borduria" {
		t.Fatalf("unexpected cached list %+v", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "", nil); err == nil {
		t.Fatalf("expected an error for an unknown driver")
	}
}
