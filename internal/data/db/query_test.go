package db

import (
	"context"
	"path/filepath"
	"testing"

	types "github.com/yungbote/wellspring-backend/internal/domain"
)

func TestFindInAndCreateAll(t *testing.T) {
	gdb, err := Open(Config{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "q.db")}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := AutoMigrateAll(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx := context.Background()

	none, err := CreateAll[types.User](Conn(ctx, gdb, nil), nil)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("empty create: %v %v", none, err)
	}

	rows, err := CreateAll(Conn(ctx, gdb, nil), []*types.User{
		{Email: "a@example.com", Password: "x", FirstName: "A", LastName: "A"},
		{Email: "b@example.com", Password: "x", FirstName: "B", LastName: "B"},
	})
	if err != nil || len(rows) != 2 {
		t.Fatalf("create: %v %v", rows, err)
	}

	got, err := FindIn[types.User](Conn(ctx, gdb, nil), "email", []string{"a@example.com", "b@example.com"}, "email DESC")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 || got[0].Email != "b@example.com" {
		t.Fatalf("order: %+v", got)
	}

	empty, err := FindIn[types.User](Conn(ctx, gdb, nil), "email", []string{})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty keys: %v %v", empty, err)
	}
}
