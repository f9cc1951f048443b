package migrate

import (
	"context"
	"testing"

	"transformline/internal/db"
)

func TestMigrateRecordsLatestVersion(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	latest, err := Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != 1 {
		t.Fatalf("expected latest schema 1, got %d", latest)
	}

	v, err := Version(ctx, conn)
	if err != nil {
		t.Fatalf("version before migrate: %v", err)
	}
	if v != 0 {
		t.Fatalf("fresh workspace should be unmigrated, got %d", v)
	}

	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, conn); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}
	if v, err = Version(ctx, conn); err != nil {
		t.Fatalf("version after migrate: %v", err)
	}
	if v != latest {
		t.Fatalf("expected schema %d, got %d", latest, v)
	}
}
