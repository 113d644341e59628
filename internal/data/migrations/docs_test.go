package migrations

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"soliditydocs/app/internal/data/database"
	docsdata "soliditydocs/app/internal/data/docs"
)

func TestMigrateDocsRequiresDatabase(t *testing.T) {
	t.Parallel()

	if err := MigrateDocs(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestMigrateDocsCreatesPagesTable(t *testing.T) {
	t.Parallel()

	gormDB, err := database.Open(database.Options{Path: filepath.Join(t.TempDir(), "migrate.db")})
	if err != nil {
		t.Fatalf("database.Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := database.Close(gormDB); closeErr != nil {
			t.Errorf("closing database failed: %v", closeErr)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	for i := 0; i < 2; i++ {
		if err := MigrateDocs(context.Background(), gormDB, logger); err != nil {
			t.Fatalf("MigrateDocs run %d returned error: %v", i+1, err)
		}
	}

	if !gormDB.Migrator().HasTable(&docsdata.PageRow{}) {
		t.Fatalf("expected pages table to exist")
	}

	if !gormDB.Migrator().HasIndex(&docsdata.PageRow{}, "idx_pages_route") {
		t.Fatalf("expected unique route index to exist")
	}
}
