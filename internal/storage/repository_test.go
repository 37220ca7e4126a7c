package storage_test

import (
	"path/filepath"
	"testing"

	"wedplan/internal/storage"
	"wedplan/internal/storage/storagetest"
)

func TestSQLiteRepositoryConformance(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "wedplan.sqlite"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	storagetest.Run(t, repo)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wedplan.sqlite")
	for run := 1; run <= 2; run++ {
		version, err := storage.RunMigrations(path)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if version != 1 {
			t.Fatalf("run %d: schema version = %d, want 1", run, version)
		}
	}
}
