package kvdb

import (
	"context"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"wedplan/internal/core"
	"wedplan/internal/storage/storagetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "wedplan.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreConformance(t *testing.T) {
	storagetest.Run(t, openTemp(t))
}

func TestPasswordHashIsPersisted(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	u := core.User{ID: core.NewID(), Name: "Anna", Email: "anna@example.com", PasswordHash: "secret-hash"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PasswordHash != "secret-hash" {
		t.Fatalf("password hash lost: %+v", got)
	}
}

func TestReopenKeepsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wedplan.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	task := core.Task{ID: core.NewID(), WeddingID: "w1", Title: "Cake tasting", Status: core.TaskTodo, Priority: core.PriorityLow}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.ListTasks(ctx, "w1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "Cake tasting" {
		t.Fatalf("unexpected tasks after reopen: %+v", got)
	}
}

func TestWeddingByUserIndex(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	u := core.User{ID: core.NewID(), Name: "Anna", Email: "anna@example.com", PasswordHash: "h"}
	w := core.Wedding{ID: core.NewID(), UserID: u.ID, BrideName: "Anna", GroomName: "Marco"}
	if err := s.CreateAccount(ctx, u, w); err != nil {
		t.Fatal(err)
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		if got := string(tx.Bucket([]byte(bucketUserWedding)).Get([]byte(u.ID))); got != w.ID {
			t.Errorf("owner index = %q, want %q", got, w.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// A later wedding for the same owner does not replace the indexed one.
	later := w
	later.ID = core.NewID()
	if err := s.CreateWedding(ctx, later); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetWeddingByUser(ctx, u.ID)
	if err != nil || got.ID != w.ID {
		t.Fatalf("GetWeddingByUser = %+v (%v), want %s", got, err, w.ID)
	}
}

func TestWeddingByUserWithoutIndex(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	w := core.Wedding{ID: core.NewID(), UserID: "legacy-user", BrideName: "Anna", GroomName: "Marco"}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return putDoc(tx, bucketWeddings, w.ID, w)
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetWeddingByUser(ctx, "legacy-user")
	if err != nil || got.ID != w.ID {
		t.Fatalf("GetWeddingByUser = %+v (%v), want %s", got, err, w.ID)
	}
}
