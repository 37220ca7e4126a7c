// Package kvdb is the document store backend: every record is a JSON
// document in a bbolt bucket keyed by its id.
package kvdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wedplan/internal/core"
	"wedplan/internal/storage"
)

const (
	bucketUsers       = "users"
	bucketUserEmails  = "user_emails"
	bucketWeddings    = "weddings"
	bucketUserWedding = "wedding_by_user"
	bucketGuests      = "guests"
	bucketCategories  = "budget_categories"
	bucketExpenses    = "expenses"
	bucketTasks       = "tasks"
)

var allBuckets = []string{
	bucketUsers, bucketUserEmails, bucketWeddings, bucketUserWedding, bucketGuests,
	bucketCategories, bucketExpenses, bucketTasks,
}

type Store struct {
	db *bolt.DB
}

var _ storage.Store = (*Store)(nil)

// userDocument carries the password hash, which core.User keeps out of JSON.
type userDocument struct {
	core.User
	PasswordHash string `json:"password_hash"`
}

// Open opens (or creates) the bbolt file at path and ensures all buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, span := tracer.Start(ctx, "Ping")
	defer span.End()
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketWeddings)) == nil {
			return errors.New("weddings bucket missing")
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

func fail(span trace.Span, err error) error {
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func getDoc[T any](tx *bolt.Tx, bucket, id string) (T, error) {
	var v T
	raw := tx.Bucket([]byte(bucket)).Get([]byte(id))
	if raw == nil {
		return v, core.ErrNotFound
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", bucket, id, err)
	}
	return v, nil
}

func putDoc(tx *bolt.Tx, bucket, id string, v any) error {
	j, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, id, err)
	}
	return tx.Bucket([]byte(bucket)).Put([]byte(id), j)
}

// replaceDoc overwrites an existing document and fails when it is missing.
func replaceDoc(tx *bolt.Tx, bucket, id string, v any) error {
	if tx.Bucket([]byte(bucket)).Get([]byte(id)) == nil {
		return core.ErrNotFound
	}
	return putDoc(tx, bucket, id, v)
}

func deleteDoc(tx *bolt.Tx, bucket, id string) error {
	b := tx.Bucket([]byte(bucket))
	if b.Get([]byte(id)) == nil {
		return core.ErrNotFound
	}
	return b.Delete([]byte(id))
}

func listDocs[T any](tx *bolt.Tx, bucket string, keep func(T) bool) ([]T, error) {
	out := []T{}
	err := tx.Bucket([]byte(bucket)).ForEach(func(k, raw []byte) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("decode %s/%s: %w", bucket, k, err)
		}
		if keep(v) {
			out = append(out, v)
		}
		return nil
	})
	return out, err
}

func sortByCreation[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return idi < idj
	})
}

func emailKey(email string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(email)))
}

// Users

func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	_, span := tracer.Start(ctx, "CreateUser")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return putUser(tx, u)
	})
	if err != nil {
		return fail(span, err)
	}
	return nil
}

// CreateAccount writes the user, the email index, the wedding and the owner
// index in one transaction.
func (s *Store) CreateAccount(ctx context.Context, u core.User, w core.Wedding) error {
	ctx, span := tracer.Start(ctx, "CreateAccount")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := putUser(tx, u); err != nil {
			return err
		}
		return putWedding(tx, w)
	})
	if err != nil {
		return fail(span, fmt.Errorf("create account: %w", err))
	}
	slog.InfoContext(ctx, "Account saved to kvdb", "user_id", u.ID, "wedding_id", w.ID)
	return nil
}

func putUser(tx *bolt.Tx, u core.User) error {
	emails := tx.Bucket([]byte(bucketUserEmails))
	if emails.Get(emailKey(u.Email)) != nil {
		return core.ErrEmailTaken
	}
	if err := emails.Put(emailKey(u.Email), []byte(u.ID)); err != nil {
		return err
	}
	return putDoc(tx, bucketUsers, u.ID, userDocument{User: u, PasswordHash: u.PasswordHash})
}

// putWedding stores a new wedding and, for the owner's first one, the
// owner index.
func putWedding(tx *bolt.Tx, w core.Wedding) error {
	if tx.Bucket([]byte(bucketWeddings)).Get([]byte(w.ID)) != nil {
		return fmt.Errorf("wedding %s already exists", w.ID)
	}
	if err := putDoc(tx, bucketWeddings, w.ID, w); err != nil {
		return err
	}
	owners := tx.Bucket([]byte(bucketUserWedding))
	if owners.Get([]byte(w.UserID)) != nil {
		return nil
	}
	return owners.Put([]byte(w.UserID), []byte(w.ID))
}

func toUser(d userDocument) core.User {
	u := d.User
	u.PasswordHash = d.PasswordHash
	return u
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	_, span := tracer.Start(ctx, "GetUser")
	defer span.End()

	var doc userDocument
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		doc, err = getDoc[userDocument](tx, bucketUsers, id)
		return err
	})
	if err != nil {
		return core.User{}, fail(span, fmt.Errorf("get user %s: %w", id, err))
	}
	return toUser(doc), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	_, span := tracer.Start(ctx, "GetUserByEmail")
	defer span.End()

	var doc userDocument
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket([]byte(bucketUserEmails)).Get(emailKey(email))
		if id == nil {
			return core.ErrNotFound
		}
		var err error
		doc, err = getDoc[userDocument](tx, bucketUsers, string(id))
		return err
	})
	if err != nil {
		return core.User{}, fail(span, fmt.Errorf("get user by email: %w", err))
	}
	return toUser(doc), nil
}

// Weddings

func (s *Store) CreateWedding(ctx context.Context, w core.Wedding) error {
	_, span := tracer.Start(ctx, "CreateWedding")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return putWedding(tx, w)
	})
	if err != nil {
		return fail(span, fmt.Errorf("create wedding: %w", err))
	}
	return nil
}

func (s *Store) GetWedding(ctx context.Context, id string) (core.Wedding, error) {
	_, span := tracer.Start(ctx, "GetWedding")
	defer span.End()

	var w core.Wedding
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		w, err = getDoc[core.Wedding](tx, bucketWeddings, id)
		return err
	})
	if err != nil {
		return core.Wedding{}, fail(span, fmt.Errorf("get wedding %s: %w", id, err))
	}
	return w, nil
}

func (s *Store) GetWeddingByUser(ctx context.Context, userID string) (core.Wedding, error) {
	_, span := tracer.Start(ctx, "GetWeddingByUser")
	defer span.End()

	var found []core.Wedding
	err := s.db.View(func(tx *bolt.Tx) error {
		if id := tx.Bucket([]byte(bucketUserWedding)).Get([]byte(userID)); id != nil {
			w, err := getDoc[core.Wedding](tx, bucketWeddings, string(id))
			if err != nil {
				return err
			}
			found = []core.Wedding{w}
			return nil
		}
		// Files written before the owner index existed.
		var err error
		found, err = listDocs(tx, bucketWeddings, func(w core.Wedding) bool { return w.UserID == userID })
		return err
	})
	if err != nil {
		return core.Wedding{}, fail(span, fmt.Errorf("get wedding for user %s: %w", userID, err))
	}
	if len(found) == 0 {
		return core.Wedding{}, fmt.Errorf("get wedding for user %s: %w", userID, core.ErrNotFound)
	}
	sortByCreation(found, func(w core.Wedding) (time.Time, string) { return w.CreatedAt, w.ID })
	return found[0], nil
}

func (s *Store) UpdateWedding(ctx context.Context, w core.Wedding) error {
	_, span := tracer.Start(ctx, "UpdateWedding")
	defer span.End()

	err := s.db.Update(func(tx *bolt.Tx) error {
		return replaceDoc(tx, bucketWeddings, w.ID, w)
	})
	if err != nil {
		return fail(span, fmt.Errorf("update wedding %s: %w", w.ID, err))
	}
	return nil
}
