package credential

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/tallyops/splitwise-agent/internal/db/models"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := database.AutoMigrate(&models.Credential{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewStore(database)
}

func TestGet_AbsentKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("no-such-browser")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsert_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.Upsert("b1", 42, "tok-abc"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	cred, err := store.Get("b1")
	if err != nil {
		t.Fatalf("get after upsert: %v", err)
	}
	if cred.AccountID != 42 || cred.AccessToken != "tok-abc" {
		t.Fatalf("unexpected credential: account=%d token=%q", cred.AccountID, cred.AccessToken)
	}
	if cred.UpdatedAt.Before(cred.CreatedAt) {
		t.Fatalf("updated_at %v is before created_at %v", cred.UpdatedAt, cred.CreatedAt)
	}
}

func TestUpsert_OverwritesBothFields(t *testing.T) {
	store := newTestStore(t)

	if err := store.Upsert("b1", 42, "tok-old"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert("b1", 99, "tok-new"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	cred, err := store.Get("b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cred.AccountID != 99 || cred.AccessToken != "tok-new" {
		t.Fatalf("expected full overwrite, got account=%d token=%q", cred.AccountID, cred.AccessToken)
	}

	var count int64
	store.db.Model(&models.Credential{}).Where("client_id = ?", "b1").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row per client id, got %d", count)
	}
}

func TestDelete_DistinguishesNotFound(t *testing.T) {
	store := newTestStore(t)

	if err := store.Delete("never-stored"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting absent key, got %v", err)
	}

	if err := store.Upsert("b1", 42, "tok-abc"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Delete("b1"); err != nil {
		t.Fatalf("delete present key: %v", err)
	}
	if _, err := store.Get("b1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record gone after delete, got %v", err)
	}
}

func TestExists(t *testing.T) {
	store := newTestStore(t)

	if store.Exists("b1") {
		t.Fatal("exists reported true for absent key")
	}
	if err := store.Upsert("b1", 42, "tok-abc"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !store.Exists("b1") {
		t.Fatal("exists reported false for stored key")
	}
}

// Concurrent re-logins for the same browser must land as one call's full
// payload: the surviving account id and token always come from the same
// writer, never a mix of two.
func TestUpsert_ConcurrentSameKey(t *testing.T) {
	store := newTestStore(t)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := store.Upsert("b1", int64(n), fmt.Sprintf("tok-%d", n)); err != nil {
				t.Errorf("upsert %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	cred, err := store.Get("b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := fmt.Sprintf("tok-%d", cred.AccountID)
	if cred.AccessToken != want {
		t.Fatalf("interleaved write: account=%d paired with token=%q", cred.AccountID, cred.AccessToken)
	}
}
