package auth

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	authsplitwise "github.com/tallyops/splitwise-agent/internal/auth/splitwise"
	"github.com/tallyops/splitwise-agent/internal/credential"
	"github.com/tallyops/splitwise-agent/internal/db/models"
	"gorm.io/gorm"
)

func newTestGate(t *testing.T) (*Gate, *credential.Store) {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.AutoMigrate(&models.Credential{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := credential.NewStore(database)
	cfg := authsplitwise.OAuthConfig("consumer-key", "consumer-secret", "http://localhost:8080/callback")
	return NewGate(store, cfg), store
}

func TestAuthorize_NoCredential(t *testing.T) {
	gate, _ := newTestGate(t)

	_, err := gate.Authorize("b1")
	var notAuth *NotAuthenticatedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("expected NotAuthenticatedError, got %v", err)
	}
	if notAuth.LoginURL == "" {
		t.Fatal("login URL must not be empty")
	}
}

func TestAuthorize_GrantAfterUpsert(t *testing.T) {
	gate, store := newTestGate(t)

	if err := store.Upsert("b1", 42, "tok-abc"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	grant, err := gate.Authorize("b1")
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if grant.AccountID != 42 || grant.AccessToken != "tok-abc" {
		t.Fatalf("got grant %+v", grant)
	}

	// Deleting the credential flips the outcome back to unauthorized.
	if err := store.Delete("b1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = gate.Authorize("b1")
	var notAuth *NotAuthenticatedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("expected NotAuthenticatedError after delete, got %v", err)
	}
}

func TestLoginURL_StateCarriesClientID(t *testing.T) {
	gate, _ := newTestGate(t)

	url := gate.LoginURL("browser-17")
	for _, want := range []string{"state=browser-17", "client_id=consumer-key", "response_type=code"} {
		if !strings.Contains(url, want) {
			t.Errorf("login URL missing %q: %s", want, url)
		}
	}
	if strings.Contains(url, "consumer-secret") {
		t.Errorf("login URL leaks the consumer secret: %s", url)
	}
}
