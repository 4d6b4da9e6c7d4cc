// Package credential implements the durable mapping from a caller-supplied
// client identifier to a Splitwise account id and bearer token.
package credential

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tallyops/splitwise-agent/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound reports that no credential exists for a client id. Callers
// branch on it to tell "not logged in" apart from a storage fault.
var ErrNotFound = errors.New("credential not found")

// Store persists credentials in SQLite. Reads go straight to the database;
// writes to the same client id are serialized through a per-key mutex so an
// upsert is never interleaved with another write to the same row.
type Store struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore wraps an initialized database handle.
func NewStore(database *gorm.DB) *Store {
	return &Store{
		db:    database,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) keyLock(clientID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[clientID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[clientID] = l
	}
	return l
}

// Get returns the credential for a client id, or ErrNotFound.
func (s *Store) Get(clientID string) (*models.Credential, error) {
	var cred models.Credential
	err := s.db.Where("client_id = ?", clientID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	return &cred, nil
}

// Upsert inserts or fully replaces the credential for a client id. Both the
// account id and the token come from this call; nothing is merged with a
// prior record. The write is a single INSERT ... ON CONFLICT statement, so a
// failure leaves no partial row behind.
func (s *Store) Upsert(clientID string, accountID int64, accessToken string) error {
	lock := s.keyLock(clientID)
	lock.Lock()
	defer lock.Unlock()

	cred := models.Credential{
		ClientID:    clientID,
		AccountID:   accountID,
		AccessToken: accessToken,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"account_id", "access_token", "updated_at"}),
	}).Create(&cred).Error
	if err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	return nil
}

// Delete removes the credential for a client id. Deleting an absent record
// returns ErrNotFound so logout can report "not logged in"; any other error
// is a storage fault.
func (s *Store) Delete(clientID string) error {
	lock := s.keyLock(clientID)
	lock.Lock()
	defer lock.Unlock()

	res := s.db.Where("client_id = ?", clientID).Delete(&models.Credential{})
	if res.Error != nil {
		return fmt.Errorf("delete credential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether a credential is stored for a client id.
func (s *Store) Exists(clientID string) bool {
	var count int64
	s.db.Model(&models.Credential{}).Where("client_id = ?", clientID).Count(&count)
	return count > 0
}
