package favorites

import (
	"sort"
	"sync"

	"stock-forecaster/src/helpers"
	"stock-forecaster/src/models"
	"stock-forecaster/src/utils"

	"github.com/google/uuid"
)

// Store keeps favorite tickers per user for the lifetime of the process.
type Store struct {
	mu    sync.RWMutex
	users map[string]*models.MUser
	limit int
}

// NewStore creates an empty store. limit caps the favorites per user, 0 means
// unlimited.
func NewStore(limit int) *Store {
	return &Store{users: make(map[string]*models.MUser), limit: limit}
}

// NewUserID issues an opaque identity for an anonymous visitor.
func NewUserID() string {
	return uuid.NewString()
}

// Save replaces the favorites of userID with the normalized set of symbols.
// Duplicates collapse; order is alphabetical.
func (s *Store) Save(userID string, symbols []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(userID, symbols)
}

// Add merges symbols into the existing favorites.
func (s *Store) Add(userID string, symbols ...string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(userID, append(s.getLocked(userID), symbols...))
}

func (s *Store) saveLocked(userID string, symbols []string) ([]string, error) {
	if userID == "" {
		return nil, helpers.NewValidationError("user id is required")
	}
	set, err := normalize(symbols)
	if err != nil {
		return nil, err
	}
	if s.limit > 0 && len(set) > s.limit {
		return nil, helpers.NewValidationError("at most %d favorites allowed", s.limit)
	}

	s.user(userID).FavoriteStocks = set
	return append([]string{}, set...), nil
}

// Get returns a copy of the favorites, empty for unknown users.
func (s *Store) Get(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(userID)
}

// User returns a snapshot of the user record.
func (s *Store) User(userID string) models.MUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		snapshot := *u
		snapshot.FavoriteStocks = append([]string{}, u.FavoriteStocks...)
		return snapshot
	}
	return models.MUser{ID: userID, FavoriteStocks: []string{}}
}

// SetProfile records the optional username and email of a user.
func (s *Store) SetProfile(userID, username, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.user(userID)
	u.Username, u.Email = username, email
}

func (s *Store) getLocked(userID string) []string {
	u, ok := s.users[userID]
	if !ok {
		return []string{}
	}
	return append([]string{}, u.FavoriteStocks...)
}

// user must be called with the write lock held.
func (s *Store) user(userID string) *models.MUser {
	u, ok := s.users[userID]
	if !ok {
		u = &models.MUser{ID: userID, FavoriteStocks: []string{}}
		s.users[userID] = u
	}
	return u
}

func normalize(symbols []string) ([]string, error) {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		sym := utils.NormalizeSymbol(raw)
		if sym == "" {
			continue
		}
		if !utils.IsValidSymbol(sym) {
			return nil, helpers.NewValidationError("invalid ticker %q", raw)
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}
