package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

const (
	CodeLength = 6

	// MaxAttempts is how many wrong codes a key may submit before its code
	// is discarded.
	MaxAttempts = 5
)

var (
	ErrNotFound        = errors.New("no code was issued for this key")
	ErrExpired         = errors.New("code has expired")
	ErrMismatch        = errors.New("code does not match")
	ErrTooManyAttempts = errors.New("too many wrong codes")
)

// Generate returns a random numeric code of CodeLength digits.
func Generate() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

type entry struct {
	code      string
	expiresAt time.Time
	failures  int
}

// Store holds one pending code per key, usually an email address. Entries
// expire after the TTL and are removed on Verify or by Sweep.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue generates a fresh code for key, replacing any previous one.
func (s *Store) Issue(key string) (string, time.Time, error) {
	code, err := Generate()
	if err != nil {
		return "", time.Time{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(s.ttl)
	s.entries[key] = entry{code: code, expiresAt: expiresAt}
	return code, expiresAt, nil
}

// Verify checks code for key. A matching code is consumed, and so is one
// that has seen MaxAttempts wrong guesses.
func (s *Store) Verify(key, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return ErrExpired
	}
	if subtle.ConstantTimeCompare([]byte(e.code), []byte(code)) != 1 {
		e.failures++
		if e.failures >= MaxAttempts {
			delete(s.entries, key)
			return ErrTooManyAttempts
		}
		s.entries[key] = e
		return ErrMismatch
	}

	delete(s.entries, key)
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
