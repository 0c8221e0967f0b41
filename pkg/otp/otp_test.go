package otp

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewStore(ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestGenerate(t *testing.T) {
	digits := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.Regexp(t, digits, code)
	}
}

func TestStore_IssueAndVerify(t *testing.T) {
	s, _ := newTestStore(10 * time.Minute)

	code, expiresAt, err := s.Issue("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 10, 0, 0, time.UTC), expiresAt)

	assert.ErrorIs(t, s.Verify("alice@example.com", "nope"), ErrMismatch)
	assert.NoError(t, s.Verify("alice@example.com", code))
	assert.ErrorIs(t, s.Verify("alice@example.com", code), ErrNotFound, "code is single use")
}

func TestStore_Expired(t *testing.T) {
	s, now := newTestStore(10 * time.Minute)

	code, _, err := s.Issue("bob@example.com")
	require.NoError(t, err)

	*now = now.Add(10 * time.Minute)
	assert.ErrorIs(t, s.Verify("bob@example.com", code), ErrExpired)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ReissueReplaces(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	first, _, err := s.Issue("carol@example.com")
	require.NoError(t, err)
	second, _, err := s.Issue("carol@example.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, s.Verify("carol@example.com", first), ErrMismatch)
	}
	assert.NoError(t, s.Verify("carol@example.com", second))
}

func TestStore_DiscardsCodeAfterMaxAttempts(t *testing.T) {
	s, _ := newTestStore(10 * time.Minute)

	code, _, err := s.Issue("dave@example.com")
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < MaxAttempts; i++ {
		assert.ErrorIs(t, s.Verify("dave@example.com", wrong), ErrMismatch, "attempt %d", i)
	}
	assert.ErrorIs(t, s.Verify("dave@example.com", wrong), ErrTooManyAttempts)
	assert.ErrorIs(t, s.Verify("dave@example.com", code), ErrNotFound, "the right code no longer works")
	assert.Equal(t, 0, s.Len())
}

func TestStore_ReissueResetsAttempts(t *testing.T) {
	s, _ := newTestStore(10 * time.Minute)

	_, _, err := s.Issue("erin@example.com")
	require.NoError(t, err)
	for i := 1; i < MaxAttempts; i++ {
		_ = s.Verify("erin@example.com", "bad")
	}

	code, _, err := s.Issue("erin@example.com")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Verify("erin@example.com", "bad"), ErrMismatch)
	assert.NoError(t, s.Verify("erin@example.com", code))
}

func TestStore_Sweep(t *testing.T) {
	s, now := newTestStore(time.Minute)

	_, _, _ = s.Issue("old@example.com")
	*now = now.Add(45 * time.Second)
	_, _, _ = s.Issue("new@example.com")
	*now = now.Add(30 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}
