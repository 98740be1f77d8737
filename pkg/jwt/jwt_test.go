package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestPreviewIssuer_ValidWithinHour(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	issuer := NewPreviewIssuer(testSecret, time.Hour, clock.Now)

	token, issued, err := issuer.Issue("item-1", "admin", "")
	require.NoError(t, err)
	assert.True(t, issued.ExpiresAt.Equal(clock.t.Add(time.Hour)))

	clock.t = clock.t.Add(30 * time.Minute)
	payload, verdict := issuer.Verify(token)
	assert.Equal(t, VerdictValid, verdict)
	assert.Equal(t, "item-1", payload.ItemID)
	assert.Equal(t, "admin", payload.IssuerUserID)
	assert.Empty(t, payload.BoundUserID)
}

func TestPreviewIssuer_BoundUser(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	issuer := NewPreviewIssuer(testSecret, time.Hour, clock.Now)

	token, _, err := issuer.Issue("item-1", "admin", "reviewer-7")
	require.NoError(t, err)

	payload, verdict := issuer.Verify(token)
	assert.Equal(t, VerdictValid, verdict)
	assert.Equal(t, "admin", payload.IssuerUserID)
	assert.Equal(t, "reviewer-7", payload.BoundUserID)
}

func TestPreviewIssuer_ExpiredAfterHour(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	issuer := NewPreviewIssuer(testSecret, time.Hour, clock.Now)

	token, _, err := issuer.Issue("item-1", "", "")
	require.NoError(t, err)

	clock.t = clock.t.Add(61 * time.Minute)
	_, verdict := issuer.Verify(token)
	assert.Equal(t, VerdictExpired, verdict)
}

func TestPreviewIssuer_ExpiredAtExactInstant(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	issuer := NewPreviewIssuer(testSecret, time.Hour, clock.Now)

	token, _, err := issuer.Issue("item-1", "", "")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour)
	_, verdict := issuer.Verify(token)
	assert.Equal(t, VerdictExpired, verdict)
}

func TestPreviewIssuer_InvalidInputs(t *testing.T) {
	issuer := NewPreviewIssuer(testSecret, time.Hour, nil)
	other := NewPreviewIssuer(strings.Repeat("x", 32), time.Hour, nil)

	forged, _, err := other.Issue("item-1", "", "")
	require.NoError(t, err)

	access, err := NewManager(testSecret, time.Hour).GenerateAccessToken("u1", "nick", 10)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"three dots":    "a.b.c",
		"wrong secret":  forged,
		"access token":  access,
		"truncated sig": forged[:len(forged)-4],
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			payload, verdict := issuer.Verify(token)
			assert.Equal(t, VerdictInvalid, verdict)
			assert.Empty(t, payload.ItemID)
		})
	}
}

func TestManager_VerifyToken(t *testing.T) {
	m := NewManager(testSecret, 15*time.Minute)

	token, err := m.GenerateAccessToken("u1", "여행자", 10)
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, 10, claims.Level)

	_, err = m.VerifyToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_VerifyTokenExpired(t *testing.T) {
	m := NewManager(testSecret, time.Minute)
	issued := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken("u1", "", 1)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
